package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"stonequote/internal/models"
)

// Client caches calculation results so repeated reads of an unchanged quote
// skip the engine. The quote row's stored breakdown remains the durable copy.
type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

func calculationKey(quoteID string) string {
	return "quote_calc:" + quoteID
}

func (c *Client) SetCalculation(quoteID string, result *models.CalculationResult, ttl time.Duration) error {
	jsonData, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal calculation result: %w", err)
	}
	return c.rdb.Set(context.Background(), calculationKey(quoteID), jsonData, ttl).Err()
}

// GetCalculation returns the cached result, or nil on a cache miss.
func (c *Client) GetCalculation(quoteID string) (*models.CalculationResult, error) {
	val, err := c.rdb.Get(context.Background(), calculationKey(quoteID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached calculation: %w", err)
	}

	var result models.CalculationResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached calculation: %w", err)
	}
	return &result, nil
}

func (c *Client) DeleteCalculation(quoteID string) error {
	return c.rdb.Del(context.Background(), calculationKey(quoteID)).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
