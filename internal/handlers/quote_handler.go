package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stonequote/internal/pricing"
	"stonequote/internal/services"
)

type QuoteHandler struct {
	quoteService services.QuoteService
}

func NewQuoteHandler(quoteService services.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// Calculate recomputes a quote's pricing. An optional price_book_id query
// parameter pins a price book for a what-if preview.
func (h *QuoteHandler) Calculate(c *gin.Context) {
	quoteID := c.Param("id")

	var opts *services.CalculateOptions
	if raw := c.Query("price_book_id"); raw != "" {
		bookID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price_book_id"})
			return
		}
		opts = &services.CalculateOptions{PriceBookID: &bookID}
	}

	result, err := h.quoteService.CalculateQuotePrice(quoteID, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetCalculation returns the last stored result without recomputing.
func (h *QuoteHandler) GetCalculation(c *gin.Context) {
	result, err := h.quoteService.GetCalculation(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func respondError(c *gin.Context, err error) {
	var validationErr *pricing.ValidationError
	var notFoundErr *pricing.NotFoundError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "calculation failed"})
	}
}
