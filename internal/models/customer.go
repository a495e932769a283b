package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	ID           uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string      `json:"name" gorm:"not null"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	ClientTypeID *uuid.UUID  `json:"client_type_id" gorm:"type:uuid;index"`
	ClientType   *ClientType `json:"client_type,omitempty" gorm:"foreignKey:ClientTypeID"`
	ClientTierID *uuid.UUID  `json:"client_tier_id" gorm:"type:uuid;index"`
	ClientTier   *ClientTier `json:"client_tier,omitempty" gorm:"foreignKey:ClientTierID"`

	// Default price book for this customer's quotes.
	PriceBookID *uuid.UUID `json:"price_book_id" gorm:"type:uuid"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ClientType classifies customers by channel, e.g. trade vs retail.
type ClientType struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"unique;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ct *ClientType) BeforeCreate(tx *gorm.DB) error {
	if ct.ID == uuid.Nil {
		ct.ID = uuid.New()
	}
	return nil
}

// ClientTier ranks customers within a type. Priority feeds the rule
// resolver: tier-scoped rules inherit the tier's priority as their floor.
type ClientTier struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"unique;not null"`
	Priority  int       `json:"priority" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ct *ClientTier) BeforeCreate(tx *gorm.DB) error {
	if ct.ID == uuid.Nil {
		ct.ID = uuid.New()
	}
	return nil
}
