package domain

import (
	"time"

	"github.com/google/uuid"
)

// PrizeCategory enumerates prize categories.
type PrizeCategory string

const (
	CategoryFood     PrizeCategory = "FOOD"
	CategoryClothing PrizeCategory = "CLOTHING"
	CategorySuper    PrizeCategory = "SUPER"
)

// Valid reports whether c is a known category.
func (c PrizeCategory) Valid() bool {
	switch c {
	case CategoryFood, CategoryClothing, CategorySuper:
		return true
	}
	return false
}

// Prize represents a prizes row.
type Prize struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Category    PrizeCategory `json:"category"`
	PointValue  int64         `json:"point_value"`
	Stock       int           `json:"stock"`
	Active      bool          `json:"active"`
	Region      *string       `json:"region,omitempty"` // nil: claimable from every region
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Claimable reports whether the prize can currently be claimed.
func (p *Prize) Claimable() bool {
	return p.Active && p.Stock > 0
}

// AvailableIn reports whether users of region may claim the prize.
func (p *Prize) AvailableIn(region string) bool {
	return p.Region == nil || *p.Region == region
}

// PrizeFilter narrows catalog listings.
type PrizeFilter struct {
	Region        string
	Category      PrizeCategory
	AvailableOnly bool
	Limit         int
}

// PrizeInput is the admin create/update payload.
type PrizeInput struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Category    PrizeCategory `json:"category"`
	PointValue  int64         `json:"point_value"`
	Stock       int           `json:"stock"`
	Active      *bool         `json:"active,omitempty"`
	Region      *string       `json:"region,omitempty"`
}
