package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Product struct {
	BaseModel
	Slug            string         `gorm:"uniqueIndex" json:"slug"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Price           float64        `json:"price"`
	OldPrice        float64        `json:"old_price"`
	DiscountPercent int            `json:"discount_percent"`
	CountInStock    int            `json:"count_in_stock"`
	IsPublished     bool           `json:"is_published"`
	Images          pq.StringArray `gorm:"type:text[]" json:"images"`
	Sizes           pq.StringArray `gorm:"type:text[]" json:"sizes"`
	RatingAverage   float64        `json:"rating_average"`
	RatingCount     int            `json:"rating_count"`
	CategoryID      *uuid.UUID     `gorm:"type:uuid" json:"category_id"`
	Category        *Category      `json:"category,omitempty"`
	Reviews         []Review       `json:"reviews,omitempty"`
}
