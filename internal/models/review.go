package models

import "github.com/google/uuid"

// Review is a product review. One review per (user, product).
type Review struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_review_user_product" json:"product_id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_review_user_product" json:"user_id"`
	User      *User     `json:"user,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
}

type BlogPost struct {
	BaseModel
	Title       string    `json:"title"`
	Slug        string    `gorm:"uniqueIndex" json:"slug"`
	Content     string    `json:"content"`
	CoverImage  string    `json:"cover_image"`
	AuthorID    uuid.UUID `gorm:"type:uuid" json:"author_id"`
	Author      *User     `json:"author,omitempty"`
	IsPublished bool      `json:"is_published"`
}
