package models

type Category struct {
	BaseModel
	Name         string    `json:"name"`
	Slug         string    `gorm:"uniqueIndex" json:"slug"`
	Description  string    `json:"description"`
	Image        string    `json:"image"`
	ProductCount int       `json:"product_count"`
	Products     []Product `json:"products,omitempty"`
}

type Banner struct {
	BaseModel
	Title    string `json:"title"`
	Image    string `json:"image"`
	URL      string `json:"url"`
	IsActive bool   `json:"is_active"`
}
