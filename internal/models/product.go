package models

import "time"

// ColorVariant is a named color with its own image.
type ColorVariant struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Product represents a sellable item in the catalog.
type Product struct {
	ID          string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string         `json:"name" gorm:"index;type:varchar(255)"`
	Description string         `json:"description"`
	Brand       string         `json:"brand"`
	Price       float64        `json:"price" gorm:"index"`
	Category    string         `json:"category" gorm:"index;type:varchar(255)"` // Category name, not a foreign key
	Image       string         `json:"image"`
	Images      []string       `json:"images" gorm:"serializer:json"`
	Colors      []ColorVariant `json:"colors" gorm:"serializer:json"`
	InStock     bool           `json:"inStock" gorm:"index"`
	Variants    []string       `json:"variants" gorm:"serializer:json"`
	Sizes       []string       `json:"sizes" gorm:"serializer:json"`
	CreatedAt   time.Time      `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// ListView blanks the fields the catalog list omits to keep payloads small.
func (p Product) ListView() Product {
	p.Description = ""
	p.Images = []string{}
	return p
}

// Normalize replaces nil slices with empty ones so JSON renders [] rather than null.
func (p *Product) Normalize() {
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Colors == nil {
		p.Colors = []ColorVariant{}
	}
	if p.Variants == nil {
		p.Variants = []string{}
	}
	if p.Sizes == nil {
		p.Sizes = []string{}
	}
}
