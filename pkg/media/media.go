// Package media stores uploaded images and hands back durable URLs.
package media

import "context"

// Folders used by the catalog.
const (
	FolderProducts   = "hetave/products"
	FolderCategories = "hetave/categories"
)

// Asset is a stored image.
type Asset struct {
	URL      string
	PublicID string
}

// Store uploads raw image bytes into a logical folder and can remove them again.
type Store interface {
	Upload(ctx context.Context, data []byte, folder string) (*Asset, error)
	Delete(ctx context.Context, publicID string) error
}
