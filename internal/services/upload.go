package services

import (
	"context"
	"log"
	"net/http"

	"hetave/internal/apperr"
	"hetave/pkg/media"
)

// Image upload limits.
const (
	MaxImageBytes  = 5 << 20
	MaxColorImages = 10
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Upload is an image file received from a client.
type Upload struct {
	Filename string
	Data     []byte
}

// CheckUpload rejects empty, oversized and non-image uploads. The content
// type is sniffed from the bytes, not taken from the client.
func CheckUpload(u *Upload) error {
	if u == nil || len(u.Data) == 0 {
		return apperr.Validation("Uploaded image is empty")
	}
	if len(u.Data) > MaxImageBytes {
		return apperr.Validation("Image %s exceeds the 5MB limit", u.Filename)
	}
	if !allowedImageTypes[http.DetectContentType(u.Data)] {
		return apperr.Validation("Only image files are allowed")
	}
	return nil
}

// uploadBatch tracks the assets uploaded during one mutation so they can be
// destroyed if the mutation fails afterwards.
type uploadBatch struct {
	store  media.Store
	folder string
	assets []*media.Asset
}

func (b *uploadBatch) upload(ctx context.Context, u *Upload) (string, error) {
	if err := CheckUpload(u); err != nil {
		return "", err
	}
	asset, err := b.store.Upload(ctx, u.Data, b.folder)
	if err != nil {
		return "", apperr.Service(err, "failed to upload image")
	}
	b.assets = append(b.assets, asset)
	return asset.URL, nil
}

// rollback destroys every uploaded asset, logging failures.
func (b *uploadBatch) rollback(ctx context.Context) {
	for _, a := range b.assets {
		if err := b.store.Delete(ctx, a.PublicID); err != nil {
			log.Printf("Warning: failed to clean up uploaded image %s: %v", a.PublicID, err)
		}
	}
	b.assets = nil
}
