package media

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DiskStore writes images below a local directory and serves them from
// baseURL. It backs local development when Cloudinary is not configured.
type DiskStore struct {
	root    string
	baseURL string
}

// NewDiskStore creates a DiskStore rooted at root. baseURL is the public
// prefix the directory is served under, e.g. "http://localhost:5002/uploads".
func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", root, err)
	}
	return &DiskStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root returns the directory images are written to.
func (s *DiskStore) Root() string { return s.root }

func (s *DiskStore) Upload(_ context.Context, data []byte, folder string) (*Asset, error) {
	ext := ".bin"
	switch http.DetectContentType(data) {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	case "image/gif":
		ext = ".gif"
	case "image/webp":
		ext = ".webp"
	}
	publicID := filepath.ToSlash(filepath.Join(folder, uuid.NewString()+ext))
	path := filepath.Join(s.root, filepath.FromSlash(publicID))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create folder %s: %w", folder, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}
	return &Asset{URL: s.baseURL + "/" + publicID, PublicID: publicID}, nil
}

func (s *DiskStore) Delete(_ context.Context, publicID string) error {
	path := filepath.Join(s.root, filepath.FromSlash(publicID))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image %s: %w", publicID, err)
	}
	return nil
}
