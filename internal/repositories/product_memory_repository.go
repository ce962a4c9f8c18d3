package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"hetave/internal/apperr"
	"hetave/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

// List returns products matching filter, newest first.
func (r *MemoryProductRepository) List(_ context.Context, filter ProductFilter) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		productList = append(productList, cloneProduct(p))
	}
	sort.Slice(productList, func(i, j int) bool {
		return productList[i].CreatedAt.After(productList[j].CreatedAt)
	})
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, apperr.NotFound("product with ID %s not found", id)
	}
	p := cloneProduct(product)
	return &p, nil
}

// GetByIDs returns the known products among ids.
func (r *MemoryProductRepository) GetByIDs(_ context.Context, ids []string) (map[string]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]models.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out[id] = cloneProduct(p)
		}
	}
	return out, nil
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	product.Normalize()
	r.products[product.ID] = cloneProduct(*product)
	return nil
}

// Update modifies an existing product.
func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return apperr.NotFound("product with ID %s not found for update", product.ID)
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now().UTC()
	product.Normalize()
	r.products[product.ID] = cloneProduct(*product)
	return nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return apperr.NotFound("product with ID %s not found for deletion", id)
	}
	delete(r.products, id)
	return nil
}

// cloneProduct copies the slice fields so callers cannot mutate stored state.
func cloneProduct(p models.Product) models.Product {
	p.Images = append([]string{}, p.Images...)
	p.Colors = append([]models.ColorVariant{}, p.Colors...)
	p.Variants = append([]string{}, p.Variants...)
	p.Sizes = append([]string{}, p.Sizes...)
	return p
}
