package repositories

import (
	"context"
	"fmt"

	"hetave/internal/apperr"
	"hetave/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// List retrieves products, newest first.
func (r *GORMProductRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	var products []models.Product
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if err := q.Find(&products).Error; err != nil {
		return nil, storeError(err, "products")
	}
	for i := range products {
		products[i].Normalize()
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, storeError(err, fmt.Sprintf("product with ID %s", id))
	}
	product.Normalize()
	return &product, nil
}

// GetByIDs loads the products with the given ids, keyed by id.
func (r *GORMProductRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.Product, error) {
	out := make(map[string]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, storeError(err, "products")
	}
	for _, p := range products {
		p.Normalize()
		out[p.ID] = p
	}
	return out, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	product.Normalize()
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return storeError(err, "product")
	}
	return nil
}

// Update saves every field of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	product.Normalize()
	// Select("*") writes zero values too (InStock=false, empty strings).
	res := r.db.WithContext(ctx).Model(product).Select("*").Omit("created_at").Updates(product)
	if res.Error != nil {
		return storeError(res.Error, "product")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product with ID %s not found for update", product.ID)
	}
	return nil
}

// Delete deletes a product by its ID.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return storeError(res.Error, "product")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product with ID %s not found for deletion", id)
	}
	return nil
}
