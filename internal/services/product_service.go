package services

import (
	"context"
	"errors"
	"strings"

	"hetave/internal/apperr"
	"hetave/internal/models"
	"hetave/internal/repositories"
	"hetave/pkg/media"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ProductInput is the data for a new product.
type ProductInput struct {
	Name        string
	Description string
	Brand       string
	Price       *float64
	Category    string
	InStock     *bool
	Variants    []string
	Sizes       []string
}

// ProductPatch carries the fields to change on an existing product. Nil
// fields are left untouched.
type ProductPatch struct {
	Name        *string
	Description *string
	Brand       *string
	Price       *float64
	Category    *string
	InStock     *bool
	Variants    *[]string
	Sizes       *[]string
}

// ColorInput is one color variant as submitted by the admin UI. A variant
// with an Upload gets a freshly uploaded image, otherwise Image is reused.
// Variants with neither are dropped.
type ColorInput struct {
	Name   string  `json:"name"`
	Image  string  `json:"image"`
	Upload *Upload `json:"-"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo       repositories.ProductRepository
	media      media.Store
	categories repositories.CategoryRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, store media.Store) *ProductService {
	return &ProductService{
		repo:  repo,
		media: store,
	}
}

// WithCategoryValidation makes create and update reject category labels that
// do not name an existing category.
func (s *ProductService) WithCategoryValidation(categories repositories.CategoryRepository) *ProductService {
	s.categories = categories
	return s
}

// ListProducts returns the catalog, optionally filtered by category. Unless
// includeDescription is set, descriptions and gallery images are omitted.
func (s *ProductService) ListProducts(ctx context.Context, category string, includeDescription bool) ([]models.Product, error) {
	products, err := s.repo.List(ctx, repositories.ProductFilter{Category: category})
	if err != nil {
		return nil, err
	}
	if !includeDescription {
		for i := range products {
			products[i] = products[i].ListView()
		}
	}
	return products, nil
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct uploads the product's images and persists it. Images
// uploaded before a failure are destroyed again.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput, primary *Upload, colors []ColorInput) (_ *models.Product, err error) {
	ctx, span := tracer.Start(ctx, "ProductService.CreateProduct")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" || in.Price == nil || in.Category == "" {
		return nil, apperr.Validation("Please provide name, price, and category")
	}
	if *in.Price < 0 {
		return nil, apperr.Validation("Price must not be negative")
	}
	if primary == nil {
		return nil, apperr.Validation("Please upload a product image")
	}
	if err := s.checkCategory(ctx, in.Category); err != nil {
		return nil, err
	}

	batch := &uploadBatch{store: s.media, folder: media.FolderProducts}
	defer func() {
		if err != nil {
			span.RecordError(err)
			batch.rollback(context.WithoutCancel(ctx))
		}
	}()

	image, err := batch.upload(ctx, primary)
	if err != nil {
		return nil, err
	}
	variants, err := s.resolveColors(ctx, batch, colors)
	if err != nil {
		return nil, err
	}

	inStock := true
	if in.InStock != nil {
		inStock = *in.InStock
	}
	product := &models.Product{
		Name:        in.Name,
		Description: in.Description,
		Brand:       in.Brand,
		Price:       *in.Price,
		Category:    in.Category,
		Image:       image,
		Images:      []string{},
		Colors:      variants,
		InStock:     inStock,
		Variants:    in.Variants,
		Sizes:       in.Sizes,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct applies patch to an existing product. When colors is given
// it replaces the whole color set, and without a new primary image the first
// color's image becomes the primary image.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch ProductPatch, primary *Upload, colors *[]ColorInput) (_ *models.Product, err error) {
	ctx, span := tracer.Start(ctx, "ProductService.UpdateProduct", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		product.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.Brand != nil {
		product.Brand = *patch.Brand
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return nil, apperr.Validation("Price must not be negative")
		}
		product.Price = *patch.Price
	}
	if patch.Category != nil && strings.TrimSpace(*patch.Category) != "" {
		category := strings.TrimSpace(*patch.Category)
		if category != product.Category {
			if err := s.checkCategory(ctx, category); err != nil {
				return nil, err
			}
		}
		product.Category = category
	}
	if patch.InStock != nil {
		product.InStock = *patch.InStock
	}
	if patch.Variants != nil {
		product.Variants = *patch.Variants
	}
	if patch.Sizes != nil {
		product.Sizes = *patch.Sizes
	}

	batch := &uploadBatch{store: s.media, folder: media.FolderProducts}
	defer func() {
		if err != nil {
			span.RecordError(err)
			batch.rollback(context.WithoutCancel(ctx))
		}
	}()

	newPrimary := false
	if primary != nil {
		if product.Image, err = batch.upload(ctx, primary); err != nil {
			return nil, err
		}
		newPrimary = true
	}
	if colors != nil {
		variants, err := s.resolveColors(ctx, batch, *colors)
		if err != nil {
			return nil, err
		}
		product.Colors = variants
		if !newPrimary && len(variants) > 0 && variants[0].Image != "" {
			product.Image = variants[0].Image
		}
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct deletes a product by its ID. Orders referencing it keep
// their line item snapshot.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *ProductService) resolveColors(ctx context.Context, batch *uploadBatch, colors []ColorInput) ([]models.ColorVariant, error) {
	uploads := 0
	for _, c := range colors {
		if c.Upload != nil {
			uploads++
		}
	}
	if uploads > MaxColorImages {
		return nil, apperr.Validation("At most %d color images can be uploaded", MaxColorImages)
	}

	variants := make([]models.ColorVariant, 0, len(colors))
	for _, c := range colors {
		switch {
		case c.Upload != nil:
			url, err := batch.upload(ctx, c.Upload)
			if err != nil {
				return nil, err
			}
			variants = append(variants, models.ColorVariant{Name: c.Name, Image: url})
		case c.Image != "":
			variants = append(variants, models.ColorVariant{Name: c.Name, Image: c.Image})
		}
	}
	return variants, nil
}

func (s *ProductService) checkCategory(ctx context.Context, name string) error {
	if s.categories == nil {
		return nil
	}
	if _, err := s.categories.GetByName(ctx, name); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Validation("Unknown category %q", name)
		}
		return err
	}
	return nil
}
