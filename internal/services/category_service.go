package services

import (
	"context"
	"errors"
	"strings"

	"hetave/internal/apperr"
	"hetave/internal/models"
	"hetave/internal/repositories"
	"hetave/pkg/media"
)

// CategoryService manages catalog categories.
type CategoryService struct {
	repo  repositories.CategoryRepository
	media media.Store
}

func NewCategoryService(repo repositories.CategoryRepository, store media.Store) *CategoryService {
	return &CategoryService{repo: repo, media: store}
}

// ListCategories returns all categories sorted by name.
func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.List(ctx)
}

func (s *CategoryService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateCategory creates a category with a unique name and an optional image.
func (s *CategoryService) CreateCategory(ctx context.Context, name, description string, image *Upload) (_ *models.Category, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("Please provide category name")
	}
	if err := s.ensureNameFree(ctx, name); err != nil {
		return nil, err
	}

	category := &models.Category{Name: name, Description: description}
	batch := &uploadBatch{store: s.media, folder: media.FolderCategories}
	defer func() {
		if err != nil {
			batch.rollback(context.WithoutCancel(ctx))
		}
	}()
	if image != nil {
		if category.Image, err = batch.upload(ctx, image); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, category); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.Conflict("Category with this name already exists")
		}
		return nil, err
	}
	return category, nil
}

// UpdateCategory renames, redescribes or re-images a category. Nil fields are
// left untouched.
func (s *CategoryService) UpdateCategory(ctx context.Context, id string, name, description *string, image *Upload) (_ *models.Category, err error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		if n := strings.TrimSpace(*name); n != "" && n != category.Name {
			if err := s.ensureNameFree(ctx, n); err != nil {
				return nil, err
			}
			category.Name = n
		}
	}
	if description != nil {
		category.Description = *description
	}

	batch := &uploadBatch{store: s.media, folder: media.FolderCategories}
	defer func() {
		if err != nil {
			batch.rollback(context.WithoutCancel(ctx))
		}
	}()
	if image != nil {
		if category.Image, err = batch.upload(ctx, image); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, category); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.Conflict("Category with this name already exists")
		}
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category. Products keep their category label.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *CategoryService) ensureNameFree(ctx context.Context, name string) error {
	_, err := s.repo.GetByName(ctx, name)
	switch {
	case err == nil:
		return apperr.Conflict("Category with this name already exists")
	case errors.Is(err, apperr.ErrNotFound):
		return nil
	default:
		return err
	}
}
