package services_test

import (
	"context"
	"errors"
	"testing"

	"hetave/internal/apperr"
	"hetave/internal/models"
	"hetave/internal/repositories"
	"hetave/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func helmetInput() services.ProductInput {
	return services.ProductInput{Name: "Safety Helmet", Price: floatPtr(850), Category: "Head Protection", Sizes: []string{"M", "L"}}
}

func TestProductService_ListProducts(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, &fakeMedia{})

	stored := []models.Product{
		{ID: "1", Name: "Product A", Description: "long text", Images: []string{"a.png"}, Price: 10},
		{ID: "2", Name: "Product B", Price: 20},
	}

	mockRepo.On("List", ctx, repositories.ProductFilter{Category: "Hand Protection"}).Return(stored, nil).Once()
	products, err := service.ListProducts(ctx, "Hand Protection", false)
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Empty(t, products[0].Description)
	assert.Empty(t, products[0].Images)

	full := []models.Product{{ID: "1", Name: "Product A", Description: "long text", Images: []string{"a.png"}}}
	mockRepo.On("List", ctx, repositories.ProductFilter{}).Return(full, nil).Once()
	products, err = service.ListProducts(ctx, "", true)
	require.NoError(t, err)
	assert.Equal(t, "long text", products[0].Description)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, &fakeMedia{})

	expectedProduct := &models.Product{ID: "1", Name: "Product A", Price: 10.0}

	mockRepo.On("GetByID", ctx, "1").Return(expectedProduct, nil).Twice()
	product, err := service.GetProduct(ctx, "1")
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)
	again, err := service.GetProduct(ctx, "1")
	assert.NoError(t, err)
	assert.Equal(t, product, again)

	mockRepo.On("GetByID", ctx, "99").Return(nil, apperr.NotFound("product with ID 99 not found")).Once()
	product, err = service.GetProduct(ctx, "99")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Nil(t, product)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	store := &fakeMedia{}
	service := services.NewProductService(mockRepo, store)

	// No image
	_, err := service.CreateProduct(ctx, helmetInput(), nil, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// Missing price
	in := helmetInput()
	in.Price = nil
	_, err = service.CreateProduct(ctx, in, &services.Upload{Data: pngBytes}, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// Not an image
	_, err = service.CreateProduct(ctx, helmetInput(), &services.Upload{Filename: "x.txt", Data: []byte("hello world")}, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Zero(t, store.uploads)

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Product")).Return(nil).Once()
	colors := []services.ColorInput{
		{Name: "Yellow", Upload: &services.Upload{Data: pngBytes}},
		{Name: "White", Image: "https://cdn.test/existing.png"},
		{Name: "Ghost"},
	}
	product, err := service.CreateProduct(ctx, helmetInput(), &services.Upload{Data: pngBytes}, colors)
	require.NoError(t, err)
	assert.NotEmpty(t, product.Image)
	assert.True(t, product.InStock)
	require.Len(t, product.Colors, 2)
	assert.Equal(t, "Yellow", product.Colors[0].Name)
	assert.Equal(t, "https://cdn.test/existing.png", product.Colors[1].Image)
	assert.Equal(t, 2, store.uploads)
	assert.Empty(t, store.deleted)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_CleansUpOnFailure(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	store := &fakeMedia{}
	service := services.NewProductService(mockRepo, store)

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Product")).Return(apperr.Service(errors.New("disk full"), "database error")).Once()
	colors := []services.ColorInput{{Name: "Red", Upload: &services.Upload{Data: pngBytes}}}
	_, err := service.CreateProduct(ctx, helmetInput(), &services.Upload{Data: pngBytes}, colors)
	assert.ErrorIs(t, err, apperr.ErrService)
	assert.Len(t, store.deleted, 2)
	mockRepo.AssertExpectations(t)

	// A failed color upload aborts before persistence and removes the primary image
	failing := &fakeMedia{failAfter: 1}
	service = services.NewProductService(mockRepo, failing)
	_, err = service.CreateProduct(ctx, helmetInput(), &services.Upload{Data: pngBytes}, colors)
	assert.ErrorIs(t, err, apperr.ErrService)
	assert.Equal(t, []string{"hetave/products/img1"}, failing.deleted)
	mockRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestProductService_UpdateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	store := &fakeMedia{}
	service := services.NewProductService(mockRepo, store)

	existing := func() *models.Product {
		return &models.Product{ID: "1", Name: "Helmet", Brand: "Karam", Price: 500, Category: "Head Protection", Image: "https://cdn.test/old.png", InStock: true}
	}

	// Partial update keeps untouched fields
	mockRepo.On("GetByID", mock.Anything, "1").Return(existing(), nil).Once()
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.Product")).Return(nil).Once()
	updated, err := service.UpdateProduct(ctx, "1", services.ProductPatch{Price: floatPtr(650), InStock: new(bool)}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 650.0, updated.Price)
	assert.False(t, updated.InStock)
	assert.Equal(t, "Karam", updated.Brand)
	assert.Equal(t, "https://cdn.test/old.png", updated.Image)

	// Colors without a new primary image: first color becomes the primary
	mockRepo.On("GetByID", mock.Anything, "1").Return(existing(), nil).Once()
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.Product")).Return(nil).Once()
	colors := []services.ColorInput{{Name: "Blue", Image: "https://cdn.test/blue.png"}, {Name: "Red", Upload: &services.Upload{Data: pngBytes}}}
	updated, err = service.UpdateProduct(ctx, "1", services.ProductPatch{}, nil, &colors)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/blue.png", updated.Image)
	assert.Len(t, updated.Colors, 2)

	// A new primary image wins over the first color
	mockRepo.On("GetByID", mock.Anything, "1").Return(existing(), nil).Once()
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.Product")).Return(nil).Once()
	updated, err = service.UpdateProduct(ctx, "1", services.ProductPatch{}, &services.Upload{Data: pngBytes}, &colors)
	require.NoError(t, err)
	assert.NotEqual(t, "https://cdn.test/blue.png", updated.Image)
	assert.Contains(t, updated.Image, "hetave/products/")

	mockRepo.On("GetByID", mock.Anything, "99").Return(nil, apperr.NotFound("product with ID 99 not found")).Once()
	_, err = service.UpdateProduct(ctx, "99", services.ProductPatch{Name: strPtr("x")}, nil, nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, &fakeMedia{})

	mockRepo.On("Delete", ctx, "1").Return(nil).Once()
	assert.NoError(t, service.DeleteProduct(ctx, "1"))

	mockRepo.On("Delete", ctx, "99").Return(apperr.NotFound("product with ID 99 not found for deletion")).Once()
	err := service.DeleteProduct(ctx, "99")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CategoryValidation(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	categories := repositories.NewGORMCategoryRepository(db)
	require.NoError(t, categories.Create(ctx, &models.Category{Name: "Head Protection"}))

	service := services.NewProductService(repositories.NewGORMProductRepository(db), &fakeMedia{}).
		WithCategoryValidation(categories)

	in := helmetInput()
	in.Category = "Space Suits"
	_, err := service.CreateProduct(ctx, in, &services.Upload{Data: pngBytes}, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	created, err := service.CreateProduct(ctx, helmetInput(), &services.Upload{Data: pngBytes}, nil)
	require.NoError(t, err)

	_, err = service.UpdateProduct(ctx, created.ID, services.ProductPatch{Category: strPtr("Space Suits")}, nil, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestProductService_InMemoryRepository(t *testing.T) {
	ctx := context.Background()
	store := &fakeMedia{}
	service := services.NewProductService(repositories.NewMemoryProductRepository(), store)

	created, err := service.CreateProduct(ctx, services.ProductInput{
		Name:     "Ear Muffs",
		Price:    floatPtr(450),
		Category: "Hearing Protection",
		Sizes:    []string{"Free size"},
	}, &services.Upload{Filename: "muffs.png", Data: pngBytes}, nil)
	require.NoError(t, err)

	first, err := service.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	second, err := service.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.True(t, first.InStock)

	// Mutating a returned product does not leak into the store.
	first.Sizes[0] = "XL"
	third, err := service.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Free size"}, third.Sizes)

	updated, err := service.UpdateProduct(ctx, created.ID, services.ProductPatch{Name: strPtr("Ear Muffs Pro")}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ear Muffs Pro", updated.Name)

	list, err := service.ListProducts(ctx, "Hearing Protection", false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Description)

	require.NoError(t, service.DeleteProduct(ctx, created.ID))
	_, err = service.GetProduct(ctx, created.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
