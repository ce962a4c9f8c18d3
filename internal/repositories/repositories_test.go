package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"hetave/internal/apperr"
	"hetave/internal/models"
	"hetave/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// openTestDB opens a private in-memory SQLite database for one test.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := repositories.Open("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, repositories.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func strPtr(s string) *string { return &s }

func TestGORMUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(openTestDB(t))

	user := &models.User{Name: "Alice", Email: "Alice@X.com", Password: "hash", Role: models.RoleUser}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice@x.com", user.Email)

	found, err := repo.GetByEmail(ctx, "ALICE@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", byID.Name)

	err = repo.Create(ctx, &models.User{Name: "Other", Email: "alice@x.com", Password: "hash"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	users, err := repo.GetByIDs(ctx, []string{user.ID, "missing"})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Contains(t, users, user.ID)
}

func TestGORMProductRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(openTestDB(t))

	helmet := &models.Product{
		Name:     "Safety Helmet",
		Price:    850,
		Category: "Head Protection",
		Image:    "https://cdn.example/helmet.jpg",
		Colors:   []models.ColorVariant{{Name: "Yellow", Image: "https://cdn.example/yellow.jpg"}},
		InStock:  true,
		Sizes:    []string{"M", "L"},
	}
	require.NoError(t, repo.Create(ctx, helmet))
	time.Sleep(5 * time.Millisecond)
	gloves := &models.Product{Name: "Nitrile Gloves", Price: 350, Category: "Hand Protection", Image: "https://cdn.example/gloves.jpg", InStock: true}
	require.NoError(t, repo.Create(ctx, gloves))

	all, err := repo.List(ctx, repositories.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, gloves.ID, all[0].ID, "newest first")

	head, err := repo.List(ctx, repositories.ProductFilter{Category: "Head Protection"})
	require.NoError(t, err)
	require.Len(t, head, 1)
	assert.Equal(t, []models.ColorVariant{{Name: "Yellow", Image: "https://cdn.example/yellow.jpg"}}, head[0].Colors)
	assert.Equal(t, []string{"M", "L"}, head[0].Sizes)
	assert.Equal(t, []string{}, head[0].Images)

	helmet.InStock = false
	helmet.Price = 900
	require.NoError(t, repo.Update(ctx, helmet))
	got, err := repo.GetByID(ctx, helmet.ID)
	require.NoError(t, err)
	assert.False(t, got.InStock)
	assert.Equal(t, 900.0, got.Price)

	byIDs, err := repo.GetByIDs(ctx, []string{helmet.ID, "gone"})
	require.NoError(t, err)
	assert.Len(t, byIDs, 1)

	require.NoError(t, repo.Delete(ctx, helmet.ID))
	_, err = repo.GetByID(ctx, helmet.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, helmet.ID), apperr.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &models.Product{ID: "gone", Name: "x"}), apperr.ErrNotFound)
}

func TestGORMCategoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMCategoryRepository(openTestDB(t))

	require.NoError(t, repo.Create(ctx, &models.Category{Name: "Hand Protection"}))
	eye := &models.Category{Name: "Eye Protection", Description: "Goggles"}
	require.NoError(t, repo.Create(ctx, eye))

	assert.ErrorIs(t, repo.Create(ctx, &models.Category{Name: "Eye Protection"}), apperr.ErrConflict)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Eye Protection", list[0].Name)

	byName, err := repo.GetByName(ctx, "Eye Protection")
	require.NoError(t, err)
	assert.Equal(t, eye.ID, byName.ID)

	eye.Description = ""
	eye.Image = "https://cdn.example/eye.jpg"
	require.NoError(t, repo.Update(ctx, eye))
	got, err := repo.GetByID(ctx, eye.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Description)
	assert.Equal(t, "https://cdn.example/eye.jpg", got.Image)

	require.NoError(t, repo.Delete(ctx, eye.ID))
	assert.ErrorIs(t, repo.Delete(ctx, eye.ID), apperr.ErrNotFound)
}

func TestGORMOrderRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMOrderRepository(openTestDB(t))

	order := &models.Order{
		UserID: strPtr("user-1"),
		Email:  "buyer@example.com",
		Items: []models.OrderItem{
			{ProductID: strPtr("prod-1"), Name: "Gloves", Price: 350, Quantity: 12},
			{Name: "Custom Tape", Price: 40, Quantity: 1},
		},
		ShippingAddress: models.ShippingAddress{FullName: "Ravi", City: "Bhilwara", Country: "India"},
		TotalAmount:     4240,
		PaymentStatus:   models.PaymentPending,
		Status:          models.StatusPending,
	}
	require.NoError(t, repo.Create(ctx, order))
	assert.NotEmpty(t, order.ID)

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Gloves", got.Items[0].Name)
	assert.Nil(t, got.Items[1].ProductID)
	assert.Equal(t, "Bhilwara", got.ShippingAddress.City)

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, models.StatusShipped))
	shipped, err := repo.List(ctx, repositories.OrderFilter{Status: models.StatusShipped})
	require.NoError(t, err)
	require.Len(t, shipped, 1)
	assert.Len(t, shipped[0].Items, 2)

	n, err := repo.Count(ctx, repositories.OrderFilter{Status: models.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	n, err = repo.Count(ctx, repositories.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", models.StatusShipped), apperr.ErrNotFound)
	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGORMContactRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMContactRepository(openTestDB(t))

	require.NoError(t, repo.Create(ctx, &models.Contact{Name: "A", Email: "a@x.com", Message: "first"}))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, repo.Create(ctx, &models.Contact{Name: "B", Email: "b@x.com", Message: "second"}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Message)
}

func TestMemoryRepositories(t *testing.T) {
	ctx := context.Background()
	products := repositories.NewMemoryProductRepository()
	p := &models.Product{Name: "Goggles", Price: 120, Category: "Eye Protection", Image: "img", Sizes: []string{"S"}}
	require.NoError(t, products.Create(ctx, p))

	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	got.Sizes[0] = "XL"
	again, _ := products.GetByID(ctx, p.ID)
	assert.Equal(t, "S", again.Sizes[0], "stored copy must not alias caller slices")

	orders := repositories.NewMemoryOrderRepository()
	o := &models.Order{Status: models.StatusPending, PaymentStatus: models.PaymentPending, Items: []models.OrderItem{{Name: "Goggles", Price: 120, Quantity: 1}}}
	require.NoError(t, orders.Create(ctx, o))
	require.NoError(t, orders.UpdateStatus(ctx, o.ID, models.StatusDelivered))
	n, err := orders.Count(ctx, repositories.OrderFilter{Status: models.StatusDelivered})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.ErrorIs(t, orders.UpdateStatus(ctx, "nope", models.StatusShipped), apperr.ErrNotFound)
}
