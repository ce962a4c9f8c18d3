//go:build integration
// +build integration

package repositories_test

import (
	"context"
	"testing"
	"time"

	"hetave/internal/apperr"
	"hetave/internal/models"
	"hetave/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres starts a PostgreSQL container and returns its DSN.
func setupPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("hetave"),
		postgres.WithUsername("hetave"),
		postgres.WithPassword("hetave"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}
	return dsn
}

func TestPostgresRepositories(t *testing.T) {
	ctx := context.Background()
	db, err := repositories.Open("postgres", setupPostgres(t))
	require.NoError(t, err)
	require.NoError(t, repositories.AutoMigrate(db))

	users := repositories.NewGORMUserRepository(db)
	require.NoError(t, users.Create(ctx, &models.User{Name: "Alice", Email: "a@x.com", Password: "hash", Role: models.RoleUser}))
	err = users.Create(ctx, &models.User{Name: "Dup", Email: "A@x.com", Password: "hash"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	products := repositories.NewGORMProductRepository(db)
	p := &models.Product{Name: "Helmet", Price: 850, Category: "Head Protection", Image: "img", InStock: true,
		Colors: []models.ColorVariant{{Name: "White", Image: "white"}}}
	require.NoError(t, products.Create(ctx, p))
	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Colors, got.Colors)

	orders := repositories.NewGORMOrderRepository(db)
	o := &models.Order{Email: "a@x.com", TotalAmount: 850, Status: models.StatusPending, PaymentStatus: models.PaymentPending,
		Items: []models.OrderItem{{ProductID: &p.ID, Name: "Helmet", Price: 850, Quantity: 1}}}
	require.NoError(t, orders.Create(ctx, o))
	require.NoError(t, orders.UpdateStatus(ctx, o.ID, models.StatusProcessing))
	n, err := orders.Count(ctx, repositories.OrderFilter{Status: models.StatusProcessing})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
