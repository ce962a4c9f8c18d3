package seed_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"hetave/internal/apperr"
	"hetave/internal/models"
	"hetave/internal/repositories"
	"hetave/internal/seed"
	"hetave/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repositories.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, repositories.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestSeedCategories_SkipsExisting(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMCategoryRepository(openTestDB(t))
	require.NoError(t, repo.Create(ctx, &models.Category{Name: "Fire Safety", Description: "custom"}))

	res, err := seed.SeedCategories(ctx, repo, seed.DefaultCategories)
	require.NoError(t, err)
	assert.Equal(t, len(seed.DefaultCategories)-1, res.Created)
	assert.Equal(t, 1, res.Skipped)

	fire, err := repo.GetByName(ctx, "Fire Safety")
	require.NoError(t, err)
	assert.Equal(t, "custom", fire.Description)

	res, err = seed.SeedCategories(ctx, repo, seed.DefaultCategories)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, len(seed.DefaultCategories), res.Skipped)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 10)
}

func TestLoadCategories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "categories.yaml")
	content := "categories:\n  - name: Head Protection\n    description: Helmets\n  - name: Safety Tape\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	categories, err := seed.LoadCategories(path)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Head Protection", categories[0].Name)
	assert.Equal(t, "Helmets", categories[0].Description)
	assert.Equal(t, "Safety Tape", categories[1].Name)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("categories:\n  - description: nameless\n"), 0o600))
	_, err = seed.LoadCategories(bad)
	assert.ErrorContains(t, err, "has no name")

	_, err = seed.LoadCategories(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestSeedAdmin(t *testing.T) {
	ctx := context.Background()
	users := repositories.NewGORMUserRepository(openTestDB(t))
	auth := services.NewAuthService(users, "secret", 0)

	require.NoError(t, seed.SeedAdmin(ctx, auth, "Owner@Hetave.co.in", "admin123"))
	require.NoError(t, seed.SeedAdmin(ctx, auth, "owner@hetave.co.in", "admin123"))

	admin, err := users.GetByEmail(ctx, "owner@hetave.co.in")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	res, err := auth.LogIn(ctx, "owner@hetave.co.in", "admin123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, res.User.Role)

	_, err = auth.SignUp(ctx, "Bob", "bob@example.com", "secret1")
	require.NoError(t, err)
	err = seed.SeedAdmin(ctx, auth, "bob@example.com", "admin123")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	err = seed.SeedAdmin(ctx, auth, "", "admin123")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
