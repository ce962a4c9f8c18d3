// Package seed provisions the admin account and the default catalog categories.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"hetave/internal/apperr"
	"hetave/internal/models"
	"hetave/internal/repositories"
	"hetave/internal/services"

	"gopkg.in/yaml.v3"
)

// CategorySeed is one entry of a category seed file.
type CategorySeed struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
}

type categoryFile struct {
	Categories []CategorySeed `yaml:"categories"`
}

// DefaultCategories is the storefront's initial category list.
var DefaultCategories = []CategorySeed{
	{Name: "Head Protection", Description: "Protect your head with certified safety helmets and hard hats"},
	{Name: "Eye Protection", Description: "Safety goggles and glasses for eye protection"},
	{Name: "Safety Mask", Description: "Respiratory protection masks and face coverings"},
	{Name: "Hearing Protection", Description: "Ear muffs and earplugs for noise reduction"},
	{Name: "Hand Protection", Description: "Safety gloves for various industrial applications"},
	{Name: "Foot Protection", Description: "Safety shoes and boots with steel toe protection"},
	{Name: "Body Protection", Description: "Safety uniforms and protective clothing"},
	{Name: "Fire Safety", Description: "Fire extinguishers and fire safety equipment"},
	{Name: "Safety Ladder", Description: "Industrial safety ladders and access equipment"},
	{Name: "Safety Tape", Description: "High-visibility safety tapes and marking solutions"},
}

// LoadCategories reads a YAML file of the form
//
//	categories:
//	  - name: Head Protection
//	    description: Helmets and hard hats
func LoadCategories(path string) ([]CategorySeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read category seed file %s: %w", path, err)
	}
	var f categoryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse category seed YAML: %w", err)
	}
	for i, c := range f.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("category seed %d has no name", i+1)
		}
	}
	return f.Categories, nil
}

// Result counts what a category seed run did.
type Result struct {
	Created int
	Skipped int
}

// SeedCategories creates each category that does not exist yet. Existing
// categories are left untouched.
func SeedCategories(ctx context.Context, repo repositories.CategoryRepository, categories []CategorySeed) (Result, error) {
	var res Result
	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		_, err := repo.GetByName(ctx, name)
		if err == nil {
			log.Printf("Category %q already exists. Skipping.", name)
			res.Skipped++
			continue
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return res, fmt.Errorf("failed to look up category %q: %w", name, err)
		}
		category := &models.Category{Name: name, Description: c.Description, Image: c.Image}
		if err := repo.Create(ctx, category); err != nil {
			return res, fmt.Errorf("failed to create category %q: %w", name, err)
		}
		log.Printf("Created category %q", name)
		res.Created++
	}
	return res, nil
}

// SeedAdmin makes sure an administrator account exists for email.
func SeedAdmin(ctx context.Context, auth *services.AuthService, email, password string) error {
	created, err := auth.ProvisionAdmin(ctx, "Admin", email, password)
	if err != nil {
		return err
	}
	if created {
		log.Printf("Created admin account %s", email)
	} else {
		log.Printf("Admin account %s already exists", email)
	}
	return nil
}
