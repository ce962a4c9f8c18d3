package handlers

import (
	"hetave/internal/middleware"
	"hetave/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CategoryHandler handles HTTP requests for categories.
type CategoryHandler struct {
	service *services.CategoryService
}

func NewCategoryHandler(service *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

func (h *CategoryHandler) RegisterRoutes(router fiber.Router, guards middleware.Guards) {
	categoryRoutes := router.Group("/categories")
	categoryRoutes.Get("/", h.HandleListCategories)
	categoryRoutes.Get("/:id", h.HandleGetCategory)
	categoryRoutes.Post("/", guards.Auth, guards.Admin, h.HandleCreateCategory)
	categoryRoutes.Put("/:id", guards.Auth, guards.Admin, h.HandleUpdateCategory)
	categoryRoutes.Delete("/:id", guards.Auth, guards.Admin, h.HandleDeleteCategory)
}

func (h *CategoryHandler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, err, "Error fetching categories")
	}
	return c.JSON(fiber.Map{"success": true, "categories": categories})
}

func (h *CategoryHandler) HandleGetCategory(c *fiber.Ctx) error {
	category, err := h.service.GetCategory(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Error fetching category")
	}
	return c.JSON(fiber.Map{"success": true, "category": category})
}

func (h *CategoryHandler) HandleCreateCategory(c *fiber.Ctx) error {
	f, err := parseForm(c)
	if err != nil {
		return invalidBody(c, err)
	}
	name, _ := f.value("name")
	description, _ := f.value("description")
	image, err := f.upload("image")
	if err != nil {
		return respondError(c, err, "Error creating category")
	}

	category, err := h.service.CreateCategory(c.UserContext(), name, description, image)
	if err != nil {
		return respondError(c, err, "Error creating category")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"message":  "Category created successfully",
		"category": category,
	})
}

func (h *CategoryHandler) HandleUpdateCategory(c *fiber.Ctx) error {
	f, err := parseForm(c)
	if err != nil {
		return invalidBody(c, err)
	}
	image, err := f.upload("image")
	if err != nil {
		return respondError(c, err, "Error updating category")
	}

	category, err := h.service.UpdateCategory(c.UserContext(), c.Params("id"), f.str("name"), f.str("description"), image)
	if err != nil {
		return respondError(c, err, "Error updating category")
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Category updated successfully",
		"category": category,
	})
}

func (h *CategoryHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	if err := h.service.DeleteCategory(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, "Error deleting category")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Category deleted successfully",
	})
}
