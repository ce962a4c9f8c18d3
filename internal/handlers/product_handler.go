package handlers

import (
	"hetave/internal/middleware"
	"hetave/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes. Reads are public, writes are admin only.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, guards middleware.Guards) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Post("/", guards.Auth, guards.Admin, h.HandleCreateProduct)
	productRoutes.Put("/:id", guards.Auth, guards.Admin, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", guards.Auth, guards.Admin, h.HandleDeleteProduct)
}

// HandleListProducts lists the catalog. ?category= filters by category label
// and ?includeDescription=true returns full records.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext(), c.Query("category"), c.Query("includeDescription") == "true")
	if err != nil {
		return respondError(c, err, "Error fetching products")
	}
	c.Set(fiber.HeaderCacheControl, "public, max-age=300")
	return c.JSON(fiber.Map{"success": true, "products": products})
}

func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Error fetching product")
	}
	c.Set(fiber.HeaderCacheControl, "public, max-age=300")
	return c.JSON(fiber.Map{"success": true, "product": product})
}

// HandleCreateProduct creates a product from a multipart form with an
// "image" file and optional "colorImages" files.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	f, err := parseForm(c)
	if err != nil {
		return invalidBody(c, err)
	}

	in := services.ProductInput{}
	in.Name, _ = f.value("name")
	in.Description, _ = f.value("description")
	in.Brand, _ = f.value("brand")
	in.Category, _ = f.value("category")
	in.InStock = f.boolean("inStock")
	if in.Price, err = f.float("price"); err != nil {
		return respondError(c, err, "Error creating product")
	}
	variants, err := f.stringList("variants")
	if err != nil {
		return respondError(c, err, "Error creating product")
	}
	sizes, err := f.stringList("sizes")
	if err != nil {
		return respondError(c, err, "Error creating product")
	}
	in.Variants, in.Sizes = deref(variants), deref(sizes)

	primary, err := f.upload("image")
	if err != nil {
		return respondError(c, err, "Error creating product")
	}
	colors, err := h.colorInputs(f)
	if err != nil {
		return respondError(c, err, "Error creating product")
	}

	product, err := h.service.CreateProduct(c.UserContext(), in, primary, deref(colors))
	if err != nil {
		return respondError(c, err, "Error creating product")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Product created successfully",
		"product": product,
	})
}

// HandleUpdateProduct applies the fields present in the form.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	f, err := parseForm(c)
	if err != nil {
		return invalidBody(c, err)
	}

	patch := services.ProductPatch{
		Name:        f.str("name"),
		Description: f.str("description"),
		Brand:       f.str("brand"),
		Category:    f.str("category"),
		InStock:     f.boolean("inStock"),
	}
	if patch.Price, err = f.float("price"); err != nil {
		return respondError(c, err, "Error updating product")
	}
	if patch.Variants, err = f.stringList("variants"); err != nil {
		return respondError(c, err, "Error updating product")
	}
	if patch.Sizes, err = f.stringList("sizes"); err != nil {
		return respondError(c, err, "Error updating product")
	}

	primary, err := f.upload("image")
	if err != nil {
		return respondError(c, err, "Error updating product")
	}
	colors, err := h.colorInputs(f)
	if err != nil {
		return respondError(c, err, "Error updating product")
	}

	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), patch, primary, colors)
	if err != nil {
		return respondError(c, err, "Error updating product")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product updated successfully",
		"product": product,
	})
}

func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, "Error deleting product")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product deleted successfully",
	})
}

// colorInputs decodes the "colors" JSON field and hands out the
// "colorImages" files in order, one per color, until they run out.
func (h *ProductHandler) colorInputs(f *form) (*[]services.ColorInput, error) {
	colors, err := f.colors("colors")
	if err != nil || colors == nil {
		return nil, err
	}
	files, err := f.uploads("colorImages")
	if err != nil {
		return nil, err
	}
	for i := range *colors {
		if i >= len(files) {
			break
		}
		(*colors)[i].Upload = files[i]
	}
	return colors, nil
}

func deref[T any](p *[]T) []T {
	if p == nil {
		return nil
	}
	return *p
}
