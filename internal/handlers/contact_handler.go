package handlers

import (
	"hetave/internal/middleware"
	"hetave/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ContactHandler handles the public contact form.
type ContactHandler struct {
	service *services.ContactService
}

func NewContactHandler(service *services.ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

func (h *ContactHandler) RegisterRoutes(router fiber.Router, guards middleware.Guards) {
	contactRoutes := router.Group("/contacts")
	contactRoutes.Post("/", h.HandleSubmitContact)
	contactRoutes.Get("/", guards.Auth, guards.Admin, h.HandleListContacts)
}

func (h *ContactHandler) HandleSubmitContact(c *fiber.Ctx) error {
	var in services.ContactInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, err)
	}

	contact, err := h.service.SubmitContact(c.UserContext(), in)
	if err != nil {
		return respondError(c, err, "Error processing your message. Please try again later.")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Your message has been sent successfully. We'll get back to you soon!",
		"contact": fiber.Map{
			"id":    contact.ID,
			"name":  contact.Name,
			"email": contact.Email,
		},
	})
}

func (h *ContactHandler) HandleListContacts(c *fiber.Ctx) error {
	contacts, err := h.service.ListContacts(c.UserContext())
	if err != nil {
		return respondError(c, err, "Error fetching contacts")
	}
	return c.JSON(fiber.Map{"success": true, "contacts": contacts})
}
