package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"

	"hetave/internal/apperr"
	"hetave/internal/middleware"
	"hetave/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	frontendURL string
}

// NewAuthHandler creates a new AuthHandler. frontendURL is where Google
// sign-in redirects back to.
func NewAuthHandler(authService *services.AuthService, frontendURL string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, guards middleware.Guards) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/signup", h.HandleSignUp)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Get("/google", h.HandleGoogleStart)
	authRoutes.Get("/google/callback", h.HandleGoogleCallback)
	authRoutes.Get("/me", guards.Auth, h.HandleMe)
}

// SignUpRequest represents the request body for signup.
type SignUpRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleSignUp registers a customer account and returns a token.
func (h *AuthHandler) HandleSignUp(c *fiber.Ctx) error {
	var req SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	res, err := h.authService.SignUp(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return respondError(c, err, "Error creating user")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "User created successfully",
		"user":    res.User,
		"token":   res.Token,
	})
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	res, err := h.authService.LogIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindAuth {
			log.Printf("Failed login for %s", req.Email)
		}
		return respondError(c, err, "Error during login")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"user":    res.User,
		"token":   res.Token,
	})
}

// HandleMe returns the signed-in user.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	user, err := h.authService.CurrentUser(c.UserContext(), middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, err, "Error fetching user")
	}
	return c.JSON(fiber.Map{"success": true, "user": user})
}

// HandleGoogleStart redirects to Google's consent page. The optional state
// query parameter is the frontend path to return to.
func (h *AuthHandler) HandleGoogleStart(c *fiber.Ctx) error {
	authURL, err := h.authService.GoogleAuthURL(c.Query("state"))
	if err != nil {
		return respondError(c, err, "Google login is not configured on the server")
	}
	return c.Redirect(authURL, fiber.StatusFound)
}

// HandleGoogleCallback completes Google sign-in and hands the token to the
// frontend through a redirect.
func (h *AuthHandler) HandleGoogleCallback(c *fiber.Ctx) error {
	if !h.authService.GoogleEnabled() {
		return c.Status(fiber.StatusInternalServerError).SendString("Google login is not configured on the server.")
	}
	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Missing authorization code from Google.")
	}

	res, err := h.authService.GoogleSignIn(c.UserContext(), code)
	if err != nil {
		log.Printf("Google callback error: %v", err)
		if apperr.KindOf(err) == apperr.KindValidation {
			return c.Status(fiber.StatusBadRequest).SendString(apperr.MessageOf(err) + ".")
		}
		return c.Status(fiber.StatusInternalServerError).SendString("An error occurred while processing Google login. Please try again.")
	}

	userJSON, err := json.Marshal(res.User)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("An error occurred while processing Google login. Please try again.")
	}
	redirectPath := c.Query("state")
	if redirectPath == "" {
		redirectPath = "/products"
	}
	target := fmt.Sprintf("%s/google-callback?token=%s&user=%s&redirect=%s",
		h.frontendURL, url.QueryEscape(res.Token), url.QueryEscape(string(userJSON)), url.QueryEscape(redirectPath))
	return c.Redirect(target, fiber.StatusFound)
}
