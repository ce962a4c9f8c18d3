package middleware

import (
	"strings"

	"hetave/internal/apperr"
	"hetave/internal/services"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// Guards bundles the access-control middleware for route registration.
type Guards struct {
	// Auth rejects requests without a valid bearer token.
	Auth fiber.Handler
	// Optional resolves a bearer token if present and valid, and otherwise
	// lets the request through as a guest.
	Optional fiber.Handler
	// Admin rejects callers that are not administrators. It must run after Auth.
	Admin fiber.Handler
}

// NewGuards builds the access-control middleware backed by authService.
func NewGuards(authService *services.AuthService) Guards {
	return Guards{
		Auth:     AuthRequired(authService),
		Optional: OptionalAuth(authService),
		Admin:    AdminOnly(authService),
	}
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return apperr.Auth("Not authorized, no token")
		}
		identity, err := authService.ResolveToken(c.UserContext(), token)
		if err != nil {
			return err
		}
		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// OptionalAuth attaches the caller's identity when a valid token is sent.
// Invalid or expired tokens are ignored.
func OptionalAuth(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token, ok := bearerToken(c); ok {
			if identity, err := authService.ResolveToken(c.UserContext(), token); err == nil {
				c.Locals(identityKey, identity)
			}
		}
		return c.Next()
	}
}

// AdminOnly requires the resolved identity to hold the admin role.
func AdminOnly(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := authService.RequireAdmin(IdentityFrom(c)); err != nil {
			return err
		}
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by AuthRequired or OptionalAuth, or nil.
func IdentityFrom(c *fiber.Ctx) *services.Identity {
	identity, _ := c.Locals(identityKey).(*services.Identity)
	return identity
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c *fiber.Ctx) (string, bool) {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
