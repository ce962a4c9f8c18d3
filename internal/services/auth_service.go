package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"hetave/internal/apperr"
	"hetave/internal/models"
	"hetave/internal/repositories"
	"hetave/pkg/oauth"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// Identity is the caller resolved from a bearer token.
type Identity struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == models.RoleAdmin
}

// AuthResult is returned by every successful sign-in path.
type AuthResult struct {
	Token string          `json:"token"`
	User  models.UserView `json:"user"`
}

// GoogleProvider is the part of the Google OAuth client the service needs.
type GoogleProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth.Profile, error)
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	google    GoogleProvider
}

// NewAuthService creates a new AuthService. A zero tokenTTL means 30 days.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 30 * 24 * time.Hour
	}
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// WithGoogle enables Google sign-in.
func (s *AuthService) WithGoogle(p GoogleProvider) *AuthService {
	s.google = p
	return s
}

// SignUp registers a new customer account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, apperr.Validation("Please provide all required fields")
	}
	if len(password) < minPasswordLength {
		return nil, apperr.Validation("Password must be at least %d characters", minPasswordLength)
	}

	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperr.Conflict("User with this email already exists")
	} else if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	user := &models.User{Name: name, Email: email, Role: models.RoleUser}
	if err := s.setPassword(user, password); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.Conflict("User with this email already exists")
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return s.signIn(user)
}

// LogIn authenticates a user by email and password.
func (s *AuthService) LogIn(ctx context.Context, email, password string) (*AuthResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperr.Validation("Please provide email and password")
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Auth("Invalid email or password")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperr.Auth("Invalid email or password")
	}
	return s.signIn(user)
}

// ResolveToken verifies a bearer token and loads the user it names.
func (s *AuthService) ResolveToken(ctx context.Context, tokenString string) (*Identity, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, err
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, apperr.Auth("Not authorized, token failed")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Auth("Not authorized, user not found")
		}
		return nil, err
	}
	return &Identity{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}, nil
}

// RequireAdmin fails unless identity is an administrator.
func (s *AuthService) RequireAdmin(identity *Identity) error {
	if identity == nil {
		return apperr.Auth("Not authorized, no token")
	}
	if !identity.IsAdmin() {
		return apperr.Forbidden("Not authorized as admin")
	}
	return nil
}

// CurrentUser returns the public view of the user behind identity.
func (s *AuthService) CurrentUser(ctx context.Context, identity *Identity) (*models.UserView, error) {
	if identity == nil {
		return nil, apperr.Auth("Not authorized, no token")
	}
	user, err := s.userRepo.GetByID(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	view := user.View()
	return &view, nil
}

// GoogleEnabled reports whether Google sign-in is configured.
func (s *AuthService) GoogleEnabled() bool {
	return s.google != nil
}

// GoogleAuthURL returns the Google consent page URL carrying state.
func (s *AuthService) GoogleAuthURL(state string) (string, error) {
	if s.google == nil {
		return "", apperr.Service(nil, "Google login is not configured on the server")
	}
	return s.google.AuthCodeURL(state), nil
}

// GoogleSignIn exchanges an authorization code and signs in the matching
// user, creating an account on first sign-in.
func (s *AuthService) GoogleSignIn(ctx context.Context, code string) (*AuthResult, error) {
	if s.google == nil {
		return nil, apperr.Service(nil, "Google login is not configured on the server")
	}
	if code == "" {
		return nil, apperr.Validation("Missing authorization code from Google")
	}
	profile, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, apperr.Service(err, "Google sign-in failed")
	}
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email == "" {
		return nil, apperr.Validation("Unable to retrieve email from Google account")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return s.signIn(user)
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	user = &models.User{Name: name, Email: email, Role: models.RoleUser}
	// Google accounts get a random password nobody knows.
	if err := s.setPassword(user, uuid.NewString()+uuid.NewString()); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if !errors.Is(err, apperr.ErrConflict) {
			return nil, fmt.Errorf("failed to create Google user: %w", err)
		}
		// A concurrent sign-in created the account first.
		existing, getErr := s.userRepo.GetByEmail(ctx, email)
		if getErr != nil {
			return nil, fmt.Errorf("failed to load Google user: %w", getErr)
		}
		return s.signIn(existing)
	}
	log.Printf("Created account for Google user %s", email)
	return s.signIn(user)
}

// ProvisionAdmin creates an administrator account unless one already exists
// for email. It reports whether a user was created.
func (s *AuthService) ProvisionAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < minPasswordLength {
		return false, apperr.Validation("admin email and a password of at least %d characters are required", minPasswordLength)
	}
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		if existing.Role != models.RoleAdmin {
			return false, apperr.Conflict("user %s exists but is not an admin", email)
		}
		return false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return false, err
	}
	if name == "" {
		name = "Admin"
	}
	user := &models.User{Name: name, Email: email, Role: models.RoleAdmin}
	if err := s.setPassword(user, password); err != nil {
		return false, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}
	return true, nil
}

func (s *AuthService) setPassword(user *models.User, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Service(err, "failed to hash password")
	}
	user.Password = string(hashed)
	return nil
}

func (s *AuthService) signIn(user *models.User) (*AuthResult, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, apperr.Service(err, "failed to generate token")
	}
	return &AuthResult{Token: tokenString, User: user.View()}, nil
}

func (s *AuthService) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, apperr.Auth("Not authorized, token failed")
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, apperr.Auth("Not authorized, token failed")
}
