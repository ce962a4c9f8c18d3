package services

import (
	"context"
	"strings"
	"time"

	"hetave/internal/apperr"
	"hetave/internal/models"
	"hetave/internal/repositories"
	"hetave/pkg/mailer"
)

// ContactInput is a contact form submission.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// ContactService stores contact form submissions and notifies sales.
type ContactService struct {
	repo         repositories.ContactRepository
	mailer       mailer.Mailer
	companyEmail string
}

func NewContactService(repo repositories.ContactRepository, m mailer.Mailer, companyEmail string) *ContactService {
	return &ContactService{repo: repo, mailer: m, companyEmail: companyEmail}
}

// SubmitContact saves the inquiry, then emails the company and thanks the
// sender. Email failures do not fail the submission.
func (s *ContactService) SubmitContact(ctx context.Context, in ContactInput) (*models.Contact, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Email == "" || strings.TrimSpace(in.Message) == "" {
		return nil, apperr.Validation("Name, email, and message are required")
	}

	contact := &models.Contact{Name: in.Name, Email: in.Email, Phone: in.Phone, Message: in.Message}
	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, err
	}

	sendBestEffort(ctx, s.mailer, s.companyEmail, "New Contact Form Submission from "+in.Name, "contact_company", map[string]any{
		"Name":        in.Name,
		"Email":       in.Email,
		"Phone":       in.Phone,
		"Message":     in.Message,
		"SubmittedAt": time.Now().In(istLocation).Format("02 Jan 2006, 3:04 PM"),
	})
	sendBestEffort(ctx, s.mailer, in.Email, "Thank You for Contacting Hetave Enterprises", "contact_thanks", in)
	return contact, nil
}

// ListContacts returns submissions newest first.
func (s *ContactService) ListContacts(ctx context.Context) ([]models.Contact, error) {
	return s.repo.List(ctx)
}
