package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"hetave/internal/models"
	"hetave/internal/repositories"
	"hetave/pkg/mailer"
	"hetave/pkg/media"
	"hetave/pkg/oauth"
	"hetave/pkg/rabbitmq"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// pngBytes is enough of a PNG header for content sniffing.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[string]models.User), args.Error(1)
}

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, filter repositories.ProductFilter) ([]models.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[string]models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// fakeMedia records uploads and deletions in memory.
type fakeMedia struct {
	mu        sync.Mutex
	uploads   int
	deleted   []string
	failAfter int // fail every upload after this many; 0 never fails
}

func (f *fakeMedia) Upload(_ context.Context, _ []byte, folder string) (*media.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAfter > 0 && f.uploads >= f.failAfter {
		return nil, errors.New("media store unavailable")
	}
	f.uploads++
	id := fmt.Sprintf("%s/img%d", folder, f.uploads)
	return &media.Asset{URL: "https://cdn.test/" + id + ".png", PublicID: id}, nil
}

func (f *fakeMedia) Delete(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, publicID)
	return nil
}

// recordingMailer captures sent messages and can be told to fail.
type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	fail bool
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp: connection refused")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, msg := range m.sent {
		out = append(out, msg.Subject)
	}
	return out
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []rabbitmq.OrderEvent
}

func (p *recordingPublisher) PublishOrderEvent(_ context.Context, e rabbitmq.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

type fakeGoogle struct {
	profile *oauth.Profile
	err     error
}

func (g fakeGoogle) AuthCodeURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (g fakeGoogle) Exchange(context.Context, string) (*oauth.Profile, error) {
	return g.profile, g.err
}

// openTestDB opens a private in-memory SQLite database for one test.
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

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string      { return &s }
