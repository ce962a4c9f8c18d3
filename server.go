package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"hetave/internal/app"
	"hetave/internal/config"
	"hetave/internal/repositories"
	"hetave/internal/seed"
	"hetave/internal/services"
	"hetave/pkg/mailer"
	"hetave/pkg/media"
	"hetave/pkg/oauth"
	"hetave/pkg/obs"
	"hetave/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

type repositoryset struct {
	users      repositories.UserRepository
	products   repositories.ProductRepository
	categories repositories.CategoryRepository
	orders     repositories.OrderRepository
	contacts   repositories.ContactRepository
}

func newRepositorySet(db *gorm.DB) *repositoryset {
	return &repositoryset{
		users:      repositories.NewGORMUserRepository(db),
		products:   repositories.NewGORMProductRepository(db),
		categories: repositories.NewGORMCategoryRepository(db),
		orders:     repositories.NewGORMOrderRepository(db),
		contacts:   repositories.NewGORMContactRepository(db),
	}
}

// server is a fully wired API and the resources it must release.
type server struct {
	app     *fiber.App
	orders  *services.OrderService
	closers []func() error
}

func (s *server) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}
}

// newMediaStore returns Cloudinary when it is configured and a local
// directory served under /uploads otherwise. uploadDir is empty for Cloudinary.
func newMediaStore(cfg *config.Config) (store media.Store, uploadDir string, err error) {
	cc := media.CloudinaryConfig{
		URL:       cfg.CloudinaryURL,
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
	}
	if cc.Enabled() {
		store, err = media.NewCloudinaryStore(cc)
		return store, "", err
	}
	log.Printf("Cloudinary is not configured; storing images in %s", cfg.UploadDir)
	disk, err := media.NewDiskStore(cfg.UploadDir, cfg.BaseURL+"/uploads")
	if err != nil {
		return nil, "", err
	}
	return disk, disk.Root(), nil
}

// buildServer wires configuration, storage, messaging and services into
// the HTTP app. events may be nil.
func buildServer(ctx context.Context, cfg *config.Config, db *gorm.DB, events services.EventPublisher) (*server, error) {
	if err := repositories.AutoMigrate(db); err != nil {
		return nil, err
	}
	repos := newRepositorySet(db)

	authService := services.NewAuthService(repos.users, cfg.JWTSecret, cfg.JWTTTL)
	if cfg.GoogleEnabled() {
		authService.WithGoogle(oauth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI))
	} else {
		log.Println("Google OAuth is not configured; Google login is disabled")
	}
	if cfg.AdminPassword != "" {
		if err := seed.SeedAdmin(ctx, authService, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Printf("Warning: could not provision admin %s: %v", cfg.AdminEmail, err)
		}
	}

	store, uploadDir, err := newMediaStore(cfg)
	if err != nil {
		return nil, err
	}
	m := mailer.New(mailer.Config{
		ResendAPIKey: cfg.ResendAPIKey,
		SMTPHost:     cfg.SMTPHost,
		SMTPPort:     cfg.SMTPPort,
		SMTPUsername: cfg.SMTPUsername,
		SMTPPassword: cfg.SMTPPassword,
		From:         cfg.MailFrom,
	})

	productService := services.NewProductService(repos.products, store)
	if cfg.ValidateProductCategory {
		productService.WithCategoryValidation(repos.categories)
	}
	orderService := services.NewOrderService(repos.orders, repos.products, repos.users, m, events, cfg.AdminEmail)

	fiberApp := app.NewApp(app.Deps{
		Auth:        authService,
		Products:    productService,
		Categories:  services.NewCategoryService(repos.categories, store),
		Orders:      orderService,
		Contacts:    services.NewContactService(repos.contacts, m, cfg.CompanyEmail),
		FrontendURL: cfg.FrontendURL,
		CORSOrigins: cfg.CORSOrigins,
		UploadDir:   uploadDir,
	})
	return &server{app: fiberApp, orders: orderService}, nil
}

// serve runs the API until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config) error {
	shutdownTracer, err := obs.InitTracer(ctx, "hetave-api", cfg.Environment, cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := repositories.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	log.Printf("Connected to %s database", cfg.DatabaseDriver)

	var (
		events   services.EventPublisher
		mqClient *rabbitmq.Client
	)
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		events = mqClient
	} else {
		log.Println("RABBITMQ_URL is empty; order events are disabled")
	}

	srv, err := buildServer(ctx, cfg, db, events)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		srv.closers = append(srv.closers, sqlDB.Close)
	}
	if mqClient != nil {
		srv.closers = append(srv.closers, mqClient.Close)
		if err := mqClient.ConsumeOrderEvents(ctx, srv.orders.HandleOrderEvent); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		} else {
			log.Println("Started RabbitMQ consumer for order events")
		}
	}
	defer srv.close()

	listenErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", cfg.AppPort)
		listenErr <- srv.app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	if err := srv.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
	return nil
}
