package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the runtime settings for the storefront API.
type Config struct {
	AppPort     string
	Environment string
	BaseURL     string // public URL of this API

	DatabaseDriver string // postgres | sqlite
	DatabaseDSN    string

	JWTSecret string
	JWTTTL    time.Duration

	RabbitMQURL string

	CloudinaryURL       string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	UploadDir           string // local image store when Cloudinary is not configured

	ResendAPIKey string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	AdminEmail    string // admin mailbox, also the seeded admin account
	AdminPassword string
	CompanyEmail  string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string

	FrontendURL string
	CORSOrigins []string

	OTelEndpoint string

	ValidateProductCategory bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":5002")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=hetave port=5432 sslmode=disable")
	v.SetDefault("JWT_SECRET", "hetave_secret")
	v.SetDefault("JWT_TTL", "720h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("MAIL_FROM", "Hetave Enterprises <sales@hetave.co.in>")
	v.SetDefault("ADMIN_EMAIL", "sales.hetave@gmail.com")
	v.SetDefault("COMPANY_EMAIL", "sales@hetave.co.in")
	v.SetDefault("BASE_URL", "http://localhost:5002")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("CATALOG_VALIDATE_CATEGORY", false)
}

// Load reads configuration from the environment and, if configFile is not
// empty, from that file. Environment variables win over file values.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:     v.GetString("APP_PORT"),
		Environment: v.GetString("APP_ENV"),
		BaseURL:     strings.TrimRight(v.GetString("BASE_URL"), "/"),

		DatabaseDriver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),

		JWTSecret: v.GetString("JWT_SECRET"),
		JWTTTL:    v.GetDuration("JWT_TTL"),

		RabbitMQURL: v.GetString("RABBITMQ_URL"),

		CloudinaryURL:       v.GetString("CLOUDINARY_URL"),
		CloudinaryCloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    v.GetString("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: v.GetString("CLOUDINARY_API_SECRET"),
		UploadDir:           v.GetString("UPLOAD_DIR"),

		ResendAPIKey: v.GetString("RESEND_API_KEY"),
		SMTPHost:     v.GetString("SMTP_HOST"),
		SMTPPort:     v.GetInt("SMTP_PORT"),
		SMTPUsername: v.GetString("SMTP_USERNAME"),
		SMTPPassword: v.GetString("SMTP_PASSWORD"),
		MailFrom:     v.GetString("MAIL_FROM"),

		AdminEmail:    strings.ToLower(v.GetString("ADMIN_EMAIL")),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
		CompanyEmail:  v.GetString("COMPANY_EMAIL"),

		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURI:  v.GetString("GOOGLE_REDIRECT_URI"),

		FrontendURL: v.GetString("FRONTEND_URL"),
		CORSOrigins: splitCSV(v.GetString("CORS_ORIGINS")),

		OTelEndpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),

		ValidateProductCategory: v.GetBool("CATALOG_VALIDATE_CATEGORY"),
	}

	if cfg.GoogleRedirectURI == "" {
		cfg.GoogleRedirectURI = cfg.BaseURL + "/api/auth/google/callback"
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{cfg.FrontendURL, "http://localhost:5173", "http://localhost:3000"}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment reports whether the API runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q (want postgres or sqlite)", c.DatabaseDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	}
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
