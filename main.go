package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"hetave/internal/config"
	"hetave/internal/repositories"
	"hetave/internal/seed"
	"hetave/internal/services"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	loadConfig := func() (*config.Config, error) { return config.Load(configFile) }

	rootCmd := &cobra.Command{
		Use:          "hetave",
		Short:        "Hetave Enterprises storefront API",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (yaml, json or env); environment variables take precedence")

	rootCmd.AddCommand(newServeCmd(loadConfig), newSeedCmd(loadConfig))
	return rootCmd
}

func newServeCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func newSeedCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the database",
	}

	var email, password string
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Create the administrator account",
		Long: `Create the administrator account. Email and password default to
ADMIN_EMAIL and ADMIN_PASSWORD.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if email == "" {
				email = cfg.AdminEmail
			}
			if password == "" {
				password = cfg.AdminPassword
			}
			return withDatabase(cfg, func(repos *repositoryset) error {
				auth := services.NewAuthService(repos.users, cfg.JWTSecret, cfg.JWTTTL)
				return seed.SeedAdmin(cmd.Context(), auth, email, password)
			})
		},
	}
	adminCmd.Flags().StringVar(&email, "email", "", "Admin email")
	adminCmd.Flags().StringVar(&password, "password", "", "Admin password")

	var file string
	categoriesCmd := &cobra.Command{
		Use:   "categories",
		Short: "Create the default catalog categories",
		Long: `Create catalog categories that do not exist yet. Without --file the
built-in PPE category list is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			categories := seed.DefaultCategories
			if file != "" {
				if categories, err = seed.LoadCategories(file); err != nil {
					return err
				}
			}
			return withDatabase(cfg, func(repos *repositoryset) error {
				res, err := seed.SeedCategories(cmd.Context(), repos.categories, categories)
				if err != nil {
					return err
				}
				log.Printf("Category seeding completed. Created: %d, skipped: %d", res.Created, res.Skipped)
				return nil
			})
		},
	}
	categoriesCmd.Flags().StringVar(&file, "file", "", "YAML file listing categories")

	seedCmd.AddCommand(adminCmd, categoriesCmd)
	return seedCmd
}

// withDatabase opens and migrates the database for the length of fn.
func withDatabase(cfg *config.Config, fn func(*repositoryset) error) error {
	db, err := repositories.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := repositories.AutoMigrate(db); err != nil {
		return err
	}
	return fn(newRepositorySet(db))
}
