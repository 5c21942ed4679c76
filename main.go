package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/config"
	"github.com/dorcasbeulah27/PowerOil-Backend/controllers/admins"
	"github.com/dorcasbeulah27/PowerOil-Backend/controllers/auth"
	"github.com/dorcasbeulah27/PowerOil-Backend/controllers/users"
	"github.com/dorcasbeulah27/PowerOil-Backend/database"
	"github.com/dorcasbeulah27/PowerOil-Backend/middleware"
	"github.com/dorcasbeulah27/PowerOil-Backend/routes"
	"github.com/dorcasbeulah27/PowerOil-Backend/services"
	"github.com/dorcasbeulah27/PowerOil-Backend/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadEnv reads .env if present without overwriting variables already set
func loadEnv() {
	if envMap, err := godotenv.Read(); err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}
}

func requireEnv(names ...string) error {
	for _, name := range names {
		if os.Getenv(name) == "" {
			return fmt.Errorf("required environment variable %s is not set", name)
		}
	}
	return nil
}

// bootstrap loads configuration, installs the logger and opens the database
func bootstrap(ctx context.Context) (*config.Config, *gorm.DB, error) {
	loadEnv()
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if _, err := utils.InitLogger(cfg.Env, cfg.LogLevel); err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	if cfg.Database.DSN == "" {
		if err := requireEnv("DB_HOST", "DB_USER", "DB_NAME"); err != nil {
			return nil, nil, err
		}
	}
	db, err := database.Connect(cfg.Database, cfg.IsDevelopment())
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return cfg, db, nil
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "poweroil",
		Short:        "Power Oil spin-the-wheel promotion backend",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), seedCmd())
	return root
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer zap.L().Sync()
			return database.Migrate(cmd.Context(), db)
		},
	}
}

func seedCmd() *cobra.Command {
	var opts database.SeedOptions
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the superadmin, demo outlets and a demo campaign",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer zap.L().Sync()
			if opts.AdminPassword == "" {
				opts.AdminPassword = os.Getenv("SEED_ADMIN_PASSWORD")
			}
			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			return database.Seed(cmd.Context(), db, opts)
		},
	}
	cmd.Flags().StringVar(&opts.AdminUsername, "admin-username", "admin", "superadmin username")
	cmd.Flags().StringVar(&opts.AdminEmail, "admin-email", "admin@poweroil.com", "superadmin email")
	cmd.Flags().StringVar(&opts.AdminPassword, "admin-password", "", "superadmin password (or SEED_ADMIN_PASSWORD)")
	return cmd
}

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, db, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer zap.L().Sync()

			if err := requireEnv("JWT_SECRET"); err != nil {
				return err
			}
			if err := utils.InitAuth(cfg.JWT); err != nil {
				return err
			}
			utils.InitRedis(ctx, cfg.Redis)

			// schema changes run automatically only in development
			if migrate || cfg.IsDevelopment() {
				if err := database.Migrate(ctx, db); err != nil {
					return err
				}
			}
			return serve(cfg, db)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "run migrations before serving")
	return cmd
}

func serve(cfg *config.Config, db *gorm.DB) error {
	sms := utils.NewTermiiClient(cfg.Termii)
	if !sms.Enabled() {
		zap.L().Warn("TERMII_API_KEY not set, OTP codes will not be delivered by SMS")
	}
	if cfg.OTP.BypassEnabled {
		zap.L().Warn("OTP bypass code is enabled, never run this in production")
	}

	var store *utils.ObjectStore
	if cfg.Storage.StorageEnabled() {
		s, err := utils.NewObjectStore(context.Background(), cfg.Storage)
		if err != nil {
			return err
		}
		store = s
	} else {
		zap.L().Warn("object storage not configured, prize image upload disabled")
	}

	prizes := services.NewPrizeService(db, utils.NewLockedRand(time.Now().UnixNano()), time.Now)
	spins := services.NewSpinService(db, prizes, services.SpinOptions{
		RedemptionPrefix:       cfg.Spin.RedemptionPrefix,
		RedemptionValidityDays: cfg.Spin.RedemptionValidityDays,
	})
	eligibility := services.NewEligibilityService(db, time.Now)
	otp := services.NewOTPService(db, sms, services.OTPOptions{
		Length:        cfg.OTP.Length,
		ExpiryMinutes: cfg.OTP.ExpiryMinutes,
		MaxAttempts:   cfg.OTP.MaxAttempts,
		BypassEnabled: cfg.OTP.BypassEnabled,
		BypassCode:    cfg.OTP.BypassCode,
	})
	catalog := services.NewCatalogService(db)
	locations := services.NewLocationService(db)

	trusted := cfg.Server.TrustedProxies
	router := routes.InitRouter(cfg.Server, routes.Controllers{
		Onboarding: auth.NewOnboardingController(otp, middleware.NewOTPRateLimiter(trusted), trusted),
		Spin:       users.NewSpinController(eligibility, spins, prizes, trusted),
		Catalog:    users.NewCatalogController(locations, catalog),
		Admin:      admins.NewCatalogController(catalog, store),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      routes.Wrap(router, cfg.Server, !cfg.IsDevelopment()),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server starting", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}
	zap.L().Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	zap.L().Info("server exited")
	return nil
}
