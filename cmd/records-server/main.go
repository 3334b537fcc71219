package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lacson1/bluequeehealthcare-sub014/internal/config"
	"github.com/lacson1/bluequeehealthcare-sub014/internal/domain/integration"
	"github.com/lacson1/bluequeehealthcare-sub014/internal/domain/patient"
	"github.com/lacson1/bluequeehealthcare-sub014/internal/domain/referral"
	"github.com/lacson1/bluequeehealthcare-sub014/internal/domain/visit"
	"github.com/lacson1/bluequeehealthcare-sub014/internal/domain/workflow"
	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/audit"
	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/auth"
	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/db"
	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/integrations"
	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/middleware"
	"github.com/lacson1/bluequeehealthcare-sub014/internal/platform/validate"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "records-server",
		Short: "Healthcare records API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validate.New()

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(time.Duration(cfg.RequestTimeoutSeconds) * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Health check sits in front of authentication.
	e.GET("/health", db.HealthHandler(pool))

	auditRepo := audit.NewRepo(pool)
	e.Use(middleware.Audit(logger, middleware.AccessRecorderFunc(func(entry middleware.AccessEntry) error {
		return auditRepo.Record(context.Background(), &audit.Entry{
			UserID:  entry.UserID,
			OrgID:   entry.OrgID,
			Action:  entry.Action,
			Details: fmt.Sprintf("%s %s", entry.Resource, entry.Path),
		})
	})))

	jwtMiddleware := auth.JWTMiddleware(auth.JWTConfig{
		Issuer:     cfg.AuthIssuer,
		Audience:   cfg.AuthAudience,
		JWKSURL:    cfg.AuthJWKSURL,
		SigningKey: []byte(cfg.JWTSigningKey),
	})

	apiV1 := e.Group("/api/v1", jwtMiddleware)
	fhirGroup := e.Group("/fhir", jwtMiddleware)

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))
	fhirGroup.Use(middleware.RateLimit(rateLimitCfg))

	// -- Domain handlers --

	patientRepo := patient.NewRepo(pool)

	workflowRepo := workflow.NewRepo(pool)
	workflowSvc := workflow.NewService(workflowRepo, auditRepo)
	workflow.NewHandler(workflowSvc).RegisterRoutes(apiV1)

	referralRepo := referral.NewRepo(pool)
	referralSvc := referral.NewService(referralRepo)
	referral.NewHandler(referralSvc).RegisterRoutes(apiV1)

	visitRepo := visit.NewRepo(pool)
	visitSvc := visit.NewService(visitRepo, auditRepo)
	visit.NewHandler(visitSvc).RegisterRoutes(apiV1)

	integrationClient := integrations.NewClient(integrations.Config{
		LabSyncURL:         cfg.LabSyncURL,
		EPrescribeURL:      cfg.EPrescribeURL,
		InsuranceVerifyURL: cfg.InsuranceVerifyURL,
		TelemedicineURL:    cfg.TelemedicineURL,
	}, logger)
	integration.NewHandler(patientRepo, integrationClient).RegisterRoutes(apiV1, fhirGroup)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
