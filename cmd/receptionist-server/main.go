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

	"github.com/geko-ai/receptionist/internal/config"
	"github.com/geko-ai/receptionist/internal/domain/catalog"
	"github.com/geko-ai/receptionist/internal/domain/scheduling"
	"github.com/geko-ai/receptionist/internal/domain/tenant"
	"github.com/geko-ai/receptionist/internal/platform/auth"
	"github.com/geko-ai/receptionist/internal/platform/db"
	"github.com/geko-ai/receptionist/internal/platform/middleware"
	"github.com/geko-ai/receptionist/internal/platform/notify"
	"github.com/geko-ai/receptionist/internal/platform/reminder"
	"github.com/geko-ai/receptionist/internal/platform/voiceagent"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "receptionist-server",
		Short: "AI voice receptionist API server",
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
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
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
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Domain services
	tenantSvc := tenant.NewService(tenant.NewRepo(pool))
	catalogSvc := catalog.NewService(catalog.NewRepo(pool))
	schedulingSvc := scheduling.NewService(scheduling.NewRepo(pool), scheduling.Options{
		MaxResults:         cfg.MaxSlotResults,
		DefaultSlotMinutes: cfg.DefaultSlotMinutes,
	})

	notifier := notify.New(notify.Config{
		TwilioAccountSID: cfg.TwilioAccountSID,
		TwilioAuthToken:  cfg.TwilioAuthToken,
		TwilioFromNumber: cfg.TwilioFromNumber,
		SendgridAPIKey:   cfg.SendgridAPIKey,
		FromEmail:        cfg.SendgridFromEmail,
		FromName:         cfg.SendgridFromName,
	}, logger)

	// Dashboard API: JWT-authenticated, rate limited per tenant.
	apiV1 := e.Group("/api/v1")
	if cfg.IsDev() {
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		apiV1.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			SigningKey: []byte(cfg.AuthSecret),
		}))
	}

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	tenantHandler := tenant.NewHandler(tenantSvc)
	tenantHandler.RegisterRoutes(apiV1)

	catalogHandler := catalog.NewHandler(catalogSvc)
	catalogHandler.RegisterRoutes(apiV1)

	schedulingHandler := scheduling.NewHandler(schedulingSvc)
	schedulingHandler.SetNotifier(notifier)
	schedulingHandler.RegisterRoutes(apiV1)

	// Voice-agent provider client is optional: without credentials the
	// provisioning endpoints are simply not mounted.
	if cfg.VoiceAgentBaseURL != "" && cfg.VoiceAgentAPIKey != "" {
		client, err := voiceagent.NewClient(voiceagent.Config{
			BaseURL: cfg.VoiceAgentBaseURL,
			APIKey:  cfg.VoiceAgentAPIKey,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build voice agent client")
		}
		webhookURL := fmt.Sprintf("http://localhost:%s/webhooks/voice/tool", cfg.Port)
		provisioner := voiceagent.NewProvisioner(client, tenantSvc, catalogSvc, webhookURL, logger)
		provisioner.RegisterRoutes(apiV1)
	} else {
		logger.Warn().Msg("voice agent provider not configured, provisioning disabled")
	}

	// Tool-call webhook: shared-secret header, no JWT. The agent platform
	// calls this mid-conversation.
	webhookGroup := e.Group("/webhooks/voice")
	webhookGroup.Use(auth.WebhookSecret(cfg.WebhookSecret))
	webhookGroup.Use(middleware.RateLimit(rateLimitCfg))

	toolWebhook := voiceagent.NewWebhook(tenantSvc, schedulingSvc, logger)
	toolWebhook.SetNotifier(notifier)
	toolWebhook.RegisterRoutes(webhookGroup)

	// Appointment reminder sweep
	reminderJob := reminder.NewJob(schedulingSvc, notifier, cfg.ReminderSchedule, logger)
	if err := reminderJob.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start reminder job")
	}
	defer reminderJob.Stop()

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
