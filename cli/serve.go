package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SteveKibs/cake-backend-app/config"
	"github.com/SteveKibs/cake-backend-app/database"
	"github.com/SteveKibs/cake-backend-app/feed"
	"github.com/SteveKibs/cake-backend-app/middlewares"
	"github.com/SteveKibs/cake-backend-app/pricing"
	"github.com/SteveKibs/cake-backend-app/router"
	"github.com/SteveKibs/cake-backend-app/services"
	"github.com/SteveKibs/cake-backend-app/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout   = 10 * time.Second
	janitorInterval   = 5 * time.Minute
	limiterIdleWindow = 10 * time.Minute
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (overrides PORT)")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	db, err := config.InitDB(cfg.DB)
	if err != nil {
		return err
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	policy, err := pricing.NewPolicy(cfg.Promotion.Day, cfg.Promotion.TimeZone)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return err
	}

	hub := feed.NewHub()
	limiter := middlewares.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	engine := router.SetupRouter(db, router.Options{
		OrderService:  services.NewOrderService(db, services.WithPolicy(policy)),
		Feed:          hub,
		Limiter:       limiter,
		UploadDir:     cfg.UploadDir,
		PublicBaseURL: cfg.PublicBaseURL,
		CORSOrigins:   cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		utils.InfoLogger.WithFields(logrus.Fields{
			"port":      cfg.Port,
			"promotion": policy.PromotionDay.String(),
			"driver":    cfg.DB.Driver,
		}).Info("Server is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		utils.InfoLogger.Info("Shutting down server")
		hub.CloseAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return utils.RunBlacklistJanitor(gctx, janitorInterval)
	})

	g.Go(func() error {
		ticker := time.NewTicker(limiterIdleWindow)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := limiter.Sweep(limiterIdleWindow); n > 0 {
					utils.InfoLogger.WithField("clients", n).Debug("rate limiter swept idle clients")
				}
			}
		}
	})

	return g.Wait()
}
