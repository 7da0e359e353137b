package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pageza/cookbooks/dashboard/config"
	"github.com/pageza/cookbooks/dashboard/internal/api"
	"github.com/pageza/cookbooks/dashboard/internal/cache"
	"github.com/pageza/cookbooks/dashboard/internal/client"
	"github.com/pageza/cookbooks/dashboard/internal/database"
	"github.com/pageza/cookbooks/dashboard/internal/logging"
	"github.com/pageza/cookbooks/dashboard/internal/middleware"
	"github.com/pageza/cookbooks/dashboard/internal/router"
	"github.com/pageza/cookbooks/dashboard/internal/server"
	"github.com/pageza/cookbooks/dashboard/internal/service"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:          "dashboard",
	Short:        "Cookbooks dashboard web server",
	Long:         "Serves the cookbooks dashboard, a server-rendered front end for the cookbooks API.",
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (default)",
	RunE:  runServe,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and reach the backend",
	RunE:  runCheck,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "optional YAML file of KEY: value settings")
	rootCmd.AddCommand(serveCmd, checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL, logger)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	backend, err := client.New(cfg.BackendURL, cfg.BackendTimeout, logger)
	if err != nil {
		return err
	}
	views, err := api.NewRenderer(logger)
	if err != nil {
		return err
	}

	viewCache := cache.New(redisClient, cfg.ViewCacheTTL, logger)
	authService := service.NewAuthService(backend, cfg.SessionSecret, logger)
	recipeService := service.NewRecipeService(backend, viewCache, logger)
	cookie := middleware.SessionCookie{Secure: cfg.SessionCookieSecure, MaxAge: service.SessionTTL}

	var limiter middleware.Limiter
	if cfg.LoginRateLimit > 0 {
		limiter = middleware.NewLoginRateLimiter(redisClient, cfg.LoginRateLimit)
		if local, ok := limiter.(*middleware.LocalRateLimiter); ok {
			defer local.Stop()
		}
	}

	engine := router.SetupRouter(router.Handlers{
		Auth:      api.NewAuthHandler(authService, views, cookie, limiter, logger),
		Dashboard: api.NewDashboardHandler(recipeService, views, cookie, logger),
		Recipes:   api.NewRecipeHandler(recipeService, viewCache, views, cookie, logger),
	}, router.Options{
		Sessions:    authService,
		Cookie:      cookie,
		Views:       views,
		CORSOrigins: cfg.CORSAllowedOrigins,
		Logger:      logger,
	})

	srv := server.New(cfg, engine, logger)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			logger.Error("server error", zap.Error(err))
		}
		return err
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.BackendTimeout)
	defer cancel()

	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL, logger)
		if err != nil {
			return err
		}
		_ = redisClient.Close()
		fmt.Fprintln(cmd.OutOrStdout(), "redis: ok")
	}

	backend, err := client.New(cfg.BackendURL, cfg.BackendTimeout, logger)
	if err != nil {
		return err
	}
	cards, err := backend.FetchCardData(ctx)
	if err != nil {
		return fmt.Errorf("backend check failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "backend %s: %d cookbooks, %d recipes\n",
		cfg.BackendURL, cards.NumberOfCookbooks, cards.NumberOfRecipes)
	return nil
}
