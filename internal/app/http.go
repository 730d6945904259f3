package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"social-login-service/internal/auth/credentials"
	"social-login-service/internal/auth/handler"
	"social-login-service/internal/auth/linker"
	"social-login-service/internal/auth/provider"
	"social-login-service/internal/auth/provider/google"
	"social-login-service/internal/auth/provider/spotify"
	"social-login-service/internal/auth/provider/twitter"
	"social-login-service/internal/config"
	"social-login-service/internal/logger"
	"social-login-service/internal/middleware"
	"social-login-service/internal/session"
	"social-login-service/internal/store"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	recordStore := store.NewPostgres(infra.DB)
	sessionStore := session.NewRedisStore(infra.Redis)
	codec := session.NewCodec(sessionStore, recordStore, cfg.SessionTTL)

	credentialService := credentials.NewService(recordStore, cfg.BcryptCost)
	accountLinker := linker.New(recordStore)

	registry, err := setupProviders(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	authHandler := handler.NewHandler(
		registry,
		credentialService,
		accountLinker,
		codec,
		recordStore,
		cfg.LoginSuccessURL,
		cfg.LoginFailureURL,
	)

	authMiddleware := middleware.NewAuthMiddleware(codec, cfg.LoginPath)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(middleware.GinRequireAuth(authMiddleware))

	api.GET("/stuff", func(c *gin.Context) {
		c.JSON(200, []string{
			"Bears",
			"Beets",
			"Battlestar Galactica",
		})
	})

	authHandler.RegisterProtectedRoutes(api)

	return router, func() error {
		return infra.DB.Close()
	}, nil
}

// setupProviders registers every externally configured strategy. A provider
// with no configuration is skipped, not fatal.
func setupProviders(ctx context.Context, cfg config.Config) (*provider.Registry, error) {
	var strategies []provider.Strategy

	if cfg.SpotifyClientID != "" {
		p, err := spotify.New(
			cfg.SpotifyClientID,
			cfg.SpotifyClientSecret,
			cfg.SpotifyRedirectURL,
		)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, p)
	}

	if cfg.TwitterConsumerKey != "" {
		p, err := twitter.New(
			cfg.TwitterConsumerKey,
			cfg.TwitterConsumerSecret,
			cfg.TwitterCallbackURL,
		)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, p)
	}

	if cfg.GoogleClientID != "" {
		p, err := google.New(
			ctx,
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
		)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, p)
	}

	registry := provider.NewRegistry(strategies...)

	logger.Info("auth providers registered", map[string]any{
		"providers": registry.Names(),
	})

	return registry, nil
}
