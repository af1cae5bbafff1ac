package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/austech/sigo-api/internal/auth"
	"github.com/austech/sigo-api/internal/config"
	"github.com/austech/sigo-api/internal/database"
	"github.com/austech/sigo-api/internal/http/handler"
	"github.com/austech/sigo-api/internal/http/middleware"
	"github.com/austech/sigo-api/internal/http/router"
	"github.com/austech/sigo-api/internal/identity"
	"github.com/austech/sigo-api/internal/logger"
	"github.com/austech/sigo-api/internal/repository"
	"github.com/austech/sigo-api/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Identity layer
	gateway := identity.NewGateway(db, cfg.Auth.BcryptCost, log)
	tokens := identity.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLDuration())
	resolver := auth.NewResolver(db)

	// Repositories
	usuarioRepo := repository.NewUsuarioRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	sucursalRepo := repository.NewSucursalRepository(db)
	sierraRepo := repository.NewSierraRepository(db)
	afiladoRepo := repository.NewAfiladoRepository(db)
	catalogoRepo := repository.NewCatalogoRepository(db)
	bitacoraRepo := repository.NewBitacoraRepository(db)

	// Services
	enricher := service.NewEnricher(sierraRepo, sucursalRepo, clienteRepo, catalogoRepo, usuarioRepo, log)
	authService := service.NewAuthService(gateway, tokens, resolver, usuarioRepo, sucursalRepo, log)
	usuarioService := service.NewUsuarioService(usuarioRepo, sucursalRepo, gateway, log)
	clienteService := service.NewClienteService(clienteRepo, sucursalRepo, log)
	sucursalService := service.NewSucursalService(sucursalRepo, clienteRepo, enricher, log)
	sierraService := service.NewSierraService(sierraRepo, sucursalRepo, clienteRepo, afiladoRepo, catalogoRepo, enricher, log)
	afiladoService := service.NewAfiladoService(afiladoRepo, sierraRepo, sucursalRepo, clienteRepo, catalogoRepo, bitacoraRepo, enricher, log)
	catalogoService := service.NewCatalogoService(catalogoRepo, log)

	// Middleware
	authMiddleware := auth.NewMiddleware(tokens, resolver, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, log)
	usuarioHandler := handler.NewUsuarioHandler(usuarioService, log)
	clienteHandler := handler.NewClienteHandler(clienteService, log)
	sucursalHandler := handler.NewSucursalHandler(sucursalService, log)
	sierraHandler := handler.NewSierraHandler(sierraService, log)
	afiladoHandler := handler.NewAfiladoHandler(afiladoService, log)
	catalogoHandler := handler.NewCatalogoHandler(catalogoService, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		authHandler,
		usuarioHandler,
		clienteHandler,
		sucursalHandler,
		sierraHandler,
		afiladoHandler,
		catalogoHandler,
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
