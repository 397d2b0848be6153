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

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/weiawesome/wes-io-live/pin-service/internal/config"
	"github.com/weiawesome/wes-io-live/pin-service/internal/fpe"
	pingrpc "github.com/weiawesome/wes-io-live/pin-service/internal/grpc"
	"github.com/weiawesome/wes-io-live/pin-service/internal/handler"
	"github.com/weiawesome/wes-io-live/pin-service/internal/pin"
	"github.com/weiawesome/wes-io-live/pin-service/internal/seal"
	"github.com/weiawesome/wes-io-live/pin-service/internal/service"
	"github.com/weiawesome/wes-io-live/pin-service/internal/state"
	"github.com/weiawesome/wes-io-live/pkg/jwt"
	pkglog "github.com/weiawesome/wes-io-live/pkg/log"
	"github.com/weiawesome/wes-io-live/pkg/middleware"
	"github.com/weiawesome/wes-io-live/pkg/pubsub"
)

func main() {
	flags := config.Flags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load(flags)
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "pin-service",
	})
	logger := pkglog.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	space, err := pin.NewDefaultSpace(cfg.Pin.Charset, cfg.Pin.Length)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid pin space")
	}
	if err := space.Permutable(); err != nil {
		logger.Fatal().Err(err).Msg("invalid pin space")
	}
	logger.Info().
		Int("length", space.Length()).
		Int("radix", space.Radix()).
		Uint64(pkglog.FieldSpaceSize, space.Size()).
		Msg("pin space initialized")

	// Initialize state store
	var codec *state.Codec
	if cfg.State.Driver != "memory" {
		sealer, err := seal.New(cfg.State.Seal.Passphrase, cfg.State.Seal.Scope, cfg.State.Seal.Params)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create sealer")
		}
		codec = state.NewCodec(sealer)
		logger.Info().Str("scope", sealer.Scope()).Msg("state sealing enabled")
	}

	store, err := state.New(ctx, cfg.State.Config, codec)
	if err != nil {
		logger.Fatal().Err(err).Str(pkglog.FieldDriver, cfg.State.Driver).Msg("failed to open state store")
	}
	logger.Info().Str(pkglog.FieldDriver, cfg.State.Driver).Msg("state store opened")

	// Initialize event publisher
	publisher, err := pubsub.NewPublisher(cfg.Events)
	if err != nil {
		logger.Fatal().Err(err).Str(pkglog.FieldDriver, cfg.Events.Driver).Msg("failed to create publisher")
	}
	defer publisher.Close()

	// Initialize service
	pinService := service.NewPinService(space, store, fpe.New(), publisher, cfg.Pin.MaxBatch)

	// Initialize auth
	var manager *jwt.Manager
	var authMiddleware *middleware.AuthMiddleware
	if cfg.Auth.Secret != "" {
		manager, err = jwt.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenDuration)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create jwt manager")
		}
		authMiddleware = middleware.NewAuthMiddleware(manager)
	} else {
		logger.Warn().Msg("auth.secret not set, API is unauthenticated")
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))
	handler.NewHandler(pinService, authMiddleware).RegisterRoutes(r)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", httpServer.Addr).Msg("http server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	var grpcServer *pingrpc.Server
	if cfg.GRPC.Enabled {
		grpcAddr := fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port)
		lis, err := pingrpc.Listen(grpcAddr)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to start grpc server")
		}
		grpcServer = pingrpc.NewServer(pinService, manager, logger)

		g.Go(func() error {
			logger.Info().Str("addr", grpcAddr).Msg("grpc server starting")
			if err := grpcServer.Serve(lis); err != nil {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info().Msg("shutting down pin-service")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if grpcServer != nil {
			grpcServer.Shutdown()
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("http server forced to shutdown")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server error")
	}

	if err := pinService.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close pin service")
	}
	if err := store.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close state store")
	}
	logger.Info().Msg("pin-service stopped")
}
