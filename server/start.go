package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/labelkit/labelkit/config"
	"github.com/labelkit/labelkit/transport"
)

// Start assembles the backend per config and options and starts the HTTP
// server. It returns a channel reporting listener errors after startup; the
// server shuts down gracefully when ctx is canceled.
func Start(ctx context.Context, logger *zap.Logger, cfg config.IConfig, options ...ServerOption) (<-chan error, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	listenAddr, err := cfg.ListenAddr()
	if err != nil {
		return nil, fmt.Errorf("read listen address: %w", err)
	}

	builder := &ServerBuilder{
		ctx:        ctx,
		logger:     logger,
		cfg:        cfg,
		listenAddr: listenAddr,
	}
	for _, option := range options {
		if err := option(builder); err != nil {
			return nil, fmt.Errorf("apply server option: %w", err)
		}
	}
	if err := builder.ensureBase(); err != nil {
		return nil, err
	}
	if err := builder.ensureModel(); err != nil {
		return nil, err
	}

	logger.Info("Serving model",
		zap.String("model", builder.model.Name()),
		zap.String("addr", builder.listenAddr))

	handler := transport.NewHandler(builder.model, builder.base, logger)
	router, err := transport.NewRouter(handler, cfg, logger)
	if err != nil {
		return nil, err
	}

	serverInstance, listenerErrChan, err := transport.StartHTTPServer(ctx, logger, cfg, router, builder.listenAddr)
	if err != nil {
		return nil, fmt.Errorf("start HTTP server: %w", err)
	}

	// done closes only after the drain and the store close finish, so
	// callers can block on it to wait out a graceful shutdown.
	done := make(chan error, 1)
	go func() {
		defer close(done)
		select {
		case err, ok := <-listenerErrChan:
			if ok && err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Server listener failed", zap.Error(err))
				done <- err
			}
		case <-ctx.Done():
			logger.Info("Shutdown signal received, stopping server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			transport.ShutdownHTTPServer(shutdownCtx, logger, serverInstance)
		}
		if builder.store != nil {
			if err := builder.store.Close(); err != nil {
				logger.Error("Failed to close store", zap.Error(err))
			}
		}
	}()

	return done, nil
}
