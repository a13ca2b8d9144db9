package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/labelkit/labelkit/config"
)

// NewRouter builds the route mux with the standard middleware chain in
// front: request logging, body size cap, per-client throttling.
func NewRouter(h *Handler, cfg config.IConfig, logger *zap.Logger) (http.Handler, error) {
	maxBytes, err := cfg.MaxRequestBytes()
	if err != nil {
		return nil, fmt.Errorf("read max request bytes: %w", err)
	}
	rps, err := cfg.RequestsPerSecond()
	if err != nil {
		return nil, fmt.Errorf("read rps limit: %w", err)
	}
	rpm, err := cfg.RequestsPerMinute()
	if err != nil {
		return nil, fmt.Errorf("read rpm limit: %w", err)
	}

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("/status", StatusHandler(cfg, logger))

	middlewares := []Middleware{RequestLogger(logger), LimitBody(maxBytes)}
	if rps > 0 || rpm > 0 {
		middlewares = append(middlewares, NewThrottle(rps, rpm).Middleware)
	}
	return Chain(mux, middlewares...), nil
}

// StartHTTPServer starts the HTTP or HTTPS listener per the configured SSL
// mode. It returns the server and a channel reporting listener errors after
// startup; setup failures are returned immediately.
func StartHTTPServer(ctx context.Context, logger *zap.Logger, cfg config.IConfig, handler http.Handler, overrideListenAddr string) (*http.Server, <-chan error, error) {
	if logger == nil || cfg == nil || handler == nil {
		return nil, nil, errors.New("logger, config and handler are required")
	}

	listenAddr := overrideListenAddr
	if listenAddr == "" {
		var err error
		listenAddr, err = cfg.ListenAddr()
		if err != nil {
			return nil, nil, fmt.Errorf("read listen address: %w", err)
		}
	}

	server := &http.Server{
		Addr:         listenAddr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // OCR and pipeline runs can be slow
		IdleTimeout:  90 * time.Second,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}

	sslEnabled, err := cfg.SSLEnabled()
	if err != nil {
		logger.Warn("Failed to read SSL setting, assuming disabled", zap.Error(err))
		sslEnabled = false
	}

	var certFile, keyFile string
	isACME := false
	if sslEnabled {
		sslMode, _ := cfg.SSLMode()
		if sslMode == "acme" {
			isACME = true
			tlsConfig, err := acmeTLSConfig(cfg, logger)
			if err != nil {
				return nil, nil, err
			}
			server.TLSConfig = tlsConfig
		} else {
			certFile, err = cfg.SSLCertFile()
			if err != nil || certFile == "" {
				return nil, nil, fmt.Errorf("manual SSL mode requires a certificate file: %w", err)
			}
			keyFile, err = cfg.SSLKeyFile()
			if err != nil || keyFile == "" {
				return nil, nil, fmt.Errorf("manual SSL mode requires a private key file: %w", err)
			}
		}
	}

	listenerErrChan := make(chan error, 1)
	go func() {
		defer close(listenerErrChan)

		var err error
		if sslEnabled {
			logger.Info("Starting HTTPS server", zap.String("addr", listenAddr), zap.Bool("acme", isACME))
			if isACME {
				err = server.ListenAndServeTLS("", "")
			} else {
				err = server.ListenAndServeTLS(certFile, keyFile)
			}
		} else {
			logger.Info("Starting HTTP server", zap.String("addr", listenAddr))
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server listener error", zap.Error(err))
			listenerErrChan <- err
			return
		}
		logger.Info("Server listener stopped")
	}()

	return server, listenerErrChan, nil
}

// acmeTLSConfig sets up the autocert manager and its HTTP challenge
// listener.
func acmeTLSConfig(cfg config.IConfig, logger *zap.Logger) (*tls.Config, error) {
	domains, err := cfg.SSLAcmeDomains()
	if err != nil || len(domains) == 0 {
		return nil, fmt.Errorf("ACME mode requires at least one domain: %w", err)
	}
	email, _ := cfg.SSLAcmeEmail()
	cacheDir, err := cfg.SSLAcmeCacheDir()
	if err != nil {
		return nil, fmt.Errorf("read ACME cache directory: %w", err)
	}
	if err := os.MkdirAll(cacheDir, 0700); err != nil {
		return nil, fmt.Errorf("create ACME cache directory %s: %w", cacheDir, err)
	}

	certManager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Email:      email,
		Cache:      autocert.DirCache(cacheDir),
	}

	// The HTTP-01 challenge needs a plain HTTP listener on port 80.
	go func() {
		challengeServer := &http.Server{
			Addr:    ":80",
			Handler: certManager.HTTPHandler(nil),
		}
		logger.Info("Starting ACME HTTP challenge listener", zap.String("addr", challengeServer.Addr))
		if err := challengeServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ACME HTTP challenge listener error", zap.Error(err))
		}
	}()

	return certManager.TLSConfig(), nil
}

// ShutdownHTTPServer drains in-flight requests until the context expires.
func ShutdownHTTPServer(ctx context.Context, logger *zap.Logger, server *http.Server) {
	if server == nil {
		return
	}
	logger.Info("Shutting down HTTP server")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
		return
	}
	logger.Info("HTTP server shut down gracefully")
}
