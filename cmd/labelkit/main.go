package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/labelkit/labelkit/config"
	"github.com/labelkit/labelkit/server"
)

// Environment variable names
const (
	EnvDatabaseURL = "LABELKIT_DATABASE_URL"
	EnvConfigYAML  = "LABELKIT_CONFIG_YAML"
)

func main() {
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := loggerConfig.Build()
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	configDB := flag.String("database-url", "", "PostgreSQL connection string for configuration")
	configYAML := flag.String("config-yaml", "", "Path to YAML configuration file")
	modelName := flag.String("model", "", "Model to serve (bboxocr, textextract, stratigraphy); overrides config")
	listenAddr := flag.String("listen", "", "Listen address; overrides config")
	flag.Parse()

	if *configDB != "" && *configYAML != "" {
		logger.Fatal("Cannot specify both database-url and config-yaml")
	}

	dbURL := os.Getenv(EnvDatabaseURL)
	if *configDB != "" {
		dbURL = *configDB
	}
	yamlPath := os.Getenv(EnvConfigYAML)
	if *configYAML != "" {
		yamlPath = *configYAML
	}
	if yamlPath == "" && dbURL == "" {
		yamlPath = "config.yaml"
	}

	var cfg config.IConfig
	if dbURL != "" {
		logger.Info("Loading configuration from database")
		cfg, err = config.NewDatabaseConfig(dbURL, logger)
		if err != nil {
			logger.Fatal("Failed to create database config", zap.Error(err))
		}
	} else {
		logger.Info("Loading configuration from YAML file", zap.String("path", yamlPath))
		cfg, err = config.NewYamlConfig(yamlPath, logger)
		if err != nil {
			logger.Fatal("Failed to create YAML config", zap.Error(err))
		}
	}
	defer cfg.Close()

	if *modelName != "" {
		overrideModel(cfg, *modelName, logger)
	}

	logger = applyLogLevel(loggerConfig, cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		logger.Info("Received termination signal")
		cancel()
	}()

	errChan, err := server.Start(ctx, logger, cfg, server.WithListenAddr(*listenAddr))
	if err != nil {
		logger.Fatal("Server failed to start", zap.Error(err))
	}

	select {
	case err, ok := <-errChan:
		if ok && err != nil {
			logger.Fatal("Server listener failed", zap.Error(err))
		}
	case <-ctx.Done():
		// Wait for the drain to finish before exiting.
		select {
		case <-errChan:
		case <-time.After(1 * time.Minute):
			logger.Warn("Shutdown timed out, exiting")
		}
	}
	logger.Info("Server stopped")
}

// overrideModel pushes the --model flag into mutable configs. Database-backed
// configuration owns the model name and cannot be overridden.
func overrideModel(cfg config.IConfig, name string, logger *zap.Logger) {
	switch c := cfg.(type) {
	case *config.InternalConfig:
		c.ModelNameValue = name
	case *config.YamlConfig:
		c.OverrideModelName(name)
	default:
		logger.Warn("Model flag ignored for this configuration source", zap.String("model", name))
	}
}

// applyLogLevel rebuilds the logger at the level named in config.
func applyLogLevel(loggerConfig zap.Config, cfg config.IConfig, logger *zap.Logger) *zap.Logger {
	logLevel, err := cfg.LogLevel()
	if err != nil {
		logger.Warn("Failed to get log level from config, using default", zap.Error(err))
		return logger
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		logger.Warn("Invalid log level in config, using default", zap.String("level", logLevel))
		return logger
	}
	loggerConfig.Level = zap.NewAtomicLevelAt(level)
	newLogger, err := loggerConfig.Build()
	if err != nil {
		logger.Warn("Failed to rebuild logger, keeping default", zap.Error(err))
		return logger
	}
	return newLogger
}
