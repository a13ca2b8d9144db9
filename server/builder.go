// Package server wires the configured model, its store and the HTTP
// transport together and runs the backend until the context is canceled.
package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/labelkit/labelkit/backend"
	"github.com/labelkit/labelkit/config"
	"github.com/labelkit/labelkit/loader"
	"github.com/labelkit/labelkit/models/bboxocr"
	"github.com/labelkit/labelkit/models/stratigraphy"
	"github.com/labelkit/labelkit/models/textextract"
	"github.com/labelkit/labelkit/ocr"
	"github.com/labelkit/labelkit/ocr/tesseract"
	"github.com/labelkit/labelkit/store"
)

// ServerBuilder collects the pieces assembled by Start and its options.
type ServerBuilder struct {
	ctx        context.Context
	logger     *zap.Logger
	cfg        config.IConfig
	listenAddr string

	store  store.Store
	engine ocr.Engine
	model  backend.Model
	base   *backend.Base
}

// ServerOption configures the ServerBuilder before startup.
type ServerOption func(*ServerBuilder) error

// ensureStore creates the configured store unless an option supplied one.
func (b *ServerBuilder) ensureStore() error {
	if b.store != nil {
		return nil
	}
	st, err := store.New(b.cfg, b.logger)
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	b.store = st
	return nil
}

// ensureBase creates the shared model base on top of the store.
func (b *ServerBuilder) ensureBase() error {
	if b.base != nil {
		return nil
	}
	if err := b.ensureStore(); err != nil {
		return err
	}
	version, err := b.cfg.ModelVersion()
	if err != nil {
		return fmt.Errorf("read model version: %w", err)
	}
	b.base = backend.NewBase(b.logger, b.store, version)
	return nil
}

// ensureModel builds the model named in config unless an option supplied
// one.
func (b *ServerBuilder) ensureModel() error {
	if b.model != nil {
		return nil
	}
	if err := b.ensureBase(); err != nil {
		return err
	}
	name, err := b.cfg.ModelName()
	if err != nil {
		return fmt.Errorf("read model name: %w", err)
	}

	files := loader.New(b.cfg, b.logger)
	switch name {
	case "bboxocr":
		engine := b.engine
		if engine == nil {
			engine = tesseract.New()
		}
		b.model, err = bboxocr.New(b.base, files, engine, b.cfg)
	case "textextract":
		b.model, err = textextract.New(b.base, textextract.PDFSource{}, b.cfg)
	case "stratigraphy":
		var runner *stratigraphy.Runner
		runner, err = stratigraphy.NewRunner(b.cfg, b.logger)
		if err == nil {
			b.model, err = stratigraphy.New(b.base, files, runner, b.cfg)
		}
	default:
		return fmt.Errorf("unknown model %q", name)
	}
	if err != nil {
		return fmt.Errorf("create model %s: %w", name, err)
	}
	return nil
}
