package server

import (
	"go.uber.org/zap"

	"github.com/labelkit/labelkit/backend"
	"github.com/labelkit/labelkit/ocr"
	"github.com/labelkit/labelkit/store"
)

// WithListenAddr overrides the listen address from the config. An empty
// address keeps the config default.
func WithListenAddr(addr string) ServerOption {
	return func(b *ServerBuilder) error {
		if addr != "" {
			b.listenAddr = addr
			b.logger.Info("Overriding listen address", zap.String("addr", addr))
		}
		return nil
	}
}

// WithModel serves the given model instead of building the configured one.
func WithModel(model backend.Model) ServerOption {
	return func(b *ServerBuilder) error {
		b.model = model
		return nil
	}
}

// WithStore uses the given store instead of the configured driver.
func WithStore(st store.Store) ServerOption {
	return func(b *ServerBuilder) error {
		b.store = st
		return nil
	}
}

// WithOCREngine swaps the OCR engine used by the bboxocr model. Tesseract is
// the default.
func WithOCREngine(engine ocr.Engine) ServerOption {
	return func(b *ServerBuilder) error {
		b.engine = engine
		return nil
	}
}
