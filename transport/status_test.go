package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/labelkit/labelkit/config"
)

func statusCheck(t *testing.T, cfg config.IConfig) StatusResponse {
	t.Helper()
	rec := httptest.NewRecorder()
	StatusHandler(cfg, zap.NewNop())(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestStatusWithoutLabelStudio(t *testing.T) {
	t.Setenv(config.EnvLabelStudioHost, "")

	resp := statusCheck(t, config.NewInternalConfig())
	assert.Equal(t, "ok", resp.Config)
	assert.Equal(t, "none", resp.LabelStudio)
}

func TestStatusChecksLabelStudio(t *testing.T) {
	ls := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer ls.Close()

	t.Setenv(config.EnvLabelStudioHost, "")
	cfg := config.NewInternalConfig()
	cfg.LabelStudioURLValue = ls.URL

	resp := statusCheck(t, cfg)
	assert.Equal(t, "ok", resp.Config)
	assert.Equal(t, "ok", resp.LabelStudio)

	ls.Close()
	resp = statusCheck(t, cfg)
	assert.Equal(t, "error", resp.LabelStudio)
}
