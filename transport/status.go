package transport

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/labelkit/labelkit/config"
)

// StatusResponse reports the health of the backend's dependencies.
type StatusResponse struct {
	Config      string `json:"config"`
	LabelStudio string `json:"label_studio,omitempty"`
}

// StatusHandler checks the configuration source and, when a Label Studio
// host is configured, its reachability. Always answers 200; the body carries
// the component states.
func StatusHandler(cfg config.IConfig, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handlerLogger := logger.With(zap.String("handler", "status"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		response := StatusResponse{Config: "ok", LabelStudio: "none"}

		if err := cfg.Status(r.Context()); err != nil {
			handlerLogger.Error("Config status check failed", zap.Error(err))
			response.Config = "error"
		}

		hostURL, err := cfg.LabelStudioURL()
		if err != nil {
			handlerLogger.Error("Failed to get Label Studio URL", zap.Error(err))
			response.Config = "error"
			hostURL = ""
		}
		if hostURL != "" {
			response.LabelStudio = checkLabelStudio(hostURL, handlerLogger)
		}

		if err := json.NewEncoder(w).Encode(response); err != nil {
			handlerLogger.Error("Failed to encode status response", zap.Error(err))
		}
	}
}

func checkLabelStudio(hostURL string, logger *zap.Logger) string {
	client := &http.Client{Timeout: 5 * time.Second}
	statusURL := strings.TrimSuffix(hostURL, "/") + "/health"

	resp, err := client.Get(statusURL)
	if err != nil {
		logger.Error("Failed to connect to Label Studio", zap.Error(err))
		return "error"
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logger.Error("Label Studio returned non-OK status", zap.Int("status", resp.StatusCode))
		return "error"
	}
	return "ok"
}
