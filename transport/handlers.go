// Package transport exposes the ML backend HTTP contract: the fixed routes
// Label Studio calls into, the middleware in front of them, and the server
// lifecycle.
package transport

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/labelkit/labelkit/backend"
	"github.com/labelkit/labelkit/schema"
)

// Handler serves the ML backend routes for a single model.
type Handler struct {
	model  backend.Model
	base   *backend.Base
	logger *zap.Logger
}

func NewHandler(model backend.Model, base *backend.Base, logger *zap.Logger) *Handler {
	return &Handler{
		model:  model,
		base:   base,
		logger: logger.With(zap.String("component", "http")),
	}
}

// Register attaches all backend routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/predict", h.Predict)
	mux.HandleFunc("/setup", h.Setup)
	mux.HandleFunc("/webhook", h.Webhook)
	mux.HandleFunc("/train", h.Train)
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/metrics", h.Metrics)
	mux.HandleFunc("/", h.Root)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// Predict handles POST /predict: decode the task batch and the interactive
// context, run the model and return its predictions.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req schema.PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	// Label Studio resends the labeling config with every predict call;
	// apply it so a missed /setup does not break interactive predictions.
	if err := h.base.ApplyLabelConfig(req.LabelConfig); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := h.model.Predict(r.Context(), req.Tasks, req.Context())
	if err != nil {
		h.logger.Error("Prediction failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Setup handles POST /setup: store the labeling config and project
// credentials, then run the model's setup hook when it has one.
func (h *Handler) Setup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req schema.SetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.base.ApplySetup(r.Context(), &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	if hook, ok := h.model.(backend.SetupHook); ok {
		if err := hook.Setup(r.Context()); err != nil {
			h.writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	h.logger.Info("Project setup applied", zap.String("project", h.base.Project()))
	h.writeJSON(w, http.StatusOK, schema.SetupResponse{ModelVersion: h.base.ModelVersion(r.Context())})
}

// Webhook handles POST /webhook. Training is best effort: a failing Fit hook
// is logged, never surfaced to Label Studio.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var event schema.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	h.dispatch(r, &event)
	h.writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// Train handles POST /train, the legacy training endpoint older Label Studio
// versions call instead of the webhook.
func (h *Handler) Train(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	event := schema.Event{Action: schema.ActionStartTraining}
	h.dispatch(r, &event)
	h.writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

func (h *Handler) dispatch(r *http.Request, event *schema.Event) {
	if !event.IsTraining() {
		h.logger.Debug("Ignoring webhook event", zap.String("action", event.Action))
		return
	}
	trainer, ok := h.model.(backend.Trainer)
	if !ok {
		h.logger.Debug("Model has no training hook", zap.String("model", h.model.Name()))
		return
	}
	if err := trainer.Fit(r.Context(), event); err != nil {
		h.logger.Error("Training hook failed",
			zap.String("action", event.Action),
			zap.Error(err))
	}
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":      "UP",
		"model_class": h.model.Name(),
	})
}

// Root answers the liveness probe on / and rejects unknown paths.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	h.Health(w, r)
}

// Metrics is a contract placeholder; Label Studio polls it but ignores the
// body.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{})
}
