package handlers

import (
	"context"
	"net/http"
	"os"

	"go.uber.org/zap"

	"companion-backend/internal/models"
)

type usageSnapshotter interface {
	Snapshot(ctx context.Context, candidates []string) (map[string]map[string]int64, error)
}

type StatusHandler struct {
	hasAPIKey  bool
	port       string
	candidates []string
	usage      usageSnapshotter
	logger     *zap.Logger
}

// NewStatusHandler builds the debug probe. usage may be nil.
func NewStatusHandler(hasAPIKey bool, port string, candidates []string, usage usageSnapshotter, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{
		hasAPIKey:  hasAPIKey,
		port:       port,
		candidates: append([]string(nil), candidates...),
		usage:      usage,
		logger:     logger,
	}
}

// Status handles GET /status. The API key itself is never included.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}

	resp := models.StatusResponse{
		OK:              true,
		HasAPIKey:       h.hasAPIKey,
		Port:            h.port,
		CWD:             cwd,
		ModelCandidates: h.candidates,
	}

	if h.usage != nil {
		usage, err := h.usage.Snapshot(r.Context(), h.candidates)
		if err != nil {
			h.logger.Warn("failed to read usage counters", zap.Error(err))
		} else {
			resp.Usage = usage
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
