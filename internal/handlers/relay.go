package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"companion-backend/internal/middleware"
	"companion-backend/internal/models"
)

const maxPromptBodyBytes = 64 << 10

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	if err != nil {
		panic(fmt.Sprintf("register notblank validation: %v", err))
	}
	return v
}

type promptRelayer interface {
	Relay(ctx context.Context, prompt string) (*models.RelayResponse, error)
}

type RelayHandler struct {
	relay  promptRelayer
	logger *zap.Logger
}

func NewRelayHandler(relay promptRelayer, logger *zap.Logger) *RelayHandler {
	return &RelayHandler{relay: relay, logger: logger}
}

// Generate handles POST /api/generate.
func (h *RelayHandler) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPromptBodyBytes)

	var req models.RelayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("Prompt too large", ""))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body", ""))
		return
	}

	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Missing prompt", ""))
		return
	}

	resp, err := h.relay.Relay(r.Context(), req.Prompt)
	if err != nil {
		h.logger.Warn("relay failed",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err))
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
