package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"

	"companion-backend/internal/models"
)

// Attempt outcomes, also used as usage counter fields.
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeEmpty    = "empty"
	OutcomeError    = "error"
)

// Generator is the backend the relay forwards to.
type Generator interface {
	GenerateContent(ctx context.Context, model string, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error)
}

// UsageRecorder counts attempt outcomes per candidate.
type UsageRecorder interface {
	Record(ctx context.Context, model, outcome string) error
}

type RelayService struct {
	backend           Generator
	candidates        []string
	systemInstruction string
	attemptTimeout    time.Duration
	usage             UsageRecorder
	logger            *zap.Logger
}

// NewRelayService builds the prompt relay. usage may be nil.
func NewRelayService(
	backend Generator,
	candidates []string,
	systemInstruction string,
	attemptTimeout time.Duration,
	usage UsageRecorder,
	logger *zap.Logger,
) (*RelayService, error) {
	if backend == nil {
		return nil, errors.New("relay: backend must not be nil")
	}
	if len(candidates) == 0 {
		return nil, errors.New("relay: at least one model candidate is required")
	}
	if attemptTimeout <= 0 {
		return nil, errors.New("relay: attempt timeout must be positive")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RelayService{
		backend:           backend,
		candidates:        append([]string(nil), candidates...),
		systemInstruction: systemInstruction,
		attemptTimeout:    attemptTimeout,
		usage:             usage,
		logger:            logger,
	}, nil
}

// Candidates returns the fallback order.
func (s *RelayService) Candidates() []string {
	return append([]string(nil), s.candidates...)
}

// Relay forwards prompt to each candidate in order until one replies with text.
// Only a 404 or a reply without text moves on to the next candidate; any other
// backend status or a transport failure is returned immediately.
func (s *RelayService) Relay(ctx context.Context, prompt string) (*models.RelayResponse, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, &ValidationError{Message: "Missing prompt"}
	}

	req := s.buildRequest(prompt)
	tried := make([]string, 0, len(s.candidates))

	for i, model := range s.candidates {
		tried = append(tried, model)

		start := time.Now()
		resp, err := s.attempt(ctx, model, req)
		fields := []zap.Field{
			zap.String("model", model),
			zap.Int("attempt", i+1),
			zap.Duration("duration", time.Since(start)),
		}

		if err != nil {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) {
				fields = append(fields, zap.Int("status", apiErr.Code))
				if apiErr.Code == http.StatusNotFound {
					s.logger.Info("model candidate not found, trying next", fields...)
					s.record(ctx, model, OutcomeNotFound)
					continue
				}
				s.logger.Error("backend returned error", append(fields, zap.String("details", apiErr.Body))...)
				s.record(ctx, model, OutcomeError)
				return nil, &BackendError{Model: model, StatusCode: apiErr.Code, Body: apiErr.Body}
			}

			// The caller went away; nothing to report upstream.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			if errors.Is(err, ErrNoSlot) {
				s.logger.Warn("no backend slot before attempt deadline", append(fields, zap.Error(err))...)
				return nil, &BusyError{Model: model, Err: err}
			}

			if errors.Is(err, ErrMalformedResponse) {
				s.logger.Error("backend reply could not be decoded", append(fields, zap.Error(err))...)
				s.record(ctx, model, OutcomeError)
				return nil, &MalformedReplyError{Model: model, Err: err}
			}

			s.logger.Error("backend unreachable", append(fields, zap.Error(err))...)
			s.record(ctx, model, OutcomeError)
			return nil, &TransportError{Model: model, Err: err}
		}

		text := ExtractText(resp)
		if text == "" {
			s.logger.Warn("model candidate returned no text, trying next", append(fields, zap.Int("status", http.StatusOK))...)
			s.record(ctx, model, OutcomeEmpty)
			continue
		}

		s.logger.Info("model candidate replied", append(fields, zap.Int("status", http.StatusOK))...)
		s.record(ctx, model, OutcomeSuccess)
		return &models.RelayResponse{Text: text, ModelUsed: model}, nil
	}

	return nil, &ExhaustedError{Tried: tried}
}

func (s *RelayService) attempt(ctx context.Context, model string, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
	defer cancel()
	return s.backend.GenerateContent(attemptCtx, model, req)
}

func (s *RelayService) buildRequest(prompt string) *models.GenerateContentRequest {
	req := &models.GenerateContentRequest{
		Contents: []models.Content{
			{Role: "user", Parts: []models.Part{{Text: prompt}}},
		},
	}
	if s.systemInstruction != "" {
		req.SystemInstruction = &models.Content{
			Parts: []models.Part{{Text: s.systemInstruction}},
		}
	}
	return req
}

func (s *RelayService) record(ctx context.Context, model, outcome string) {
	if s.usage == nil {
		return
	}
	// Detached from request cancellation, bounded to 2s.
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.usage.Record(recCtx, model, outcome); err != nil {
		s.logger.Warn("failed to record usage", zap.String("model", model), zap.String("outcome", outcome), zap.Error(err))
	}
}
