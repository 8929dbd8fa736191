package models

// RelayRequest is the payload accepted by POST /api/generate.
type RelayRequest struct {
	Prompt string `json:"prompt" validate:"notblank"`
}

// RelayResponse carries the generated reply and the candidate that produced it.
type RelayResponse struct {
	Text      string `json:"text"`
	ModelUsed string `json:"modelUsed"`
}

// ErrorResponse is the flat error body returned by the relay endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// BackendErrorResponse relays a backend failure; details is always present,
// even when the backend sent an empty body.
type BackendErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// StatusResponse is the liveness/debug probe payload. It never carries the key.
type StatusResponse struct {
	OK              bool                        `json:"ok"`
	HasAPIKey       bool                        `json:"hasApiKey"`
	Port            string                      `json:"port"`
	CWD             string                      `json:"cwd"`
	ModelCandidates []string                    `json:"modelCandidates"`
	Usage           map[string]map[string]int64 `json:"usage,omitempty"`
}
