// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/reelkit/reelrank/internal/logging"
)

// Envelope is the uniform response wrapper for all endpoints.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError carries a machine-readable code plus a human-readable message.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// Error codes.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error().Err(err).Msg("encode response")
	}
}

func respondSuccess(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, Envelope{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, Envelope{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	})
}
