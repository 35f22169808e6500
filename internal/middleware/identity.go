// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/reelkit/reelrank/internal/config"
	"github.com/reelkit/reelrank/internal/logging"
)

type contextKey string

const viewerIDKey contextKey = "viewer_id"

// ViewerClaims carries the viewer identity inside a bearer token.
type ViewerClaims struct {
	ViewerID string `json:"viewer_id"`
	jwt.RegisteredClaims
}

// ViewerIdentity extracts the viewer UUID from a bearer JWT and stores it in
// the request context. Identity here only personalizes ranking, so a missing
// or invalid token downgrades the request to anonymous instead of rejecting
// it. With no configured secret every request is anonymous.
func ViewerIdentity(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	secret := []byte(cfg.JWTSecret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(secret) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			viewerID, err := parseViewer(token, secret)
			if err != nil {
				logger := logging.Ctx(r.Context())
				logger.Debug().Err(err).Msg("bearer token rejected, treating request as anonymous")
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), viewerIDKey, viewerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ViewerFromContext returns the authenticated viewer ID, or nil for
// anonymous requests.
func ViewerFromContext(ctx context.Context) *uuid.UUID {
	if id, ok := ctx.Value(viewerIDKey).(uuid.UUID); ok {
		return &id
	}
	return nil
}

// ContextWithViewer injects a viewer identity. Test helper.
func ContextWithViewer(ctx context.Context, viewerID uuid.UUID) context.Context {
	return context.WithValue(ctx, viewerIDKey, viewerID)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return h[len(prefix):]
}

func parseViewer(tokenString string, secret []byte) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ViewerClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*ViewerClaims)
	if !ok || !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid token claims")
	}
	viewerID, err := uuid.Parse(claims.ViewerID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("viewer_id claim: %w", err)
	}
	return viewerID, nil
}
