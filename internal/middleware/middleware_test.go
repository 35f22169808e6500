// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/reelkit/reelrank/internal/logging"
)

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Error("request ID missing from context")
	}
	if rec.Header().Get("X-Request-ID") != seen {
		t.Errorf("header %q does not match context %q", rec.Header().Get("X-Request-ID"), seen)
	}
}

func TestRequestIDHonorsUpstream(t *testing.T) {
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := logging.RequestIDFromContext(r.Context()); got != "proxy-assigned-id" {
			t.Errorf("context request ID = %q, want upstream value", got)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "proxy-assigned-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") != "proxy-assigned-id" {
		t.Error("upstream request ID not echoed")
	}
}

func TestCompressionGzipsWhenAccepted(t *testing.T) {
	body := strings.Repeat("feed item payload ", 100)
	h := Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, body)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatal("Content-Encoding not set")
	}
	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	decoded, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(decoded) != body {
		t.Error("decompressed body does not match original")
	}
}

func TestCompressionSkippedWithoutAcceptEncoding(t *testing.T) {
	h := Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "plain")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("Content-Encoding") != "" {
		t.Error("response compressed without client support")
	}
	if rec.Body.String() != "plain" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestMetricsCapturesStatus(t *testing.T) {
	h := Metrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, middleware must pass status through", rec.Code)
	}
}
