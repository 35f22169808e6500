// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/reelkit/reelrank/internal/config"
	"github.com/reelkit/reelrank/internal/middleware"
	"github.com/reelkit/reelrank/internal/models"
	"github.com/reelkit/reelrank/internal/ranking"
	"github.com/reelkit/reelrank/internal/telemetry"
)

// mockRanker records the last request and returns a canned page.
type mockRanker struct {
	lastReq ranking.Request
	err     error
}

func (m *mockRanker) Personalized(_ context.Context, req ranking.Request) (*ranking.Response, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &ranking.Response{
		Items:      []models.FeedVideo{},
		Pagination: models.NewPagination(req.Page, req.Limit, 0),
		Metadata:   ranking.ResponseMetadata{Surface: "personalized"},
	}, nil
}

func (m *mockRanker) Trending(ctx context.Context, req ranking.Request) (*ranking.Response, error) {
	resp, err := m.Personalized(ctx, req)
	if resp != nil {
		resp.Metadata.Surface = "trending"
	}
	return resp, err
}

type mockIngester struct {
	lastViewer *uuid.UUID
	lastBatch  []models.TelemetryEvent
}

func (m *mockIngester) Ingest(_ context.Context, viewerID *uuid.UUID, events []models.TelemetryEvent) telemetry.Result {
	m.lastViewer = viewerID
	m.lastBatch = events
	return telemetry.Result{Accepted: len(events)}
}

type mockFeedbackStore struct {
	lastRec *models.FeedbackRecord
	err     error
}

func (m *mockFeedbackStore) UpsertFeedback(_ context.Context, rec *models.FeedbackRecord) error {
	m.lastRec = rec
	return m.err
}

type mockLiveRegistry struct {
	marked   []uuid.UUID
	unmarked []uuid.UUID
	err      error
}

func (m *mockLiveRegistry) Mark(_ context.Context, id uuid.UUID) error {
	m.marked = append(m.marked, id)
	return m.err
}

func (m *mockLiveRegistry) Unmark(_ context.Context, id uuid.UUID) error {
	m.unmarked = append(m.unmarked, id)
	return m.err
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(context.Context) error { return m.err }

type testDeps struct {
	ranker   *mockRanker
	ingestor *mockIngester
	feedback *mockFeedbackStore
	live     *mockLiveRegistry
	pinger   *mockPinger
}

func testAPIConfig() *config.APIConfig {
	return &config.APIConfig{
		DefaultPageSize: 20,
		MaxPageSize:     50,
		MaxExcludeIDs:   200,
		RateLimitReqs:   1000,
		RateLimitWindow: time.Minute,
		RequestTimeout:  5 * time.Second,
	}
}

func newTestRouter(t *testing.T) (http.Handler, *testDeps) {
	t.Helper()
	deps := &testDeps{
		ranker:   &mockRanker{},
		ingestor: &mockIngester{},
		feedback: &mockFeedbackStore{},
		live:     &mockLiveRegistry{},
		pinger:   &mockPinger{},
	}
	h := NewHandler(deps.ranker, deps.ingestor, deps.feedback, deps.live, HealthChecker{
		Storage:    deps.pinger,
		Components: map[string]func() string{"pipeline": func() string { return "ok" }},
	}, testAPIConfig())
	router := NewRouter(h, testAPIConfig(), &config.SecurityConfig{JWTSecret: "api-test-secret"})
	return router, deps
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestFeedDefaultsAndClamping(t *testing.T) {
	router, deps := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/feed?limit=500", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if deps.ranker.lastReq.Limit != 50 {
		t.Errorf("limit = %d, want clamped to max page size 50", deps.ranker.lastReq.Limit)
	}
	if deps.ranker.lastReq.Page != 1 {
		t.Errorf("page = %d, want default 1", deps.ranker.lastReq.Page)
	}
	if deps.ranker.lastReq.ViewerID != nil {
		t.Error("request without bearer token must be anonymous")
	}
	if !decodeEnvelope(t, rec).Success {
		t.Error("success envelope expected")
	}
}

func TestFeedRejectsInvalidPage(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/feed?page=0", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != ErrCodeValidationFailed {
		t.Errorf("error = %+v, want %s", env.Error, ErrCodeValidationFailed)
	}
}

func TestFeedParsesExcludeIDs(t *testing.T) {
	router, deps := newTestRouter(t)
	a, b := uuid.New(), uuid.New()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/feed?exclude_ids="+a.String()+","+b.String(), nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(deps.ranker.lastReq.ExcludeIDs) != 2 {
		t.Fatalf("exclude list = %v", deps.ranker.lastReq.ExcludeIDs)
	}
	if deps.ranker.lastReq.ExcludeIDs[0] != a || deps.ranker.lastReq.ExcludeIDs[1] != b {
		t.Error("exclude IDs do not round-trip")
	}
}

func TestFeedRejectsMalformedExcludeIDs(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/feed?exclude_ids=not-a-uuid", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestFeedRankerFailure(t *testing.T) {
	router, deps := newTestRouter(t)
	deps.ranker.err = errors.New("candidate query failed")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestTrendingPassesLocale(t *testing.T) {
	router, deps := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/trending?country=br&language=pt", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if deps.ranker.lastReq.Country != "BR" {
		t.Errorf("country = %q, want normalized BR", deps.ranker.lastReq.Country)
	}
	if deps.ranker.lastReq.Language != "pt" {
		t.Errorf("language = %q", deps.ranker.lastReq.Language)
	}
}

func TestTelemetryBatchAccepted(t *testing.T) {
	router, deps := newTestRouter(t)

	body := telemetryBatch{Events: []models.TelemetryEvent{
		{VideoID: uuid.New(), EventType: models.EventLike, SessionID: "s1"},
	}}
	raw, _ := json.Marshal(body)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/telemetry/events", strings.NewReader(string(raw))))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if len(deps.ingestor.lastBatch) != 1 {
		t.Errorf("batch size = %d", len(deps.ingestor.lastBatch))
	}
}

func TestTelemetryEmptyBatchRejected(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/telemetry/events", strings.NewReader(`{"events":[]}`)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestFeedbackRequiresViewer(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"video_id":"` + uuid.NewString() + `","action":"not_interested"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/feedback", strings.NewReader(body)))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestFeedbackUpserts(t *testing.T) {
	_, deps := newTestRouter(t)
	viewerID := uuid.New()
	videoID := uuid.New()

	h := NewHandler(deps.ranker, deps.ingestor, deps.feedback, deps.live, HealthChecker{Storage: deps.pinger}, testAPIConfig())
	body := `{"video_id":"` + videoID.String() + `","action":"hide_creator","reason":"seen too often"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", strings.NewReader(body))
	req = req.WithContext(middleware.ContextWithViewer(req.Context(), viewerID))

	rec := httptest.NewRecorder()
	h.Feedback(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	got := deps.feedback.lastRec
	if got == nil {
		t.Fatal("upsert not called")
	}
	if got.UserID != viewerID || got.VideoID != videoID || got.Action != models.FeedbackHideCreator {
		t.Errorf("record = %+v", got)
	}
}

func TestFeedbackRejectsUnknownAction(t *testing.T) {
	_, deps := newTestRouter(t)
	h := NewHandler(deps.ranker, deps.ingestor, deps.feedback, deps.live, HealthChecker{Storage: deps.pinger}, testAPIConfig())

	body := `{"video_id":"` + uuid.NewString() + `","action":"love_it"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", strings.NewReader(body))
	req = req.WithContext(middleware.ContextWithViewer(req.Context(), uuid.New()))

	rec := httptest.NewRecorder()
	h.Feedback(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if deps.feedback.lastRec != nil {
		t.Error("unknown action must not be persisted")
	}
}

func TestLiveStartAndEnd(t *testing.T) {
	router, deps := newTestRouter(t)
	creatorID := uuid.New()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/live/"+creatorID.String(), nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("mark status = %d", rec.Code)
	}
	if len(deps.live.marked) != 1 || deps.live.marked[0] != creatorID {
		t.Errorf("marked = %v", deps.live.marked)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/live/"+creatorID.String(), nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("unmark status = %d", rec.Code)
	}
	if len(deps.live.unmarked) != 1 {
		t.Errorf("unmarked = %v", deps.live.unmarked)
	}
}

func TestLiveRejectsBadCreatorID(t *testing.T) {
	router, deps := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/live/not-a-uuid", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(deps.live.marked) != 0 {
		t.Error("bad ID must not reach the registry")
	}
}

func TestHealthReady(t *testing.T) {
	router, deps := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("ready status = %d", rec.Code)
	}

	deps.pinger.err = errors.New("connection refused")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status with dead storage = %d, want 503", rec.Code)
	}
}

func TestHealthReportsDegradedComponent(t *testing.T) {
	deps := &testDeps{
		ranker: &mockRanker{}, ingestor: &mockIngester{},
		feedback: &mockFeedbackStore{}, live: &mockLiveRegistry{}, pinger: &mockPinger{},
	}
	h := NewHandler(deps.ranker, deps.ingestor, deps.feedback, deps.live, HealthChecker{
		Storage:    deps.pinger,
		Components: map[string]func() string{"pipeline": func() string { return "open" }},
	}, testAPIConfig())

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 for open breaker", rec.Code)
	}
}

func TestViewerIdentityFlowsToRanker(t *testing.T) {
	router, deps := newTestRouter(t)
	viewerID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil)
	req.Header.Set("Authorization", "Bearer "+mintViewerToken(t, "api-test-secret", viewerID))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if deps.ranker.lastReq.ViewerID == nil || *deps.ranker.lastReq.ViewerID != viewerID {
		t.Errorf("viewer = %v, want %s", deps.ranker.lastReq.ViewerID, viewerID)
	}
}
