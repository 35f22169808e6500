// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

/*
Package api exposes the HTTP surface of the ranking engine.

Endpoints:

	GET    /api/v1/feed                 personalized feed page
	GET    /api/v1/trending             trending feed page
	POST   /api/v1/telemetry/events     batch telemetry ingestion
	POST   /api/v1/feedback             negative feedback upsert
	POST   /api/v1/live/{creatorID}     mark a creator live
	DELETE /api/v1/live/{creatorID}     end a creator's live session
	GET    /api/v1/health               liveness plus dependency status
	GET    /api/v1/health/live          bare liveness probe
	GET    /api/v1/health/ready         readiness (storage reachable)
	GET    /metrics                     Prometheus exposition

All responses use a uniform envelope: {"success": ..., "data": ...,
"error": ...}. Viewer identity comes from an optional bearer JWT; requests
without one are served the anonymous surface rather than rejected.
*/
package api
