// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

/*
Package middleware provides the HTTP middleware stack for the feed API.

Components:

  - RequestID: propagates (or mints) an X-Request-ID and threads it through
    the logging context for request correlation.
  - Metrics: Prometheus instrumentation keyed on the chi route pattern, so
    path parameters do not explode label cardinality.
  - ViewerIdentity: extracts the viewer UUID from a bearer JWT. Requests
    without a valid token proceed as anonymous; feeds degrade rather than
    reject.
  - Compression: gzip for feed payloads above a size threshold.

All middleware uses the standard func(http.Handler) http.Handler shape and
composes through chi's Use.
*/
package middleware
