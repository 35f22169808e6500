// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package signer

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/reelkit/reelrank/internal/config"
)

// Errors returned by Verify.
var (
	ErrExpired          = errors.New("signed url expired")
	ErrInvalidSignature = errors.New("invalid url signature")
	ErrMalformedURL     = errors.New("malformed signed url")
)

// macSize truncates the BLAKE2b output. 16 bytes keeps URLs short while
// leaving forgery out of reach for an online attacker.
const macSize = 16

// Signer mints and verifies expiring playback URLs.
type Signer struct {
	key     []byte
	baseURL string
	ttl     time.Duration
}

// New builds a Signer from config. The secret must be non-empty; playback
// URLs guard paid CDN egress, so there is no unsigned fallback.
func New(cfg *config.SignerConfig) (*Signer, error) {
	if cfg.Secret == "" {
		return nil, errors.New("signer: secret is required")
	}
	if cfg.URLTTL <= 0 {
		return nil, errors.New("signer: url_ttl must be positive")
	}
	// blake2b keys are capped at 64 bytes.
	key := []byte(cfg.Secret)
	if len(key) > 64 {
		sum := blake2b.Sum256(key)
		key = sum[:]
	}
	return &Signer{
		key:     key,
		baseURL: strings.TrimRight(cfg.CDNBaseURL, "/"),
		ttl:     cfg.URLTTL,
	}, nil
}

// SignedURL returns a playable CDN URL for the given media reference,
// valid until now plus the configured TTL.
func (s *Signer) SignedURL(mediaRef string, now time.Time) (string, error) {
	if mediaRef == "" {
		return "", errors.New("signer: empty media reference")
	}
	path := "/" + strings.TrimLeft(mediaRef, "/")
	expires := now.Add(s.ttl).Unix()

	mac, err := s.mac(path, expires)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("sig", base64.RawURLEncoding.EncodeToString(mac))
	return s.baseURL + path + "?" + q.Encode(), nil
}

// Verify checks the signature and expiry of a previously signed URL. It is
// the edge-side counterpart of SignedURL and exists so local deployments can
// serve media without a real CDN in front.
func (s *Signer) Verify(rawURL string, now time.Time) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ErrMalformedURL
	}
	expStr := u.Query().Get("expires")
	sigStr := u.Query().Get("sig")
	if expStr == "" || sigStr == "" {
		return ErrMalformedURL
	}
	expires, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		return ErrMalformedURL
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigStr)
	if err != nil {
		return ErrMalformedURL
	}

	want, err := s.mac(u.Path, expires)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(sig, want) != 1 {
		return ErrInvalidSignature
	}
	if now.Unix() > expires {
		return ErrExpired
	}
	return nil
}

func (s *Signer) mac(path string, expires int64) ([]byte, error) {
	h, err := blake2b.New(macSize, s.key)
	if err != nil {
		return nil, fmt.Errorf("signer: %w", err)
	}
	fmt.Fprintf(h, "%s\n%d", path, expires)
	return h.Sum(nil), nil
}
