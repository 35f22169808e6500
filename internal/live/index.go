// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package live

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/reelkit/reelrank/internal/config"
	"github.com/reelkit/reelrank/internal/metrics"
)

const liveKeyPrefix = "live:"

// Index is the Badger-backed live-broadcast registry. Entries expire via
// Badger's native TTL; a broadcaster keeps itself live by re-marking within
// the session TTL.
type Index struct {
	db  *badger.DB
	ttl time.Duration
}

// New opens (or creates) the live index. An empty path uses an in-memory
// instance, which is fine for single-node deployments since liveness is
// rebuilt by heartbeats within one TTL anyway.
func New(cfg *config.LiveConfig) (*Index, error) {
	var opts badger.Options
	if cfg.Path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open live index: %w", err)
	}
	return &Index{db: db, ttl: cfg.SessionTTL}, nil
}

// Close releases the underlying store.
func (i *Index) Close() error {
	return i.db.Close()
}

// Mark registers (or refreshes) a creator's live session.
func (i *Index) Mark(ctx context.Context, creatorID uuid.UUID) error {
	err := i.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(liveKey(creatorID), []byte{1}).WithTTL(i.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("mark live: %w", err)
	}
	i.updateGauge(ctx)
	return nil
}

// Unmark ends a creator's live session immediately.
func (i *Index) Unmark(ctx context.Context, creatorID uuid.UUID) error {
	err := i.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(liveKey(creatorID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("unmark live: %w", err)
	}
	i.updateGauge(ctx)
	return nil
}

// Count returns how many creators are currently live.
func (i *Index) Count(_ context.Context) (int, error) {
	count := 0
	err := i.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(liveKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count live: %w", err)
	}
	return count, nil
}

// updateGauge refreshes the sessions gauge from the index itself, since TTL
// expiry removes entries without going through Unmark.
func (i *Index) updateGauge(ctx context.Context) {
	if count, err := i.Count(ctx); err == nil {
		metrics.LiveSessions.Set(float64(count))
	}
}

// LiveCreators reports which of the given creators are currently live.
// Implements ranking.LiveIndex.
func (i *Index) LiveCreators(_ context.Context, creatorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(creatorIDs))
	err := i.db.View(func(txn *badger.Txn) error {
		for _, id := range creatorIDs {
			_, err := txn.Get(liveKey(id))
			switch {
			case err == nil:
				out[id] = true
			case errors.Is(err, badger.ErrKeyNotFound):
				// not live
			default:
				return fmt.Errorf("lookup %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func liveKey(creatorID uuid.UUID) []byte {
	return []byte(liveKeyPrefix + creatorID.String())
}
