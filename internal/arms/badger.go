// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

package arms

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/samarJ19/wallmart-Hackathon/internal/metrics"
)

// Key layout:
//
//	arm:<user>\x00<product>  -> 16-byte stat (pulls, reward bits)
//	evt:<event_id>           -> empty value with TTL
//
// The NUL separator keeps user/product boundaries unambiguous.
const (
	armPrefix = "arm:"
	evtPrefix = "evt:"
	keySep    = "\x00"
)

// maxTxnRetries bounds the optimistic-conflict retry loop per update.
// Same-arm writers are serialized by mutex before the transaction, so
// conflicts here only arise from overlapping read sets across arms
// (e.g. the same event id landing on two arms) and stay rare.
const maxTxnRetries = 16

// BadgerStore is the durable Store implementation backed by badger.
//
// Writers to the same arm are serialized by a per-arm mutex, matching
// MemoryStore; badger's transaction is the durability step, not the
// concurrency control. Under contention updates queue on the lock
// instead of aborting with ErrConflict until the retry cap drops them.
// Event dedup rides in the same transaction as the counter update, so
// an update and its dedup marker commit or abort together.
type BadgerStore struct {
	db       *badger.DB
	dedupTTL time.Duration
	logger   zerolog.Logger

	mu       sync.Mutex
	armLocks map[armKey]*sync.Mutex
}

// BadgerOptions configures a BadgerStore.
type BadgerOptions struct {
	// Path is the data directory. Empty plus InMemory opens an
	// ephemeral store (tests).
	Path string

	// InMemory opens badger without disk persistence.
	InMemory bool

	// DedupTTL is how long event ids are remembered. Default: 24h
	DedupTTL time.Duration
}

// NewBadgerStore opens (or creates) a badger-backed arm store.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBadgerStore(opts BadgerOptions, logger zerolog.Logger) (*BadgerStore, error) {
	if opts.DedupTTL <= 0 {
		opts.DedupTTL = 24 * time.Hour
	}

	badgerOpts := badger.DefaultOptions(opts.Path).
		WithInMemory(opts.InMemory).
		WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", opts.Path, err)
	}

	return &BadgerStore{
		db:       db,
		dedupTTL: opts.DedupTTL,
		logger:   logger.With().Str("component", "arm-store").Str("backend", "badger").Logger(),
		armLocks: make(map[armKey]*sync.Mutex),
	}, nil
}

// GetOrCreate implements Store. Badger creates nothing here; a missing
// key simply reads as the zero stat, matching lazy arm creation.
func (b *BadgerStore) GetOrCreate(ctx context.Context, userID, productID string) (Stat, error) {
	if err := ctx.Err(); err != nil {
		return Stat{}, err
	}
	metrics.ArmStoreOps.WithLabelValues("badger", "get").Inc()

	var stat Stat
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(armKeyBytes(userID, productID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			stat, err = decodeStat(val)
			return err
		})
	})
	if err != nil {
		return Stat{}, fmt.Errorf("failed to read arm %s/%s: %w", userID, productID, err)
	}
	return stat, nil
}

// Update implements Store. The per-arm lock serializes same-key
// writers so concurrent rewards queue instead of conflicting away.
func (b *BadgerStore) Update(ctx context.Context, userID, productID string, reward float64, eventID string) (bool, error) {
	metrics.ArmStoreOps.WithLabelValues("badger", "update").Inc()

	lock := b.armLock(userID, productID)
	lock.Lock()
	defer lock.Unlock()

	applied := false
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		err := b.db.Update(func(txn *badger.Txn) error {
			applied = false

			_, err := txn.Get(evtKeyBytes(eventID))
			if err == nil {
				// Replay: the event already committed once.
				return nil
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			stat := Stat{}
			armKey := armKeyBytes(userID, productID)
			item, err := txn.Get(armKey)
			if err == nil {
				if err := item.Value(func(val []byte) error {
					stat, err = decodeStat(val)
					return err
				}); err != nil {
					return err
				}
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			stat.Pulls++
			stat.CumulativeReward += reward

			if err := txn.Set(armKey, encodeStat(stat)); err != nil {
				return err
			}
			marker := badger.NewEntry(evtKeyBytes(eventID), nil).WithTTL(b.dedupTTL)
			if err := txn.SetEntry(marker); err != nil {
				return err
			}

			applied = true
			return nil
		})

		if errors.Is(err, badger.ErrConflict) {
			metrics.ArmStoreConflicts.Inc()
			if attempt >= maxTxnRetries {
				return false, fmt.Errorf("arm update for %s/%s kept conflicting after %d attempts: %w",
					userID, productID, attempt, err)
			}
			continue
		}
		if err != nil {
			return false, fmt.Errorf("failed to update arm %s/%s: %w", userID, productID, err)
		}

		if !applied {
			b.logger.Debug().
				Str("event_id", eventID).
				Str("user_id", userID).
				Str("product_id", productID).
				Msg("duplicate event ignored")
		}
		return applied, nil
	}
}

// Snapshot implements Store.
func (b *BadgerStore) Snapshot(ctx context.Context, userID string) (map[string]Stat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	metrics.ArmStoreOps.WithLabelValues("badger", "snapshot").Inc()

	prefix := []byte(armPrefix + userID + keySep)
	out := make(map[string]Stat)

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			productID := string(item.Key()[len(prefix):])
			if err := item.Value(func(val []byte) error {
				stat, err := decodeStat(val)
				if err != nil {
					return err
				}
				out[productID] = stat
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot arms for %s: %w", userID, err)
	}
	return out, nil
}

// Close implements Store.
func (b *BadgerStore) Close() error {
	return b.db.Close()
}

// armLock returns the mutex serializing writers of one arm, creating
// it lazily.
func (b *BadgerStore) armLock(userID, productID string) *sync.Mutex {
	key := armKey{userID, productID}

	b.mu.Lock()
	defer b.mu.Unlock()
	lock, ok := b.armLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		b.armLocks[key] = lock
	}
	return lock
}

func armKeyBytes(userID, productID string) []byte {
	return []byte(armPrefix + userID + keySep + productID)
}

func evtKeyBytes(eventID string) []byte {
	return []byte(evtPrefix + eventID)
}

// encodeStat packs a stat into 16 bytes: big-endian pulls then the IEEE
// bits of the cumulative reward.
func encodeStat(s Stat) []byte {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[:8], uint64(s.Pulls))
	binary.BigEndian.PutUint64(buf[8:], math.Float64bits(s.CumulativeReward))
	return buf
}

func decodeStat(val []byte) (Stat, error) {
	if len(val) != 16 {
		return Stat{}, fmt.Errorf("malformed arm record of %d bytes", len(val))
	}
	return Stat{
		Pulls:            int64(binary.BigEndian.Uint64(val[:8])),
		CumulativeReward: math.Float64frombits(binary.BigEndian.Uint64(val[8:])),
	}, nil
}

var _ Store = (*BadgerStore)(nil)
