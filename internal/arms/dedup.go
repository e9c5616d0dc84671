// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

package arms

import (
	"container/list"
	"sync"
	"time"
)

// dedupSet is a bounded, TTL'd set of recently seen event ids used by
// the in-memory store for idempotent replay detection.
//
// Entries share a fixed TTL, so insertion order equals expiry order and
// pruning only ever walks the front of the queue. When the set is full,
// the oldest entry is evicted even if unexpired; upstream redelivery
// windows are far shorter than the capacity horizon in practice.
type dedupSet struct {
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int
	entries map[string]*list.Element
	queue   *list.List // of dedupEntry, oldest first

	now func() time.Time // injectable clock for tests
}

type dedupEntry struct {
	id     string
	expiry time.Time
}

func newDedupSet(ttl time.Duration, maxSize int) *dedupSet {
	return &dedupSet{
		ttl:     ttl,
		maxSize: maxSize,
		entries: make(map[string]*list.Element),
		queue:   list.New(),
		now:     time.Now,
	}
}

// checkAndRemember returns true and records the id if it has not been
// seen within the TTL window; returns false for a replay. The check and
// the insert are one atomic step.
func (d *dedupSet) checkAndRemember(eventID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	d.pruneLocked(now)

	if _, seen := d.entries[eventID]; seen {
		return false
	}

	for len(d.entries) >= d.maxSize {
		d.evictOldestLocked()
	}

	elem := d.queue.PushBack(dedupEntry{id: eventID, expiry: now.Add(d.ttl)})
	d.entries[eventID] = elem
	return true
}

// len returns the current entry count.
func (d *dedupSet) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

func (d *dedupSet) pruneLocked(now time.Time) {
	for {
		front := d.queue.Front()
		if front == nil {
			return
		}
		entry := front.Value.(dedupEntry)
		if entry.expiry.After(now) {
			return
		}
		d.queue.Remove(front)
		delete(d.entries, entry.id)
	}
}

func (d *dedupSet) evictOldestLocked() {
	front := d.queue.Front()
	if front == nil {
		return
	}
	entry := front.Value.(dedupEntry)
	d.queue.Remove(front)
	delete(d.entries, entry.id)
}
