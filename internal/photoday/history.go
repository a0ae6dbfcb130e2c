// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package photoday

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// DateLayout is the key format for picks.
const DateLayout = "2006-01-02"

const pickKeyPrefix = "potd:"

// ErrNoPick means no pick is recorded for the date.
var ErrNoPick = errors.New("no pick recorded")

// Pick records the photo chosen for one day.
type Pick struct {
	Date       string    `json:"date"`
	PhotoID    string    `json:"photo_id"`
	LocationID string    `json:"location_id"`
	PickedAt   time.Time `json:"picked_at"`
}

// History persists picks.
type History interface {
	Get(ctx context.Context, date string) (*Pick, error)
	Save(ctx context.Context, pick *Pick) error
	// Range returns picks with from <= date < to, ordered by date.
	Range(ctx context.Context, from, to string) ([]Pick, error)
}

// MemoryHistory keeps picks in process memory.
type MemoryHistory struct {
	mu    sync.RWMutex
	picks map[string]Pick
}

// NewMemoryHistory creates an empty in-memory history.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{picks: make(map[string]Pick)}
}

func (h *MemoryHistory) Get(_ context.Context, date string) (*Pick, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	p, ok := h.picks[date]
	if !ok {
		return nil, ErrNoPick
	}
	return &p, nil
}

func (h *MemoryHistory) Save(_ context.Context, pick *Pick) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.picks[pick.Date] = *pick
	return nil
}

func (h *MemoryHistory) Range(_ context.Context, from, to string) ([]Pick, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []Pick
	for date, p := range h.picks {
		if date >= from && date < to {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// BadgerHistory stores picks in BadgerDB under "potd:<date>" keys, which
// sort chronologically.
type BadgerHistory struct {
	db     *badger.DB
	closer bool
}

// OpenBadgerHistory opens (or creates) a BadgerDB at path.
func OpenBadgerHistory(path string) (*BadgerHistory, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.ValueLogFileSize = 16 << 20
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for photo history: %w", err)
	}
	return &BadgerHistory{db: db, closer: true}, nil
}

// NewBadgerHistoryFromDB shares an existing database. Close is a no-op.
func NewBadgerHistoryFromDB(db *badger.DB) *BadgerHistory {
	return &BadgerHistory{db: db}
}

// Close closes the database if this history opened it.
func (h *BadgerHistory) Close() error {
	if !h.closer {
		return nil
	}
	return h.db.Close()
}

func (h *BadgerHistory) Get(_ context.Context, date string) (*Pick, error) {
	var pick Pick
	err := h.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(pickKeyPrefix + date))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoPick
		}
		if err != nil {
			return fmt.Errorf("get pick: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &pick)
		})
	})
	if err != nil {
		return nil, err
	}
	return &pick, nil
}

func (h *BadgerHistory) Save(_ context.Context, pick *Pick) error {
	data, err := json.Marshal(pick)
	if err != nil {
		return fmt.Errorf("marshal pick: %w", err)
	}
	return h.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(pickKeyPrefix+pick.Date), data)
	})
}

func (h *BadgerHistory) Range(_ context.Context, from, to string) ([]Pick, error) {
	var out []Pick
	err := h.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(pickKeyPrefix)
		end := pickKeyPrefix + to
		for it.Seek([]byte(pickKeyPrefix + from)); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			if string(item.Key()) >= end {
				break
			}
			var p Pick
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			}); err != nil {
				return fmt.Errorf("decode pick %s: %w", item.Key(), err)
			}
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
