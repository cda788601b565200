package services

import (
	"context"
	"encoding/json"
	"sync"

	"eqcoach/models"
)

// Snapshot kinds.
const (
	KindJourney = "journey"
	KindDebate  = "debate"
)

// SnapshotStore persists whole session records as JSON. Save always replaces
// the record; Load returns ErrSessionNotFound for unknown ids.
type SnapshotStore interface {
	Save(ctx context.Context, kind, id string, v interface{}) error
	Load(ctx context.Context, kind, id string, v interface{}) error
	Delete(ctx context.Context, kind, id string) error
}

// Locker guards a session against concurrent generations.
type Locker interface {
	TryLock(ctx context.Context, kind, id string) (bool, error)
	Unlock(ctx context.Context, kind, id string) error
}

// HistoryRecorder keeps finished sessions for analytics.
type HistoryRecorder interface {
	RecordJourney(ctx context.Context, result models.JourneyResult) error
	RecordDebate(ctx context.Context, result models.DebateResult) error
}

// EventLog keeps an append-only trail of session events.
type EventLog interface {
	Append(ctx context.Context, sessionID string, ev *Event) error
}

// MemoryStore is an in-process SnapshotStore and Locker.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string][]byte
	locks   map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]byte),
		locks:   make(map[string]bool),
	}
}

func memoryKey(kind, id string) string { return kind + ":" + id }

func (m *MemoryStore) Save(_ context.Context, kind, id string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[memoryKey(kind, id)] = b
	return nil
}

func (m *MemoryStore) Load(_ context.Context, kind, id string, v interface{}) error {
	m.mu.Lock()
	b, ok := m.records[memoryKey(kind, id)]
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	return json.Unmarshal(b, v)
}

func (m *MemoryStore) Delete(_ context.Context, kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, memoryKey(kind, id))
	return nil
}

func (m *MemoryStore) TryLock(_ context.Context, kind, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memoryKey(kind, id)
	if m.locks[key] {
		return false, nil
	}
	m.locks[key] = true
	return true, nil
}

func (m *MemoryStore) Unlock(_ context.Context, kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, memoryKey(kind, id))
	return nil
}

type noopHistory struct{}

func (noopHistory) RecordJourney(context.Context, models.JourneyResult) error { return nil }
func (noopHistory) RecordDebate(context.Context, models.DebateResult) error { return nil }

type noopEventLog struct{}

func (noopEventLog) Append(context.Context, string, *Event) error { return nil }
