package offline

import (
	"context"
	"errors"
	"sync"

	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
)

var errStoreDown = errors.New("store down")

// memStore is an in-memory ListStore with failure injection.
type memStore struct {
	mu        sync.Mutex
	lists     map[string][]model.QueuedAttempt
	failLoad  bool
	failWrite bool
	writes    int
}

func newMemStore() *memStore {
	return &memStore{lists: make(map[string][]model.QueuedAttempt)}
}

func (m *memStore) LoadAttempts(_ context.Context, queue string) ([]model.QueuedAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLoad {
		return nil, errStoreDown
	}
	return append([]model.QueuedAttempt(nil), m.lists[queue]...), nil
}

func (m *memStore) ReplaceAttempts(_ context.Context, queue string, attempts []model.QueuedAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return errStoreDown
	}
	m.writes++
	m.lists[queue] = append([]model.QueuedAttempt(nil), attempts...)
	return nil
}

func (m *memStore) ids(queue string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, a := range m.lists[queue] {
		ids = append(ids, a.ID)
	}
	return ids
}
