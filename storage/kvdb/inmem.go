package kvdb

import (
	"context"
	"sync"
)

// inmemDB is a map-backed substrate for tests and ephemeral runs. The
// mutex only guards the map itself; logical-operation serialization is
// the services' concern.
type inmemDB struct {
	mu   sync.RWMutex
	data map[string][]byte

	// failPut, when set, makes Put fail for the named collection. Tests use
	// it to exercise partial-failure reporting on multi-write operations.
	failPut func(collection string) error
}

var _ DB = (*inmemDB)(nil)

func OpenInMem() DB {
	return &inmemDB{data: make(map[string][]byte)}
}

func (m *inmemDB) Get(_ context.Context, collection string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[collection]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *inmemDB) Put(_ context.Context, collection string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut != nil {
		if err := m.failPut(collection); err != nil {
			return err
		}
	}
	m.data[collection] = data
	return nil
}

func (m *inmemDB) Close() error { return nil }

// FailPuts installs a write-failure hook on an in-memory DB; it panics on
// any other DB implementation. Test helper.
func FailPuts(db DB, fn func(collection string) error) {
	db.(*inmemDB).failPut = fn
}
