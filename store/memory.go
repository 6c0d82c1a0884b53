package store

import (
	"sort"
	"sync"
)

// MemoryBackend is an in-memory Backend for tests. It mirrors the
// durable backend's transaction semantics: writes are staged in the
// transaction and only become visible on Commit; Rollback discards
// them. A RWMutex provides the same single-writer/multi-reader
// discipline bbolt gives the durable backend.
type MemoryBackend struct {
	mu     sync.RWMutex
	chunks map[Address][]byte
	files  map[string][]byte
	meta   map[string][]byte
}

// Compile-time interface check.
var _ Backend = (*MemoryBackend)(nil)

// NewMemory creates an empty in-memory backend.
func NewMemory() *MemoryBackend {
	return &MemoryBackend{
		chunks: make(map[Address][]byte),
		files:  make(map[string][]byte),
		meta:   make(map[string][]byte),
	}
}

// Begin starts a transaction. The backend lock is held until the
// transaction is committed or rolled back.
func (m *MemoryBackend) Begin(writable bool) (Tx, error) {
	if writable {
		m.mu.Lock()
	} else {
		m.mu.RLock()
	}
	tx := &memTx{backend: m, writable: writable}
	if writable {
		tx.chunks = make(map[Address][]byte)
		tx.files = make(map[string][]byte)
		tx.meta = make(map[string][]byte)
	}
	return tx, nil
}

// Close is a no-op for the in-memory backend.
func (m *MemoryBackend) Close() error { return nil }

type memTx struct {
	backend  *MemoryBackend
	writable bool
	done     bool

	// staged writes, applied on Commit
	chunks map[Address][]byte
	files  map[string][]byte
	meta   map[string][]byte
}

var _ Tx = (*memTx)(nil)

func (t *memTx) GetChunk(addr Address) ([]byte, bool, error) {
	if t.done {
		return nil, false, ErrTxDone
	}
	if t.writable {
		if v, ok := t.chunks[addr]; ok {
			return append([]byte(nil), v...), true, nil
		}
	}
	v, ok := t.backend.chunks[addr]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (t *memTx) PutChunk(addr Address, value []byte) error {
	if t.done {
		return ErrTxDone
	}
	if !t.writable {
		return ErrTxReadOnly
	}
	t.chunks[addr] = append([]byte(nil), value...)
	return nil
}

func (t *memTx) HasChunk(addr Address) (bool, error) {
	if t.done {
		return false, ErrTxDone
	}
	if t.writable {
		if _, ok := t.chunks[addr]; ok {
			return true, nil
		}
	}
	_, ok := t.backend.chunks[addr]
	return ok, nil
}

func (t *memTx) ChunkCount() (int, error) {
	if t.done {
		return 0, ErrTxDone
	}
	n := len(t.backend.chunks)
	for addr := range t.chunks {
		if _, ok := t.backend.chunks[addr]; !ok {
			n++
		}
	}
	return n, nil
}

func (t *memTx) GetFile(name string) ([]byte, bool, error) {
	if t.done {
		return nil, false, ErrTxDone
	}
	if t.writable {
		if v, ok := t.files[name]; ok {
			return append([]byte(nil), v...), true, nil
		}
	}
	v, ok := t.backend.files[name]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (t *memTx) PutFile(name string, value []byte) error {
	if t.done {
		return ErrTxDone
	}
	if !t.writable {
		return ErrTxReadOnly
	}
	t.files[name] = append([]byte(nil), value...)
	return nil
}

func (t *memTx) FileNames() ([]string, error) {
	if t.done {
		return nil, ErrTxDone
	}
	seen := make(map[string]bool, len(t.backend.files)+len(t.files))
	for name := range t.backend.files {
		seen[name] = true
	}
	for name := range t.files {
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (t *memTx) GetMeta(key string) ([]byte, bool, error) {
	if t.done {
		return nil, false, ErrTxDone
	}
	if t.writable {
		if v, ok := t.meta[key]; ok {
			return append([]byte(nil), v...), true, nil
		}
	}
	v, ok := t.backend.meta[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (t *memTx) PutMeta(key string, value []byte) error {
	if t.done {
		return ErrTxDone
	}
	if !t.writable {
		return ErrTxReadOnly
	}
	t.meta[key] = append([]byte(nil), value...)
	return nil
}

func (t *memTx) Commit() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	if !t.writable {
		t.backend.mu.RUnlock()
		return nil
	}
	for addr, v := range t.chunks {
		t.backend.chunks[addr] = v
	}
	for name, v := range t.files {
		t.backend.files[name] = v
	}
	for key, v := range t.meta {
		t.backend.meta[key] = v
	}
	t.backend.mu.Unlock()
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	if !t.writable {
		t.backend.mu.RUnlock()
		return nil
	}
	t.backend.mu.Unlock()
	return nil
}
