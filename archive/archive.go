// Package archive is the orchestrator of a cask archive: it composes
// the chunker, chunk store, and file index over one transactional
// backend, and adds path resolution on the way in and collision-safe
// extraction on the way out.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/cask-archive/cask/chunker"
	"github.com/cask-archive/cask/store"
)

// metaConfigKey is where the archive's immutable configuration lives in
// the backend's meta namespace.
const metaConfigKey = "config"

// Options configure a newly created archive. They take effect only on
// first creation; on later opens the persisted configuration wins, so
// chunk boundaries and the codec stay stable for the archive's
// lifetime.
type Options struct {
	Codec    store.Codec
	Chunking chunker.Config
}

// config is the persisted archive configuration.
type config struct {
	Codec    store.Codec    `json:"codec"`
	Chunking chunker.Config `json:"chunking"`
}

// Archive is a content-addressed, deduplicating file archive.
type Archive struct {
	backend store.Backend
	cfg     config
}

// Open opens or creates the durable archive at path. Schema and
// configuration creation is idempotent and safe on every open.
func Open(path string, opts Options) (*Archive, error) {
	backend, err := store.OpenBolt(path)
	if err != nil {
		return nil, err
	}
	a, err := bootstrap(backend, opts)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	return a, nil
}

// OpenMemory creates an in-memory archive, used by tests.
func OpenMemory(opts Options) (*Archive, error) {
	return bootstrap(store.NewMemory(), opts)
}

// bootstrap loads the persisted configuration, writing a fresh one
// (defaults filled, polynomial generated) if the archive is new.
func bootstrap(backend store.Backend, opts Options) (*Archive, error) {
	tx, err := backend.Begin(true)
	if err != nil {
		return nil, err
	}

	cfg, err := loadOrInitConfig(tx, opts)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &Archive{backend: backend, cfg: cfg}, nil
}

func loadOrInitConfig(tx store.Tx, opts Options) (config, error) {
	raw, ok, err := tx.GetMeta(metaConfigKey)
	if err != nil {
		return config{}, err
	}
	if ok {
		var cfg config
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return config{}, fmt.Errorf("archive: decode configuration: %w", err)
		}
		return cfg, nil
	}

	chunking, err := opts.Chunking.Complete()
	if err != nil {
		return config{}, err
	}
	cfg := config{Codec: opts.Codec, Chunking: chunking}
	raw, err = json.Marshal(cfg)
	if err != nil {
		return config{}, fmt.Errorf("archive: encode configuration: %w", err)
	}
	if err := tx.PutMeta(metaConfigKey, raw); err != nil {
		return config{}, err
	}
	return cfg, nil
}

// Close releases the backend.
func (a *Archive) Close() error {
	return a.backend.Close()
}

// Codec returns the archive's compression codec.
func (a *Archive) Codec() store.Codec {
	return a.cfg.Codec
}

// Batch runs fn inside one writable transaction: commit if fn returns
// nil, rollback otherwise. One invocation of add or extract runs as one
// batch, so either every record (and its chunks) becomes visible or
// none does.
func (a *Archive) Batch(fn func(tx store.Tx) error) error {
	tx, err := a.backend.Begin(true)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

// View runs fn inside a read-only transaction. Readers see the last
// committed state and do not block on an in-progress writer.
func (a *Archive) View(fn func(tx store.Tx) error) error {
	tx, err := a.backend.Begin(false)
	if err != nil {
		return err
	}
	err = fn(tx)
	if rbErr := tx.Rollback(); rbErr != nil && err == nil {
		err = rbErr
	}
	return err
}

// PutFileData archives data under name: chunk, address, store each
// chunk (deduplicated), then write the file record inside the caller's
// transaction. An existing record for name is replaced. The record is
// never visible unless every chunk it references is durably stored.
func (a *Archive) PutFileData(tx store.Tx, name string, data []byte) (store.FileRecord, error) {
	chunks, err := chunker.Split(data, a.cfg.Chunking)
	if err != nil {
		return store.FileRecord{}, err
	}

	cs := store.ChunkStore{Tx: tx, Codec: a.cfg.Codec}
	addrs := make([]store.Address, 0, len(chunks))
	for _, chunk := range chunks {
		addr, err := cs.PutData(chunk)
		if err != nil {
			return store.FileRecord{}, err
		}
		addrs = append(addrs, addr)
	}

	rec := store.FileRecord{Name: name, Size: int64(len(data)), Chunks: addrs}
	if err := (store.FileIndex{Tx: tx}).Put(rec); err != nil {
		return store.FileRecord{}, err
	}
	return rec, nil
}

// GetFileData reconstructs the bytes last archived under name by
// fetching its chunks in record order and concatenating them. A missing
// record yields store.ErrNotFound; a missing referenced chunk yields
// store.ErrCorruption.
func (a *Archive) GetFileData(tx store.Tx, name string) ([]byte, error) {
	rec, err := (store.FileIndex{Tx: tx}).Get(name)
	if err != nil {
		return nil, err
	}

	cs := store.ChunkStore{Tx: tx, Codec: a.cfg.Codec}
	data := make([]byte, 0, rec.Size)
	for _, addr := range rec.Chunks {
		chunk, err := cs.Get(addr)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: file %q references missing chunk %s", store.ErrCorruption, name, addr)
		}
		if err != nil {
			return nil, err
		}
		data = append(data, chunk...)
	}
	return data, nil
}

// List returns archived names sharing prefix as a path prefix, every
// name if prefix is empty.
func (a *Archive) List(tx store.Tx, prefix string) ([]string, error) {
	return (store.FileIndex{Tx: tx}).List(prefix)
}

// AddPaths resolves each input path into regular files and archives
// them all within tx, naming each file relative to cwd (or the nearest
// cwd ancestor containing it). Returns the archived names in order.
func (a *Archive) AddPaths(tx store.Tx, cwd string, paths []string) ([]string, error) {
	var names []string
	for _, p := range paths {
		files, err := ResolveFiles(p)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			name, err := ArchiveName(cwd, f)
			if err != nil {
				return nil, err
			}
			data, err := os.ReadFile(f)
			if err != nil {
				return nil, fmt.Errorf("archive: read %s: %w", f, err)
			}
			if _, err := a.PutFileData(tx, name, data); err != nil {
				return nil, err
			}
			names = append(names, name)
		}
	}
	return names, nil
}
