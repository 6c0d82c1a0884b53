package store

import (
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var (
	bucketChunks = []byte("chunks")
	bucketFiles  = []byte("files")
	bucketMeta   = []byte("meta")
)

// BoltBackend is the durable Backend, a single bbolt file. bbolt gives
// crash-safe atomic commits and lets read transactions proceed while a
// write transaction is open.
type BoltBackend struct {
	db   *bbolt.DB
	lock *os.File
}

// Compile-time interface check.
var _ Backend = (*BoltBackend)(nil)

// OpenBolt opens or creates the archive database at path. The parent
// directory is created if missing, and bucket creation is idempotent,
// so opening an existing archive is always safe. A lock file next to
// the database enforces the at-most-one-writer-process assumption;
// OpenBolt fails with ErrLocked if another process holds it.
func OpenBolt(path string) (*BoltBackend, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("store: create directory: %w", err)
		}
	}

	lock, err := tryLock(path + ".lock")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLocked, err)
	}

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		releaseLock(lock)
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketChunks, bucketFiles, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		releaseLock(lock)
		return nil, fmt.Errorf("store: create buckets: %w", err)
	}

	return &BoltBackend{db: db, lock: lock}, nil
}

// Begin starts a bbolt transaction.
func (b *BoltBackend) Begin(writable bool) (Tx, error) {
	tx, err := b.db.Begin(writable)
	if err != nil {
		return nil, fmt.Errorf("store: begin transaction: %w", err)
	}
	return &boltTx{tx: tx}, nil
}

// Close closes the database and releases the writer lock.
func (b *BoltBackend) Close() error {
	err := b.db.Close()
	releaseLock(b.lock)
	b.lock = nil
	if err != nil {
		return fmt.Errorf("store: close bolt db: %w", err)
	}
	return nil
}

type boltTx struct {
	tx *bbolt.Tx
}

var _ Tx = (*boltTx)(nil)

func (t *boltTx) GetChunk(addr Address) ([]byte, bool, error) {
	v := t.tx.Bucket(bucketChunks).Get(addr[:])
	if v == nil {
		return nil, false, nil
	}
	// bbolt values are only valid for the life of the transaction.
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (t *boltTx) PutChunk(addr Address, value []byte) error {
	if !t.tx.Writable() {
		return ErrTxReadOnly
	}
	if err := t.tx.Bucket(bucketChunks).Put(addr[:], value); err != nil {
		return fmt.Errorf("store: put chunk: %w", err)
	}
	return nil
}

func (t *boltTx) HasChunk(addr Address) (bool, error) {
	return t.tx.Bucket(bucketChunks).Get(addr[:]) != nil, nil
}

func (t *boltTx) ChunkCount() (int, error) {
	// Bucket.Stats().KeyN only covers committed pages, so inside a
	// write transaction it misses pending puts. Walk the bucket
	// instead; that sees this transaction's own writes.
	count := 0
	err := t.tx.Bucket(bucketChunks).ForEach(func(_, _ []byte) error {
		count++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("store: count chunks: %w", err)
	}
	return count, nil
}

func (t *boltTx) GetFile(name string) ([]byte, bool, error) {
	v := t.tx.Bucket(bucketFiles).Get([]byte(name))
	if v == nil {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (t *boltTx) PutFile(name string, value []byte) error {
	if !t.tx.Writable() {
		return ErrTxReadOnly
	}
	if err := t.tx.Bucket(bucketFiles).Put([]byte(name), value); err != nil {
		return fmt.Errorf("store: put file record: %w", err)
	}
	return nil
}

func (t *boltTx) FileNames() ([]string, error) {
	var names []string
	err := t.tx.Bucket(bucketFiles).ForEach(func(k, _ []byte) error {
		names = append(names, string(k))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: list file records: %w", err)
	}
	return names, nil
}

func (t *boltTx) GetMeta(key string) ([]byte, bool, error) {
	v := t.tx.Bucket(bucketMeta).Get([]byte(key))
	if v == nil {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (t *boltTx) PutMeta(key string, value []byte) error {
	if !t.tx.Writable() {
		return ErrTxReadOnly
	}
	if err := t.tx.Bucket(bucketMeta).Put([]byte(key), value); err != nil {
		return fmt.Errorf("store: put metadata: %w", err)
	}
	return nil
}

func (t *boltTx) Commit() error {
	// bbolt read transactions must be rolled back; Commit on them is
	// release, to keep callers symmetric across backends.
	if !t.tx.Writable() {
		return t.tx.Rollback()
	}
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

func (t *boltTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil {
		return fmt.Errorf("store: rollback: %w", err)
	}
	return nil
}
