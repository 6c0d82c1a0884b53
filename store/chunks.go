package store

import "fmt"

// ChunkStore is the content-addressed, deduplicating chunk table of an
// archive, bound to one transaction. Chunks are compressed with the
// archive's codec on the way in and decompressed on the way out.
type ChunkStore struct {
	Tx    Tx
	Codec Codec
}

// Put stores data under addr. If addr is already present the call is a
// no-op: the existing entry is byte-identical by construction and
// immutable, so nothing is re-compressed or re-written. This makes
// puts idempotent and re-running a failed batch safe.
func (s ChunkStore) Put(addr Address, data []byte) error {
	ok, err := s.Tx.HasChunk(addr)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	compressed, err := Compress(data, s.Codec)
	if err != nil {
		return fmt.Errorf("store: compress chunk %s: %w", addr, err)
	}
	return s.Tx.PutChunk(addr, compressed)
}

// PutData hashes data, stores it, and returns its address.
func (s ChunkStore) PutData(data []byte) (Address, error) {
	addr := SumAddress(data)
	if err := s.Put(addr, data); err != nil {
		return Address{}, err
	}
	return addr, nil
}

// Get returns the exact original bytes stored under addr. A missing
// address yields ErrNotFound; for an address taken from a committed
// file record that indicates store corruption, and the caller is
// expected to report it as such.
func (s ChunkStore) Get(addr Address) ([]byte, error) {
	compressed, ok, err := s.Tx.GetChunk(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: chunk %s", ErrNotFound, addr)
	}
	data, err := Decompress(compressed, s.Codec)
	if err != nil {
		return nil, fmt.Errorf("store: decompress chunk %s: %w", addr, err)
	}
	return data, nil
}

// Count returns the number of distinct chunks in the store.
func (s ChunkStore) Count() (int, error) {
	return s.Tx.ChunkCount()
}
