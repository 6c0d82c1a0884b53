package store

import "errors"

var (
	// ErrNotFound indicates the requested file record or chunk does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrCorruption indicates a file record references a chunk address
	// that is absent from the chunk store. A well-formed archive never
	// produces this: records are committed only after every chunk they
	// reference.
	ErrCorruption = errors.New("store: archive corrupted")

	// ErrBadAddress indicates a chunk address that does not decode to
	// the expected digest length.
	ErrBadAddress = errors.New("store: malformed chunk address")

	// ErrBadRecord indicates a persisted file record that does not decode.
	ErrBadRecord = errors.New("store: malformed file record")

	// ErrUnknownCodec indicates an unrecognized compression codec tag.
	ErrUnknownCodec = errors.New("store: unknown compression codec")

	// ErrTxReadOnly indicates a write attempted on a read-only transaction.
	ErrTxReadOnly = errors.New("store: transaction is read-only")

	// ErrTxDone indicates use of a transaction that was already
	// committed or rolled back.
	ErrTxDone = errors.New("store: transaction already finished")

	// ErrLocked indicates another process holds the archive's writer lock.
	ErrLocked = errors.New("store: archive locked by another process")
)
