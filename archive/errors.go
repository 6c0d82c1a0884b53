package archive

import "errors"

var (
	// ErrUnsupportedInput indicates an enumerated path that is neither
	// a regular file nor a directory (symlink, device, socket, ...).
	ErrUnsupportedInput = errors.New("archive: unsupported input path")

	// ErrCollision indicates an extraction destination that already
	// exists. The existing file is never opened, truncated, or
	// partially written.
	ErrCollision = errors.New("archive: extraction destination already exists")
)
