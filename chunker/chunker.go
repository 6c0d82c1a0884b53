// Package chunker splits byte buffers into variable-length chunks with
// content-defined boundaries. Boundaries are found by a rabin
// fingerprint rolling hash over a sliding window, so a localized edit
// moves only the boundaries near the edit and leaves the rest of the
// chunk sequence unchanged. That boundary-shift resistance is what
// makes deduplication effective across near-identical files.
package chunker

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	rabin "github.com/restic/chunker"
)

const (
	kiB = 1024
	miB = 1024 * kiB

	// DefaultMinSize is the default minimum chunk size.
	DefaultMinSize = 512 * kiB

	// DefaultMaxSize is the default maximum chunk size.
	DefaultMaxSize = 8 * miB

	// DefaultAverageBits yields an average chunk size of 2^20 bytes (1 MiB).
	DefaultAverageBits = 20
)

// ErrNoPolynomial indicates a Config whose polynomial was never
// generated. Splitting with a zero polynomial would not be
// content-defined at all.
var ErrNoPolynomial = errors.New("chunker: config has no polynomial")

// Config fixes the chunking parameters of one archive. The polynomial
// is generated once when the archive is created and persisted with it;
// reusing it on every run keeps chunk boundaries deterministic for the
// lifetime of the archive. AverageBits is the single target-size knob:
// the average chunk size is 2^AverageBits bytes.
type Config struct {
	Polynomial  rabin.Pol `json:"polynomial"`
	MinSize     uint      `json:"min_size"`
	MaxSize     uint      `json:"max_size"`
	AverageBits int       `json:"average_bits"`
}

// NewConfig returns a Config with default sizes and a freshly generated
// random polynomial.
func NewConfig() (Config, error) {
	return Config{}.Complete()
}

// Complete fills zero fields with defaults and generates a polynomial
// if none is set. The receiver is not modified.
func (c Config) Complete() (Config, error) {
	if c.MinSize == 0 {
		c.MinSize = DefaultMinSize
	}
	if c.MaxSize == 0 {
		c.MaxSize = DefaultMaxSize
	}
	if c.AverageBits == 0 {
		c.AverageBits = DefaultAverageBits
	}
	if c.MinSize > c.MaxSize {
		return c, fmt.Errorf("chunker: min size %d exceeds max size %d", c.MinSize, c.MaxSize)
	}
	if c.Polynomial == 0 {
		pol, err := rabin.RandomPolynomial()
		if err != nil {
			return c, fmt.Errorf("chunker: generate polynomial: %w", err)
		}
		c.Polynomial = pol
	}
	return c, nil
}

// Split cuts data into contiguous, non-overlapping chunks whose
// concatenation in order is exactly data. Empty input yields zero
// chunks; input shorter than the minimum chunk size yields exactly one.
func Split(data []byte, cfg Config) ([][]byte, error) {
	if cfg.Polynomial == 0 {
		return nil, ErrNoPolynomial
	}
	if len(data) == 0 {
		return nil, nil
	}

	minSize, maxSize := cfg.MinSize, cfg.MaxSize
	if minSize == 0 {
		minSize = DefaultMinSize
	}
	if maxSize == 0 {
		maxSize = DefaultMaxSize
	}

	ch := rabin.NewWithBoundaries(bytes.NewReader(data), cfg.Polynomial, minSize, maxSize)
	if cfg.AverageBits != 0 {
		ch.SetAverageBits(cfg.AverageBits)
	}

	var chunks [][]byte
	buf := make([]byte, maxSize)
	for {
		c, err := ch.Next(buf)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("chunker: next chunk: %w", err)
		}
		// c.Data aliases buf; each chunk needs its own copy.
		out := make([]byte, len(c.Data))
		copy(out, c.Data)
		chunks = append(chunks, out)
	}
	return chunks, nil
}
