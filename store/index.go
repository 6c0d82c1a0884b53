package store

import (
	"fmt"
	"strconv"
	"strings"
)

// FileRecord describes one archived file: its archive-relative name,
// total byte length, and the ordered list of chunk addresses whose
// concatenation reproduces the content exactly. Size is derived from
// the archived bytes, never supplied independently.
type FileRecord struct {
	Name   string
	Size   int64
	Chunks []Address
}

// chunkListSep joins hex addresses in the persisted record value. Hex
// encoding can never contain it. This is an internal format, not a
// stable wire format.
const chunkListSep = ";"

// encodeRecord serializes a record value as the decimal size, a
// newline, and the delimiter-joined hex address list.
func encodeRecord(r FileRecord) []byte {
	addrs := make([]string, len(r.Chunks))
	for i, a := range r.Chunks {
		addrs[i] = a.String()
	}
	return []byte(strconv.FormatInt(r.Size, 10) + "\n" + strings.Join(addrs, chunkListSep))
}

// decodeRecord parses a persisted record value.
func decodeRecord(name string, value []byte) (FileRecord, error) {
	sizePart, listPart, found := strings.Cut(string(value), "\n")
	if !found {
		return FileRecord{}, fmt.Errorf("%w: %q has no size field", ErrBadRecord, name)
	}
	size, err := strconv.ParseInt(sizePart, 10, 64)
	if err != nil {
		return FileRecord{}, fmt.Errorf("%w: %q size: %v", ErrBadRecord, name, err)
	}

	rec := FileRecord{Name: name, Size: size}
	if listPart == "" {
		return rec, nil
	}
	for _, s := range strings.Split(listPart, chunkListSep) {
		addr, err := ParseAddress(s)
		if err != nil {
			return FileRecord{}, fmt.Errorf("%w: %q chunk list: %v", ErrBadRecord, name, err)
		}
		rec.Chunks = append(rec.Chunks, addr)
	}
	return rec, nil
}

// FileIndex maps archived names to their records, bound to one
// transaction.
type FileIndex struct {
	Tx Tx
}

// Get returns the record for name, or ErrNotFound.
func (ix FileIndex) Get(name string) (FileRecord, error) {
	value, ok, err := ix.Tx.GetFile(name)
	if err != nil {
		return FileRecord{}, err
	}
	if !ok {
		return FileRecord{}, fmt.Errorf("%w: file %q", ErrNotFound, name)
	}
	return decodeRecord(name, value)
}

// Put inserts or replaces the record for r.Name. Last write wins; no
// prior version is retained.
func (ix FileIndex) Put(r FileRecord) error {
	return ix.Tx.PutFile(r.Name, encodeRecord(r))
}

// List returns every archived name, restricted to those sharing prefix
// as a path prefix when prefix is non-empty. Order is unspecified.
func (ix FileIndex) List(prefix string) ([]string, error) {
	names, err := ix.Tx.FileNames()
	if err != nil {
		return nil, err
	}
	if prefix == "" {
		return names, nil
	}
	matched := names[:0]
	for _, name := range names {
		if HasPathPrefix(name, prefix) {
			matched = append(matched, name)
		}
	}
	return matched, nil
}

// HasPathPrefix reports whether name equals prefix or lies beneath it
// as a path. Matching is segment-aware: "a" covers "a/b.txt" but not
// "ab.txt".
func HasPathPrefix(name, prefix string) bool {
	if prefix == "" || name == prefix {
		return true
	}
	return strings.HasPrefix(name, strings.TrimSuffix(prefix, "/")+"/")
}
