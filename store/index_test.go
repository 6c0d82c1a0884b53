package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordEncodeDecode(t *testing.T) {
	tests := []struct {
		name string
		rec  FileRecord
	}{
		{
			"empty file",
			FileRecord{Name: "empty.txt", Size: 0, Chunks: nil},
		},
		{
			"single chunk",
			FileRecord{Name: "a.txt", Size: 42, Chunks: []Address{SumAddress([]byte("x"))}},
		},
		{
			"multiple chunks keep order",
			FileRecord{
				Name: "big.bin",
				Size: 1 << 30,
				Chunks: []Address{
					SumAddress([]byte("first")),
					SumAddress([]byte("second")),
					SumAddress([]byte("third")),
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := decodeRecord(tt.rec.Name, encodeRecord(tt.rec))
			require.NoError(t, err)
			assert.Equal(t, tt.rec, decoded)
		})
	}
}

func TestRecordDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"no size separator", "42"},
		{"size not a number", "forty\n"},
		{"bad address", "1\nzz"},
		{"truncated address", "1\nabcd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeRecord("f", []byte(tt.value))
			assert.ErrorIs(t, err, ErrBadRecord)
		})
	}
}

func TestFileIndexGetMissing(t *testing.T) {
	ix := FileIndex{Tx: writeTx(t)}
	_, err := ix.Get("nope.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileIndexPutGet(t *testing.T) {
	ix := FileIndex{Tx: writeTx(t)}
	rec := FileRecord{Name: "a/b.txt", Size: 7, Chunks: []Address{SumAddress([]byte("c"))}}

	require.NoError(t, ix.Put(rec))
	got, err := ix.Get("a/b.txt")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestFileIndexPutReplaces(t *testing.T) {
	ix := FileIndex{Tx: writeTx(t)}
	name := "a.txt"

	require.NoError(t, ix.Put(FileRecord{Name: name, Size: 1, Chunks: []Address{SumAddress([]byte("old"))}}))
	replacement := FileRecord{Name: name, Size: 2, Chunks: []Address{SumAddress([]byte("new"))}}
	require.NoError(t, ix.Put(replacement))

	got, err := ix.Get(name)
	require.NoError(t, err)
	assert.Equal(t, replacement, got)

	names, err := ix.List("")
	require.NoError(t, err)
	assert.Equal(t, []string{name}, names)
}

func TestFileIndexListPrefix(t *testing.T) {
	ix := FileIndex{Tx: writeTx(t)}
	for _, name := range []string{"a/b.txt", "a/c.txt", "ab.txt", "d/e.txt"} {
		require.NoError(t, ix.Put(FileRecord{Name: name}))
	}

	tests := []struct {
		prefix string
		want   []string
	}{
		{"", []string{"a/b.txt", "a/c.txt", "ab.txt", "d/e.txt"}},
		{"a", []string{"a/b.txt", "a/c.txt"}},
		{"a/", []string{"a/b.txt", "a/c.txt"}},
		{"a/b.txt", []string{"a/b.txt"}},
		{"d", []string{"d/e.txt"}},
		{"x", nil},
	}
	for _, tt := range tests {
		t.Run("prefix="+tt.prefix, func(t *testing.T) {
			got, err := ix.List(tt.prefix)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestHasPathPrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		want   bool
	}{
		{"a/b.txt", "a", true},
		{"a/b.txt", "a/", true},
		{"a/b.txt", "a/b.txt", true},
		{"ab.txt", "a", false},
		{"a", "a/b", false},
		{"anything", "", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HasPathPrefix(tt.name, tt.prefix),
			"HasPathPrefix(%q, %q)", tt.name, tt.prefix)
	}
}
