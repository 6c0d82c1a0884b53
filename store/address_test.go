package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumAddressDeterminism(t *testing.T) {
	data := []byte("the same bytes every time")
	assert.Equal(t, SumAddress(data), SumAddress(data))
}

func TestSumAddressDistinct(t *testing.T) {
	assert.NotEqual(t, SumAddress([]byte("a")), SumAddress([]byte("b")))
	assert.NotEqual(t, SumAddress(nil), SumAddress([]byte{0}))
}

func TestAddressString(t *testing.T) {
	s := SumAddress([]byte("payload")).String()
	assert.Len(t, s, 2*AddressSize)
	assert.Equal(t, strings.ToLower(s), s)
	assert.NotContains(t, s, chunkListSep)
}

func TestParseAddressRoundTrip(t *testing.T) {
	addr := SumAddress([]byte("payload"))
	parsed, err := ParseAddress(addr.String())
	require.NoError(t, err)
	assert.Equal(t, addr, parsed)
}

func TestParseAddressErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not hex", "zz"},
		{"too short", "abcd"},
		{"too long", strings.Repeat("ab", AddressSize+1)},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAddress(tt.input)
			assert.ErrorIs(t, err, ErrBadAddress)
		})
	}
}
