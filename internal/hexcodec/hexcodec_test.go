package hexcodec

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	assert.Equal(t, "", Encode(nil))
	assert.Equal(t, "48 65 6c 6c 6f 21", Encode([]byte("Hello!")))
	assert.Equal(t, "00 0a ff", Encode([]byte{0x00, 0x0a, 0xff}))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"empty", "", ""},
		{"single", "41", "A"},
		{"hello", "48 65 6c 6c 6f 21", "Hello!"},
		{"digits", "31 32 33", "123"},
		{"repeated separators", "31  32   33", "123"},
		{"leading and trailing", " 66 6f 6f ", "foo"},
		{"uppercase", "4A 6b", "Jk"},
		{"one digit", "9 a", "\t\n"},
		{"sign extended", "ffffffc3 ffffffa4", "ä"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeString(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeRejectsNonByteTokens(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		token string
		index int
	}{
		{"not hex", "41 zz", "zz", 1},
		{"too large", "100", "100", 0},
		{"sign extended ascii", "ffffff41", "ffffff41", 0},
		{"wide value", "41 42 0000ffff", "0000ffff", 2},
		{"tab inside token", "41\t42", "41\t42", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.line)
			require.Error(t, err)

			var tokErr *TokenError
			require.True(t, errors.As(err, &tokErr))
			assert.Equal(t, tt.token, tokErr.Token)
			assert.Equal(t, tt.index, tokErr.Index)
		})
	}
}

func TestDecodeTokenErrorUnwraps(t *testing.T) {
	_, err := Decode("xyz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, strconv.ErrSyntax))
}

func TestByteRoundTrip(t *testing.T) {
	for v := 0; v <= 0xff; v++ {
		in := []byte{byte(v)}
		out, err := Decode(Encode(in))
		require.NoError(t, err, "byte %#02x", v)
		assert.Equal(t, in, out, "byte %#02x", v)
	}
}

func TestRoundTripAllBytes(t *testing.T) {
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}
	out, err := Decode(Encode(all))
	require.NoError(t, err)
	assert.Equal(t, all, out)
}
