// Package hexcodec implements the byte transport used by the engine's
// parameterized stdin test binary.
//
// Each byte is written as two lowercase hex digits and bytes are separated by
// a single space:
//
//	"Hi!" -> "48 69 21"
//
// The binary formats a signed char, so bytes at or above 0x80 may arrive
// sign-extended to eight digits ("ffffffc3"). Decode accepts that form and
// maps it back to the low byte.
package hexcodec

import (
	"fmt"
	"strconv"
	"strings"
)

// signExtension is the prefix the test binary emits for bytes >= 0x80.
const signExtension = "ffffff"

// TokenError reports a token that does not encode a single byte.
type TokenError struct {
	Index int    // zero-based position among non-empty tokens
	Token string // the offending token
	Err   error  // underlying parse error, if any
}

func (e *TokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hex token %d %q: %v", e.Index, e.Token, e.Err)
	}
	return fmt.Sprintf("hex token %d %q: not a single byte", e.Index, e.Token)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// Encode renders data as space separated two-digit hex tokens.
func Encode(data []byte) string {
	var b strings.Builder
	b.Grow(len(data) * 3)
	for i, c := range data {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02x", c)
	}
	return b.String()
}

// Decode parses a line of hex tokens back into bytes.
// Empty tokens produced by repeated separators are skipped.
func Decode(line string) ([]byte, error) {
	fields := strings.Split(line, " ")
	out := make([]byte, 0, len(fields))
	idx := 0
	for _, tok := range fields {
		if tok == "" {
			continue
		}
		c, err := decodeToken(tok)
		if err != nil {
			return nil, &TokenError{Index: idx, Token: tok, Err: err}
		}
		out = append(out, c)
		idx++
	}
	return out, nil
}

// DecodeString is Decode returning a string.
func DecodeString(line string) (string, error) {
	b, err := Decode(line)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeToken(tok string) (byte, error) {
	if len(tok) == 8 && strings.HasPrefix(strings.ToLower(tok), signExtension) {
		v, err := strconv.ParseUint(tok[len(signExtension):], 16, 8)
		if err != nil {
			return 0, err
		}
		if v < 0x80 {
			return 0, fmt.Errorf("sign-extended token for non-negative byte %#02x", v)
		}
		return byte(v), nil
	}
	v, err := strconv.ParseUint(tok, 16, 8)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}
