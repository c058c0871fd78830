// Package hexutil converts byte slices to and from the hex strings used by
// keyfiles and addresses.
package hexutil

import (
	"encoding/hex"
	"errors"
	"strings"
)

var (
	// ErrOddLength ...
	ErrOddLength = errors.New("hex string has odd length")
	// ErrInvalidHex ...
	ErrInvalidHex = errors.New("hex string contains non-hex characters")
)

// Bytes marshals to a lowercase hex string without 0x prefix and unmarshals
// from hex with or without the prefix.
type Bytes []byte

func Encode(buf []byte) string {
	return hex.EncodeToString(buf)
}

func EncodeWithPrefix(buf []byte) string {
	return "0x" + hex.EncodeToString(buf)
}

func Decode(str string) ([]byte, error) {
	str = TrimPrefix(str)
	if len(str)%2 != 0 {
		return nil, ErrOddLength
	}
	buf, err := hex.DecodeString(str)
	if err != nil {
		return nil, ErrInvalidHex
	}
	return buf, nil
}

func MustDecode(str string) []byte {
	buf, err := Decode(str)
	if err != nil {
		panic(err)
	}
	return buf
}

func HasPrefix(str string) bool {
	return len(str) >= 2 && str[0] == '0' && (str[1] == 'x' || str[1] == 'X')
}

func TrimPrefix(str string) string {
	if HasPrefix(str) {
		return str[2:]
	}
	return str
}

func IsHex(str string) bool {
	str = TrimPrefix(str)
	if len(str)%2 != 0 {
		return false
	}
	return strings.IndexFunc(str, func(r rune) bool {
		return !('0' <= r && r <= '9' || 'a' <= r && r <= 'f' || 'A' <= r && r <= 'F')
	}) < 0
}

func (b Bytes) String() string {
	return Encode(b)
}

func (b Bytes) MarshalText() ([]byte, error) {
	return []byte(Encode(b)), nil
}

func (b *Bytes) UnmarshalText(text []byte) error {
	buf, err := Decode(string(text))
	if err != nil {
		return err
	}
	*b = buf
	return nil
}
