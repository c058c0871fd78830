// Package address implements 20-byte account addresses with their EIP-55
// checksummed string form.
package address

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tdex-network/tdex-keystore/pkg/crypto"
	"github.com/tdex-network/tdex-keystore/pkg/hexutil"
)

// Length is the byte length of an address.
const Length = 20

var (
	// ErrInvalidLength ...
	ErrInvalidLength = fmt.Errorf("address must be %d bytes long", Length)
	// ErrInvalidHex ...
	ErrInvalidHex = errors.New("address must be a hex string")
	// ErrInvalidChecksum ...
	ErrInvalidChecksum = errors.New("address checksum does not match")
)

// Address is comparable and usable as map key. Equality is over raw bytes,
// the letter casing of the string form plays no role.
type Address [Length]byte

// FromPublicKey returns the address of a 65-byte uncompressed public key,
// that is the last 20 bytes of keccak256(pubkey[1:]).
// It panics if pubkey is not in uncompressed form.
func FromPublicKey(pubkey []byte) Address {
	if len(pubkey) != crypto.PublicKeyLength || pubkey[0] != 0x04 {
		panic(fmt.Sprintf("address: malformed uncompressed public key of length %d", len(pubkey)))
	}
	var addr Address
	copy(addr[:], crypto.Keccak256(pubkey[1:])[12:])
	return addr
}

func FromBytes(buf []byte) (Address, error) {
	var addr Address
	if len(buf) != Length {
		return addr, ErrInvalidLength
	}
	copy(addr[:], buf)
	return addr, nil
}

// Parse accepts a hex string with or without 0x prefix in any letter case.
func Parse(str string) (Address, error) {
	buf, err := hexutil.Decode(str)
	if err != nil {
		if errors.Is(err, hexutil.ErrOddLength) {
			return Address{}, ErrInvalidLength
		}
		return Address{}, ErrInvalidHex
	}
	return FromBytes(buf)
}

// ParseChecksummed is like Parse but, if the string is mixed case, it also
// requires the casing to match the EIP-55 checksum.
func ParseChecksummed(str string) (Address, error) {
	addr, err := Parse(str)
	if err != nil {
		return addr, err
	}
	raw := hexutil.TrimPrefix(str)
	if isMixedCase(raw) && raw != addr.checksumHex() {
		return Address{}, ErrInvalidChecksum
	}
	return addr, nil
}

func MustParse(str string) Address {
	addr, err := Parse(str)
	if err != nil {
		panic(err)
	}
	return addr
}

func (a Address) Bytes() []byte {
	return a[:]
}

// Hex returns the 0x prefixed EIP-55 checksummed form.
func (a Address) Hex() string {
	return "0x" + a.checksumHex()
}

func (a Address) String() string {
	return a.Hex()
}

// LowerHex returns the lowercase hex form without prefix, as stored in
// keyfiles and file names.
func (a Address) LowerHex() string {
	return hexutil.Encode(a[:])
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) Equal(other Address) bool {
	return bytes.Equal(a[:], other[:])
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.LowerHex()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	addr, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

func (a Address) checksumHex() string {
	lower := []byte(a.LowerHex())
	hash := crypto.Keccak256(lower)
	for i, c := range lower {
		if c < 'a' {
			continue
		}
		nibble := hash[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			lower[i] = c - 'a' + 'A'
		}
	}
	return string(lower)
}

func isMixedCase(str string) bool {
	var lower, upper bool
	for _, c := range str {
		switch {
		case 'a' <= c && c <= 'f':
			lower = true
		case 'A' <= c && c <= 'F':
			upper = true
		}
	}
	return lower && upper
}
