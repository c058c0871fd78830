// Package crypto wraps the secp256k1 and keccak-256 primitives used by the
// keystore: key generation and parsing, recoverable signatures over 32-byte
// hashes and secret zeroing.
package crypto

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"golang.org/x/crypto/sha3"
)

const (
	// PrivateKeyLength is the byte length of a serialized secp256k1 scalar.
	PrivateKeyLength = 32
	// PublicKeyLength is the byte length of an uncompressed public key.
	PublicKeyLength = 65
	// SignatureLength is the byte length of a [R || S || V] signature.
	SignatureLength = 65
	// HashLength is the byte length of the digests that can be signed.
	HashLength = 32

	compactRecoveryOffset = 27
)

var (
	// ErrInvalidPrivateKey ...
	ErrInvalidPrivateKey = errors.New("invalid secp256k1 private key")
	// ErrInvalidPublicKey ...
	ErrInvalidPublicKey = errors.New("invalid secp256k1 public key")
	// ErrInvalidHashLength ...
	ErrInvalidHashLength = errors.New("hash must be 32 bytes long")
	// ErrInvalidSignature ...
	ErrInvalidSignature = errors.New("signature must be 65 bytes in [R || S || V] format")
)

// Keccak256 returns the legacy (pre-NIST) keccak-256 digest of the
// concatenation of the given buffers.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	return h.Sum(nil)
}

// GenerateKey returns a fresh random secp256k1 private key.
func GenerateKey() (*btcec.PrivateKey, error) {
	return btcec.NewPrivateKey()
}

// ToPrivateKey parses a 32-byte scalar, rejecting zero and values not lower
// than the curve order.
func ToPrivateKey(buf []byte) (*btcec.PrivateKey, error) {
	if len(buf) != PrivateKeyLength {
		return nil, ErrInvalidPrivateKey
	}
	var scalar btcec.ModNScalar
	overflow := scalar.SetByteSlice(buf)
	valid := !overflow && !scalar.IsZero()
	scalar.Zero()
	if !valid {
		return nil, ErrInvalidPrivateKey
	}
	key, _ := btcec.PrivKeyFromBytes(buf)
	return key, nil
}

// FromPrivateKey serializes the key into its 32-byte big-endian form.
func FromPrivateKey(key *btcec.PrivateKey) []byte {
	return key.Serialize()
}

// FromPublicKey returns the 65-byte uncompressed form of the public key.
func FromPublicKey(key *btcec.PublicKey) []byte {
	return key.SerializeUncompressed()
}

func ToPublicKey(buf []byte) (*btcec.PublicKey, error) {
	key, err := btcec.ParsePubKey(buf)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}
	return key, nil
}

// Sign produces a 65-byte [R || S || V] signature of the given hash, with V
// being the public key recovery id in {0, 1}.
func Sign(hash []byte, key *btcec.PrivateKey) ([]byte, error) {
	if len(hash) != HashLength {
		return nil, ErrInvalidHashLength
	}
	compact, err := ecdsa.SignCompact(key, hash, false)
	if err != nil {
		return nil, err
	}
	sig := make([]byte, SignatureLength)
	copy(sig, compact[1:])
	sig[64] = compact[0] - compactRecoveryOffset
	return sig, nil
}

// Ecrecover returns the uncompressed public key that produced the signature.
func Ecrecover(hash, sig []byte) ([]byte, error) {
	if len(hash) != HashLength {
		return nil, ErrInvalidHashLength
	}
	if len(sig) != SignatureLength || sig[64] > 3 {
		return nil, ErrInvalidSignature
	}
	compact := make([]byte, SignatureLength)
	compact[0] = sig[64] + compactRecoveryOffset
	copy(compact[1:], sig[:64])

	key, _, err := ecdsa.RecoverCompact(compact, hash)
	if err != nil {
		return nil, err
	}
	return FromPublicKey(key), nil
}

// VerifySignature checks that the [R || S] part of sig is a valid signature
// of hash for the given public key. The recovery id, if present, is ignored.
func VerifySignature(pubkey, hash, sig []byte) bool {
	if len(hash) != HashLength {
		return false
	}
	if len(sig) != SignatureLength && len(sig) != SignatureLength-1 {
		return false
	}
	key, err := ToPublicKey(pubkey)
	if err != nil {
		return false
	}

	var r, s btcec.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow || r.IsZero() {
		return false
	}
	if overflow := s.SetByteSlice(sig[32:64]); overflow || s.IsZero() {
		return false
	}
	return ecdsa.NewSignature(&r, &s).Verify(hash, key)
}

// ZeroBytes overwrites the buffer with zeros.
func ZeroBytes(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}

// ZeroKey clears the scalar of the private key.
func ZeroKey(key *btcec.PrivateKey) {
	if key != nil {
		key.Zero()
	}
}
