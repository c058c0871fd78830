package keystore

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math"
	"math/bits"

	"github.com/tdex-network/tdex-keystore/pkg/hexutil"
	"golang.org/x/crypto/scrypt"
)

const (
	// StandardScryptN is the N parameter of Scrypt encryption algorithm, using
	// 256MB memory and taking approximately 1s CPU time on a modern processor.
	StandardScryptN = 1 << 18
	// StandardScryptR is the R parameter of Scrypt encryption algorithm.
	StandardScryptR = 8
	// StandardScryptP is the P parameter of Scrypt encryption algorithm, using
	// 256MB memory and taking approximately 1s CPU time on a modern processor.
	StandardScryptP = 1

	// LightScryptN is the N parameter of Scrypt encryption algorithm, using 4MB
	// memory and taking approximately 100ms CPU time on a modern processor.
	LightScryptN = 1 << 12
	// LightScryptP is the P parameter of Scrypt encryption algorithm, using 4MB
	// memory and taking approximately 100ms CPU time on a modern processor.
	LightScryptP = 6

	// DefaultDerivedKeyLength is the dklen of new keys. The first half is the
	// AES-128 key, the second half salts the MAC.
	DefaultDerivedKeyLength = 32
	// DefaultSaltLength is the byte length of the random salt of new keys.
	DefaultSaltLength = 32

	maxDerivedKeyLength = (1<<32 - 1) * 32

	// MaxScryptMemory bounds the memory scrypt may allocate for a single key,
	// namely 128*r*n and 128*r*p bytes, and the dklen. Key files asking for
	// more are rejected at decode time.
	MaxScryptMemory = 1 << 32
)

var (
	// DefaultScryptOptions are used for new keys unless otherwise specified.
	DefaultScryptOptions = ScryptOptions{
		N: StandardScryptN,
		R: StandardScryptR,
		P: StandardScryptP,
	}
	// LightScryptOptions trade security for speed, useful for tests.
	LightScryptOptions = ScryptOptions{
		N: LightScryptN,
		R: StandardScryptR,
		P: LightScryptP,
	}
)

// ScryptOptions are the cost parameters used to encrypt new keys, each of
// them with a fresh random salt.
type ScryptOptions struct {
	N int
	R int
	P int
}

func (o ScryptOptions) validate() error {
	_, err := NewScryptParams(make([]byte, DefaultSaltLength), DefaultDerivedKeyLength, o.N, o.R, o.P)
	return err
}

func (o ScryptOptions) newParams() (ScryptParams, error) {
	salt := make([]byte, DefaultSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return ScryptParams{}, err
	}
	return NewScryptParams(salt, DefaultDerivedKeyLength, o.N, o.R, o.P)
}

// ScryptParams are the kdfparams of a key file. Only instances returned by
// NewScryptParams, DefaultScryptParams or json decoding are guaranteed to be
// valid.
type ScryptParams struct {
	Salt             hexutil.Bytes `json:"salt"`
	DerivedKeyLength int           `json:"dklen"`
	N                int           `json:"n"`
	P                int           `json:"p"`
	R                int           `json:"r"`
}

// NewScryptParams validates and returns the given parameters.
func NewScryptParams(salt []byte, dklen, n, r, p int) (ScryptParams, error) {
	params := ScryptParams{
		Salt:             append(hexutil.Bytes{}, salt...),
		DerivedKeyLength: dklen,
		N:                n,
		R:                r,
		P:                p,
	}
	if err := params.validate(); err != nil {
		return ScryptParams{}, err
	}
	return params, nil
}

// DefaultScryptParams returns the standard parameters with a fresh random
// salt.
func DefaultScryptParams() (ScryptParams, error) {
	return DefaultScryptOptions.newParams()
}

func (p ScryptParams) validate() error {
	if int64(p.DerivedKeyLength) > maxDerivedKeyLength {
		return ErrDesiredKeyLengthTooLarge
	}
	if p.DerivedKeyLength < DefaultDerivedKeyLength {
		return ErrDesiredKeyLengthTooSmall
	}
	if p.R < 1 || p.P < 1 {
		return ErrInvalidBlockSize
	}
	if hi, lo := bits.Mul64(uint64(p.R), uint64(p.P)); hi != 0 || lo >= 1<<30 {
		return ErrBlockSizeTooLarge
	}
	if p.N < 2 || p.N&(p.N-1) != 0 {
		return ErrInvalidCostFactor
	}
	if p.R > math.MaxInt/128/p.P || p.N > math.MaxInt/128/p.R {
		return ErrOverflow
	}
	blockSize := uint64(128 * p.R)
	if blockSize*uint64(p.N) > MaxScryptMemory ||
		blockSize*uint64(p.P) > MaxScryptMemory ||
		uint64(p.DerivedKeyLength) > MaxScryptMemory {
		return ErrMemoryLimitExceeded
	}
	return nil
}

// DeriveKey runs scrypt over the password.
func (p ScryptParams) DeriveKey(password []byte) ([]byte, error) {
	key, err := scrypt.Key(password, p.Salt, p.N, p.R, p.P, p.DerivedKeyLength)
	if err != nil {
		return nil, fmt.Errorf("scrypt: %w", err)
	}
	return key, nil
}

func (p *ScryptParams) UnmarshalJSON(data []byte) error {
	type params ScryptParams
	var decoded params
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	valid, err := NewScryptParams(
		decoded.Salt, decoded.DerivedKeyLength, decoded.N, decoded.R, decoded.P,
	)
	if err != nil {
		return err
	}
	*p = valid
	return nil
}
