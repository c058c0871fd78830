package wallet

import (
	"errors"
	"fmt"
)

var (
	// ErrNullDerivationPath ...
	ErrNullDerivationPath = errors.New("derivation path must not be null")
	// ErrMalformedDerivationPath ...
	ErrMalformedDerivationPath = errors.New("derivation path is malformed")
	// ErrInvalidDerivationPath ...
	ErrInvalidDerivationPath = errors.New("invalid derivation path")
	// ErrOutOfRangeIndex ...
	ErrOutOfRangeIndex = fmt.Errorf(
		"derivation index must be in range [0, %d]", MaxHardenedValue,
	)
	// ErrMissingPlaceholder ...
	ErrMissingPlaceholder = errors.New(
		"derivation path template must contain the account index placeholder 'x'",
	)

	// ErrInvalidEntropySize ...
	ErrInvalidEntropySize = errors.New(
		"entropy size must be a multiple of 32 in the range [128,256]",
	)
	// ErrNullMnemonic ...
	ErrNullMnemonic = errors.New("mnemonic must not be null")
	// ErrInvalidMnemonic ...
	ErrInvalidMnemonic = errors.New("mnemonic is invalid")

	// ErrUnsupportedCurve ...
	ErrUnsupportedCurve = errors.New("only secp256k1 curve is supported")
	// ErrInvalidSeedLength ...
	ErrInvalidSeedLength = errors.New("seed length must be in range [16, 64] bytes")
	// ErrNullNode ...
	ErrNullNode = errors.New("hd node must not be null")
)
