package keystore

import (
	"errors"
)

var (
	// ErrDesiredKeyLengthTooLarge ...
	ErrDesiredKeyLengthTooLarge = errors.New("scrypt: derived key length must be at most (2^32-1)*32")
	// ErrDesiredKeyLengthTooSmall ...
	ErrDesiredKeyLengthTooSmall = errors.New("scrypt: derived key length must be at least 32")
	// ErrBlockSizeTooLarge ...
	ErrBlockSizeTooLarge = errors.New("scrypt: r*p must be lower than 2^30")
	// ErrInvalidBlockSize ...
	ErrInvalidBlockSize = errors.New("scrypt: r and p must be positive")
	// ErrInvalidCostFactor ...
	ErrInvalidCostFactor = errors.New("scrypt: n must be a power of 2 greater than 1")
	// ErrOverflow ...
	ErrOverflow = errors.New("scrypt: parameters overflow 128*r*p or 128*r*n")
	// ErrMemoryLimitExceeded ...
	ErrMemoryLimitExceeded = errors.New("scrypt: parameters require more than 4GiB of memory")

	// ErrUnsupportedKDF ...
	ErrUnsupportedKDF = errors.New("unsupported key derivation function")
	// ErrUnsupportedCipher ...
	ErrUnsupportedCipher = errors.New("unsupported cipher")
	// ErrInvalidCipherParams ...
	ErrInvalidCipherParams = errors.New("invalid cipher parameters")
	// ErrNullPlainText ...
	ErrNullPlainText = errors.New("text to encrypt must not be null")
	// ErrInvalidPassword ...
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidKeyType ...
	ErrInvalidKeyType = errors.New("key type must be either private-key or mnemonic")
	// ErrMalformedKeyFile ...
	ErrMalformedKeyFile = errors.New("malformed key file")
	// ErrUnsupportedVersion ...
	ErrUnsupportedVersion = errors.New("key file version must be 3")
	// ErrAddressMismatch ...
	ErrAddressMismatch = errors.New("decrypted key does not match the address of the key file")
	// ErrInvalidMnemonic ...
	ErrInvalidMnemonic = errors.New("invalid mnemonic")
	// ErrNotHDKey ...
	ErrNotHDKey = errors.New("operation is allowed only for mnemonic keys")
	// ErrInvalidHashLength ...
	ErrInvalidHashLength = errors.New("hash to sign must be 32 bytes long")

	// ErrAccountAlreadyExists ...
	ErrAccountAlreadyExists = errors.New("account already exists")
	// ErrAccountNotFound ...
	ErrAccountNotFound = errors.New("account not found")
	// ErrNullDatadir ...
	ErrNullDatadir = errors.New("keystore directory must not be null")
)
