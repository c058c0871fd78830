package wallet

import (
	"strings"

	"github.com/vulpemventures/go-bip39"
)

const (
	// DefaultEntropySize gives a 24 words mnemonic.
	DefaultEntropySize = 256
)

type NewMnemonicOpts struct {
	EntropySize int
}

func (o NewMnemonicOpts) validate() error {
	if o.EntropySize > 0 {
		if o.EntropySize < 128 || o.EntropySize > 256 || o.EntropySize%32 != 0 {
			return ErrInvalidEntropySize
		}
	}
	if o.EntropySize < 0 {
		return ErrInvalidEntropySize
	}
	return nil
}

// NewMnemonic returns a new random BIP39 mnemonic phrase
func NewMnemonic(opts NewMnemonicOpts) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}
	if opts.EntropySize == 0 {
		opts.EntropySize = DefaultEntropySize
	}

	return generateMnemonic(opts.EntropySize)
}

// IsMnemonicValid checks words and checksum of the given phrase.
func IsMnemonicValid(mnemonic string) bool {
	if len(strings.TrimSpace(mnemonic)) <= 0 {
		return false
	}
	return bip39.IsMnemonicValid(normalizeMnemonic(mnemonic))
}

// NewSeed returns the 64-byte BIP39 seed of a valid mnemonic salted with
// the given passphrase.
func NewSeed(mnemonic, passphrase string) ([]byte, error) {
	if len(strings.TrimSpace(mnemonic)) <= 0 {
		return nil, ErrNullMnemonic
	}
	if !IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	return bip39.NewSeed(normalizeMnemonic(mnemonic), passphrase), nil
}

func generateMnemonic(entropySize int) (string, error) {
	entropy, err := bip39.NewEntropy(entropySize)
	if err != nil {
		return "", err
	}
	defer zero(entropy)

	return bip39.NewMnemonic(entropy)
}

// normalizeMnemonic collapses any run of whitespace into a single space.
func normalizeMnemonic(mnemonic string) string {
	return strings.Join(strings.Fields(mnemonic), " ")
}

func zero(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
