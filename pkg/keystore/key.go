package keystore

import (
	"bytes"
	"errors"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/google/uuid"
	"github.com/tdex-network/tdex-keystore/pkg/address"
	"github.com/tdex-network/tdex-keystore/pkg/crypto"
	"github.com/tdex-network/tdex-keystore/pkg/wallet"
)

// Version of the key file format.
const Version = 3

// KeyType tells what secret is encrypted in a key file.
type KeyType string

const (
	// KeyTypePrivateKey keys encrypt a raw secp256k1 private key.
	KeyTypePrivateKey KeyType = "private-key"
	// KeyTypeMnemonic keys encrypt a BIP39 mnemonic, the root of an HD wallet.
	KeyTypeMnemonic KeyType = "mnemonic"
)

func (t KeyType) validate() error {
	switch t {
	case KeyTypePrivateKey, KeyTypeMnemonic:
		return nil
	default:
		return ErrInvalidKeyType
	}
}

// Key is the in-memory form of a key file. Its Address is the one of the
// private key, or of the first account of the HD wallet for mnemonic keys.
type Key struct {
	Address address.Address
	Type    KeyType
	ID      string
	Crypto  CryptoHeader
	// Passphrase and DerivationPath are meaningful only for mnemonic keys.
	Passphrase     string
	DerivationPath wallet.PathTemplate
	Version        int
}

// NewPrivateKeyOpts is the struct given to NewKeyFromPrivateKey
type NewPrivateKeyOpts struct {
	PrivateKey []byte
	Password   string
	Scrypt     ScryptOptions
}

func (o NewPrivateKeyOpts) validate() error {
	if _, err := crypto.ToPrivateKey(o.PrivateKey); err != nil {
		return err
	}
	return o.Scrypt.validate()
}

// NewKeyFromPrivateKey encrypts a raw private key with the given password.
func NewKeyFromPrivateKey(opts NewPrivateKeyOpts) (*Key, error) {
	opts.Scrypt = opts.Scrypt.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	privateKey, _ := crypto.ToPrivateKey(opts.PrivateKey)
	defer crypto.ZeroKey(privateKey)

	header, err := EncryptData(EncryptOpts{
		PlainText: opts.PrivateKey,
		Password:  opts.Password,
		Scrypt:    opts.Scrypt,
	})
	if err != nil {
		return nil, err
	}

	return &Key{
		Address: address.FromPublicKey(crypto.FromPublicKey(privateKey.PubKey())),
		Type:    KeyTypePrivateKey,
		ID:      uuid.NewString(),
		Crypto:  *header,
		Version: Version,
	}, nil
}

// NewMnemonicKeyOpts is the struct given to NewKeyFromMnemonic
type NewMnemonicKeyOpts struct {
	Mnemonic       string
	Passphrase     string
	DerivationPath wallet.PathTemplate
	Password       string
	Scrypt         ScryptOptions
}

func (o NewMnemonicKeyOpts) validate() error {
	if !wallet.IsMnemonicValid(o.Mnemonic) {
		return ErrInvalidMnemonic
	}
	if err := o.DerivationPath.Validate(); err != nil {
		return err
	}
	return o.Scrypt.validate()
}

// NewKeyFromMnemonic encrypts a mnemonic with the given password. The address
// of the key is the one found at index 0 of the derivation path template.
func NewKeyFromMnemonic(opts NewMnemonicKeyOpts) (*Key, error) {
	opts.Scrypt = opts.Scrypt.withDefaults()
	if opts.DerivationPath == "" {
		opts.DerivationPath = wallet.DefaultPathTemplate
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	mnemonic := strings.Join(strings.Fields(opts.Mnemonic), " ")
	hdWallet, err := wallet.NewHDWalletFromMnemonic(mnemonic, opts.Passphrase)
	if err != nil {
		return nil, err
	}
	defer hdWallet.Zero()

	path, _ := opts.DerivationPath.At(0)
	hdKey, err := hdWallet.KeyAt(path)
	if err != nil {
		return nil, err
	}
	defer hdKey.Zero()

	header, err := EncryptData(EncryptOpts{
		PlainText: []byte(mnemonic),
		Password:  opts.Password,
		Scrypt:    opts.Scrypt,
	})
	if err != nil {
		return nil, err
	}

	return &Key{
		Address:        hdKey.Address,
		Type:           KeyTypeMnemonic,
		ID:             uuid.NewString(),
		Crypto:         *header,
		Passphrase:     opts.Passphrase,
		DerivationPath: opts.DerivationPath,
		Version:        Version,
	}, nil
}

// GenerateKey creates a key of the given type out of fresh random material:
// a new private key, or a new 24 words mnemonic.
func GenerateKey(typ KeyType, password string, scryptOpts ScryptOptions) (*Key, error) {
	if err := typ.validate(); err != nil {
		return nil, err
	}

	if typ == KeyTypeMnemonic {
		mnemonic, err := wallet.NewMnemonic(wallet.NewMnemonicOpts{
			EntropySize: wallet.DefaultEntropySize,
		})
		if err != nil {
			return nil, err
		}
		return NewKeyFromMnemonic(NewMnemonicKeyOpts{
			Mnemonic: mnemonic,
			Password: password,
			Scrypt:   scryptOpts,
		})
	}

	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	defer crypto.ZeroKey(privateKey)

	buf := crypto.FromPrivateKey(privateKey)
	defer crypto.ZeroBytes(buf)

	return NewKeyFromPrivateKey(NewPrivateKeyOpts{
		PrivateKey: buf,
		Password:   password,
		Scrypt:     scryptOpts,
	})
}

// IsHD returns whether the key encrypts a mnemonic.
func (k *Key) IsHD() bool {
	return k.Type == KeyTypeMnemonic
}

// PrimaryPath returns the path of the account whose address is the one of
// the key, nil for raw private keys.
func (k *Key) PrimaryPath() wallet.DerivationPath {
	if !k.IsHD() {
		return nil
	}
	path, err := k.pathTemplate().At(0)
	if err != nil {
		return nil
	}
	return path
}

// Decrypt returns the decrypted secret, either the private key or the
// mnemonic bytes. The caller is in charge of zeroing the returned buffer.
func (k *Key) Decrypt(password string) ([]byte, error) {
	s, err := k.unlock(password)
	if err != nil {
		return nil, err
	}
	defer s.Zero()

	return append([]byte{}, s.data...), nil
}

// SignHash signs a 32-byte hash with the private key of the account at the
// given path. Raw private keys ignore the path, HD keys use the primary path
// if none is given.
func (k *Key) SignHash(hash []byte, path wallet.DerivationPath, password string) ([]byte, error) {
	sigs, err := k.SignHashes([][]byte{hash}, path, password)
	if err != nil {
		return nil, err
	}
	return sigs[0], nil
}

// SignHashes decrypts the key once and signs every hash.
func (k *Key) SignHashes(hashes [][]byte, path wallet.DerivationPath, password string) ([][]byte, error) {
	for _, hash := range hashes {
		if len(hash) != crypto.HashLength {
			return nil, ErrInvalidHashLength
		}
	}

	s, err := k.unlock(password)
	if err != nil {
		return nil, err
	}
	defer s.Zero()

	privateKey, err := s.privateKey(path)
	if err != nil {
		return nil, err
	}
	defer crypto.ZeroKey(privateKey)

	sigs := make([][]byte, 0, len(hashes))
	for _, hash := range hashes {
		sig, err := crypto.Sign(hash, privateKey)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

// PrivateKey returns the serialized private key of the account at the given
// path. The caller is in charge of zeroing the returned buffer.
func (k *Key) PrivateKey(path wallet.DerivationPath, password string) ([]byte, error) {
	s, err := k.unlock(password)
	if err != nil {
		return nil, err
	}
	defer s.Zero()

	privateKey, err := s.privateKey(path)
	if err != nil {
		return nil, err
	}
	defer crypto.ZeroKey(privateKey)

	return crypto.FromPrivateKey(privateKey), nil
}

// Mnemonic returns the mnemonic of an HD key.
func (k *Key) Mnemonic(password string) (string, error) {
	if !k.IsHD() {
		return "", ErrInvalidMnemonic
	}
	s, err := k.unlock(password)
	if err != nil {
		return "", err
	}
	defer s.Zero()

	return string(trimMnemonic(s.data)), nil
}

// DeriveAddresses returns the address at each of the given paths of an HD
// key.
func (k *Key) DeriveAddresses(paths []wallet.DerivationPath, password string) ([]address.Address, error) {
	if !k.IsHD() {
		return nil, ErrNotHDKey
	}
	s, err := k.unlock(password)
	if err != nil {
		return nil, err
	}
	defer s.Zero()

	addresses := make([]address.Address, 0, len(paths))
	for _, path := range paths {
		hdKey, err := s.hd.KeyAt(path)
		if err != nil {
			return nil, err
		}
		hdKey.Zero()
		addresses = append(addresses, hdKey.Address)
	}
	return addresses, nil
}

// ExtendedPublicKey returns the base58 extended public key at the given path
// of an HD key.
func (k *Key) ExtendedPublicKey(path wallet.DerivationPath, password string) (string, error) {
	if !k.IsHD() {
		return "", ErrNotHDKey
	}
	s, err := k.unlock(password)
	if err != nil {
		return "", err
	}
	defer s.Zero()

	return s.hd.ExtendedPublicKey(path)
}

// ReEncrypt returns a new key with a new id holding the same secret,
// encrypted under newPassword with fresh salt and IV.
func (k *Key) ReEncrypt(password, newPassword string, scryptOpts ScryptOptions) (*Key, error) {
	s, err := k.unlock(password)
	if err != nil {
		return nil, err
	}
	defer s.Zero()

	header, err := EncryptData(EncryptOpts{
		PlainText: s.data,
		Password:  newPassword,
		Scrypt:    scryptOpts.withDefaults(),
	})
	if err != nil {
		return nil, err
	}

	return &Key{
		Address:        k.Address,
		Type:           k.Type,
		ID:             uuid.NewString(),
		Crypto:         *header,
		Passphrase:     k.Passphrase,
		DerivationPath: k.DerivationPath,
		Version:        Version,
	}, nil
}

func (k *Key) pathTemplate() wallet.PathTemplate {
	if k.DerivationPath == "" {
		return wallet.DefaultPathTemplate
	}
	return k.DerivationPath
}

// unlock decrypts the key and makes sure the secret matches the address.
// The returned secret must be zeroed by the caller.
func (k *Key) unlock(password string) (*secret, error) {
	data, err := k.Crypto.Decrypt(password)
	if err != nil {
		return nil, err
	}
	s := &secret{data: data}

	if err := s.load(k); err != nil {
		s.Zero()
		return nil, err
	}
	return s, nil
}

// secret holds decrypted key material until Zero is called.
type secret struct {
	data []byte
	// primary is the key whose address is the one of the key file.
	primary *btcec.PrivateKey
	hd      *wallet.HDWallet
}

func (s *secret) load(k *Key) error {
	var addr address.Address

	if k.IsHD() {
		mnemonic := trimMnemonic(s.data)
		hdWallet, err := wallet.NewHDWalletFromMnemonic(string(mnemonic), k.Passphrase)
		if err != nil {
			if errors.Is(err, wallet.ErrInvalidMnemonic) || errors.Is(err, wallet.ErrNullMnemonic) {
				return ErrInvalidMnemonic
			}
			return err
		}
		s.hd = hdWallet

		path, err := k.pathTemplate().At(0)
		if err != nil {
			return err
		}
		hdKey, err := hdWallet.KeyAt(path)
		if err != nil {
			return err
		}
		s.primary = hdKey.PrivateKey
		addr = hdKey.Address
	} else {
		privateKey, err := crypto.ToPrivateKey(s.data)
		if err != nil {
			return err
		}
		s.primary = privateKey
		addr = address.FromPublicKey(crypto.FromPublicKey(privateKey.PubKey()))
	}

	if addr != k.Address {
		return ErrAddressMismatch
	}
	return nil
}

// privateKey returns a copy of the private key at path, or the primary one
// if path is nil or the secret is a raw key.
func (s *secret) privateKey(path wallet.DerivationPath) (*btcec.PrivateKey, error) {
	if s.hd == nil || path == nil {
		buf := s.primary.Serialize()
		defer crypto.ZeroBytes(buf)
		key, _ := btcec.PrivKeyFromBytes(buf)
		return key, nil
	}
	hdKey, err := s.hd.KeyAt(path)
	if err != nil {
		return nil, err
	}
	return hdKey.PrivateKey, nil
}

func (s *secret) Zero() {
	crypto.ZeroBytes(s.data)
	crypto.ZeroKey(s.primary)
	if s.hd != nil {
		s.hd.Zero()
	}
}

// trimMnemonic strips the single trailing NUL byte some encoders append to
// the mnemonic.
func trimMnemonic(data []byte) []byte {
	return bytes.TrimSuffix(data, []byte{0})
}

func (o ScryptOptions) withDefaults() ScryptOptions {
	if o == (ScryptOptions{}) {
		return DefaultScryptOptions
	}
	return o
}
