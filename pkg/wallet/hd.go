package wallet

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tdex-network/tdex-keystore/pkg/address"
	"github.com/tdex-network/tdex-keystore/pkg/crypto"
)

// CurveSecp256k1 is the name of the only curve nodes can be derived on.
const CurveSecp256k1 = "secp256k1"

// Key is the key pair found at some path of an HD tree.
type Key struct {
	PrivateKey *btcec.PrivateKey
	PublicKey  []byte
	Address    address.Address
}

// Zero clears the private key.
func (k *Key) Zero() {
	if k != nil {
		crypto.ZeroKey(k.PrivateKey)
	}
}

// DeriveNode returns the BIP32 root node of the given seed.
func DeriveNode(seed []byte, curve string) (*hdkeychain.ExtendedKey, error) {
	if curve != CurveSecp256k1 {
		return nil, ErrUnsupportedCurve
	}
	node, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		if errors.Is(err, hdkeychain.ErrInvalidSeedLen) {
			return nil, ErrInvalidSeedLength
		}
		return nil, err
	}
	return node, nil
}

// ChildKey applies one step of private child key derivation.
func ChildKey(
	node *hdkeychain.ExtendedKey, index uint32, hardened bool,
) (*hdkeychain.ExtendedKey, error) {
	if node == nil {
		return nil, ErrNullNode
	}
	if index > MaxHardenedValue {
		return nil, ErrOutOfRangeIndex
	}
	return node.Derive(Index{index, hardened}.ChildNumber())
}

// HDWallet walks the key tree rooted at a BIP39 seed.
type HDWallet struct {
	root *hdkeychain.ExtendedKey
}

func NewHDWalletFromSeed(seed []byte) (*HDWallet, error) {
	root, err := DeriveNode(seed, CurveSecp256k1)
	if err != nil {
		return nil, err
	}
	return &HDWallet{root}, nil
}

func NewHDWalletFromMnemonic(mnemonic, passphrase string) (*HDWallet, error) {
	seed, err := NewSeed(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	defer zero(seed)

	return NewHDWalletFromSeed(seed)
}

// Node returns the extended key at the given path. The caller owns the
// returned node and should Zero it once done.
func (w *HDWallet) Node(path DerivationPath) (*hdkeychain.ExtendedKey, error) {
	if w.root == nil {
		return nil, ErrNullNode
	}

	node := w.root
	for _, step := range path.Indexes() {
		child, err := ChildKey(node, step.Value, step.Hardened)
		if node != w.root {
			node.Zero()
		}
		if err != nil {
			return nil, err
		}
		node = child
	}
	if node == w.root {
		return hdkeychain.NewKeyFromString(w.root.String())
	}
	return node, nil
}

// KeyAt derives the key pair and address at the given path.
func (w *HDWallet) KeyAt(path DerivationPath) (*Key, error) {
	node, err := w.Node(path)
	if err != nil {
		return nil, err
	}
	defer node.Zero()

	privateKey, err := node.ECPrivKey()
	if err != nil {
		return nil, err
	}
	publicKey := crypto.FromPublicKey(privateKey.PubKey())

	return &Key{
		PrivateKey: privateKey,
		PublicKey:  publicKey,
		Address:    address.FromPublicKey(publicKey),
	}, nil
}

// ExtendedPublicKey returns the base58 encoded extended public key at the
// given path.
func (w *HDWallet) ExtendedPublicKey(path DerivationPath) (string, error) {
	node, err := w.Node(path)
	if err != nil {
		return "", err
	}
	defer node.Zero()

	xpub, err := node.Neuter()
	if err != nil {
		return "", err
	}
	return xpub.String(), nil
}

// Zero clears the root node of the tree.
func (w *HDWallet) Zero() {
	if w.root != nil {
		w.root.Zero()
	}
}
