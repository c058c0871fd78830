package keystore

import (
	"github.com/tdex-network/tdex-keystore/pkg/address"
	"github.com/tdex-network/tdex-keystore/pkg/wallet"
)

// Account is an address controlled by one of the wallets of the keystore.
// It holds no key material and no reference to its wallet other than the
// wallet id.
type Account struct {
	Address address.Address
	// DerivationPath is nil for raw private keys.
	DerivationPath wallet.DerivationPath
	WalletID       string
}

func (a Account) IsHD() bool {
	return a.DerivationPath != nil
}

// Wallet is a key file of the keystore along with the accounts derived from
// it. Raw private keys have exactly one account, HD keys have one for each
// derivation path they were asked about, deduplicated by path.
type Wallet struct {
	// ID is the name of the key file.
	ID string
	// Path is the location of the key file.
	Path string

	key      *Key
	accounts []Account
}

func newWallet(id, path string, key *Key) *Wallet {
	w := &Wallet{ID: id, Path: path, key: key}
	w.accounts = []Account{{
		Address:        key.Address,
		DerivationPath: key.PrimaryPath(),
		WalletID:       id,
	}}
	return w
}

func (w *Wallet) Type() KeyType {
	return w.key.Type
}

// Address is the address of the primary account.
func (w *Wallet) Address() address.Address {
	return w.key.Address
}

// PrimaryAccount returns the account whose address is the one of the key
// file.
func (w *Wallet) PrimaryAccount() Account {
	return copyAccount(w.accounts[0])
}

// Accounts returns the known accounts of the wallet, primary first.
func (w *Wallet) Accounts() []Account {
	accounts := make([]Account, 0, len(w.accounts))
	for _, a := range w.accounts {
		accounts = append(accounts, copyAccount(a))
	}
	return accounts
}

func (w *Wallet) accountAt(path wallet.DerivationPath) (Account, bool) {
	for _, a := range w.accounts {
		if a.DerivationPath.Equal(path) {
			return a, true
		}
	}
	return Account{}, false
}

func (w *Wallet) owns(account Account) bool {
	if account.DerivationPath == nil {
		return account.Address == w.key.Address
	}
	a, ok := w.accountAt(account.DerivationPath)
	return ok && a.Address == account.Address
}

// addAccounts caches the derived accounts, skipping paths already known.
func (w *Wallet) addAccounts(accounts []Account) {
	for _, a := range accounts {
		if _, ok := w.accountAt(a.DerivationPath); !ok {
			w.accounts = append(w.accounts, copyAccount(a))
		}
	}
}

func (w *Wallet) snapshot() Wallet {
	return Wallet{
		ID:       w.ID,
		Path:     w.Path,
		key:      w.key,
		accounts: w.Accounts(),
	}
}

func copyAccount(a Account) Account {
	a.DerivationPath = a.DerivationPath.Clone()
	return a
}
