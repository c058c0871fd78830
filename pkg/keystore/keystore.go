// Package keystore manages a directory of encrypted key files, version 3 of
// the Web3 Secret Storage format, extended with BIP39 mnemonic keys.
//
// Key material is decrypted on every operation that needs it, with the
// password given by the caller, and zeroed before returning.
package keystore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-keystore/pkg/address"
	"github.com/tdex-network/tdex-keystore/pkg/wallet"
)

// Opts is the struct given to New
type Opts struct {
	// Datadir is the directory of the key files, created if missing.
	Datadir string
	// Scrypt are the KDF cost parameters for new key files, defaults to
	// DefaultScryptOptions.
	Scrypt ScryptOptions
	// Registerer, if not nil, registers the keystore metrics.
	Registerer prometheus.Registerer
}

func (o Opts) validate() error {
	if len(o.Datadir) <= 0 {
		return ErrNullDatadir
	}
	return o.Scrypt.withDefaults().validate()
}

// KeyStore indexes the key files of a directory by address. At most one key
// file per address is loaded.
//
// Every method is safe for concurrent use. Mutations and Load are
// serialized, while key decryption, which is expensive, happens outside of
// the lock.
type KeyStore struct {
	dir     string
	scrypt  ScryptOptions
	metrics *metrics

	lock      sync.RWMutex
	wallets   map[string]*Wallet
	byAddress map[address.Address]string
}

// New returns a keystore with the key files of the given directory loaded.
func New(opts Opts) (*KeyStore, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	dir, err := filepath.Abs(opts.Datadir)
	if err != nil {
		return nil, err
	}
	m, err := newMetrics(opts.Registerer)
	if err != nil {
		return nil, err
	}

	ks := &KeyStore{
		dir:       dir,
		scrypt:    opts.Scrypt.withDefaults(),
		metrics:   m,
		wallets:   make(map[string]*Wallet),
		byAddress: make(map[address.Address]string),
	}
	if err := ks.Load(); err != nil {
		return nil, err
	}
	return ks, nil
}

// Dir returns the directory of the key files.
func (ks *KeyStore) Dir() string {
	return ks.dir
}

// Load replaces the in-memory index with the key files currently found in
// the directory. Files that cannot be decoded are skipped. If more files
// share the same address, only the first one by name is loaded.
func (ks *KeyStore) Load() (err error) {
	defer func() { ks.metrics.observe(opLoad, err) }()

	ks.lock.Lock()
	defer ks.lock.Unlock()

	if err := os.MkdirAll(ks.dir, dirPerm); err != nil {
		return err
	}
	files, err := readKeyFiles(ks.dir)
	if err != nil {
		return err
	}

	wallets := make(map[string]*Wallet, len(files))
	byAddress := make(map[address.Address]string, len(files))
	for _, f := range files {
		if id, ok := byAddress[f.key.Address]; ok {
			log.WithFields(log.Fields{
				"address": f.key.Address.Hex(),
				"file":    f.name,
				"loaded":  id,
			}).Warn("skipping key file with duplicate address")
			continue
		}
		wallets[f.name] = newWallet(f.name, filepath.Join(ks.dir, f.name), f.key)
		byAddress[f.key.Address] = f.name
	}

	ks.wallets = wallets
	ks.byAddress = byAddress
	ks.metrics.setAccounts(len(wallets))

	log.WithField("count", len(wallets)).Debug("keystore loaded")
	return nil
}

// Accounts returns the primary account of every wallet, sorted by key file
// name.
func (ks *KeyStore) Accounts() []Account {
	ks.lock.RLock()
	defer ks.lock.RUnlock()

	accounts := make([]Account, 0, len(ks.wallets))
	for _, id := range ks.sortedIDs() {
		accounts = append(accounts, ks.wallets[id].PrimaryAccount())
	}
	return accounts
}

// Account returns the primary account with the given address.
func (ks *KeyStore) Account(addr address.Address) (Account, bool) {
	ks.lock.RLock()
	defer ks.lock.RUnlock()

	id, ok := ks.byAddress[addr]
	if !ok {
		return Account{}, false
	}
	return ks.wallets[id].PrimaryAccount(), true
}

func (ks *KeyStore) HasAddress(addr address.Address) bool {
	_, ok := ks.Account(addr)
	return ok
}

// Wallets returns a snapshot of the loaded wallets, sorted by key file name.
func (ks *KeyStore) Wallets() []Wallet {
	ks.lock.RLock()
	defer ks.lock.RUnlock()

	wallets := make([]Wallet, 0, len(ks.wallets))
	for _, id := range ks.sortedIDs() {
		wallets = append(wallets, ks.wallets[id].snapshot())
	}
	return wallets
}

// CreateAccount generates a new key of the given type, encrypts it with the
// password and stores it in a new key file.
func (ks *KeyStore) CreateAccount(password string, typ KeyType) (account Account, err error) {
	defer func() { ks.metrics.observe(opCreate, err) }()

	key, err := GenerateKey(typ, password, ks.scrypt)
	if err != nil {
		return Account{}, err
	}
	return ks.add(key)
}

// Import decodes a key file, decrypts it with password and stores its secret
// in a new key file encrypted with newPassword.
func (ks *KeyStore) Import(keyJSON []byte, password, newPassword string) (account Account, err error) {
	defer func() { ks.metrics.observe(opImport, err) }()

	key, err := DecodeKey(keyJSON)
	if err != nil {
		return Account{}, err
	}
	if ks.HasAddress(key.Address) {
		return Account{}, ErrAccountAlreadyExists
	}

	newKey, err := key.ReEncrypt(password, newPassword, ks.scrypt)
	if err != nil {
		return Account{}, err
	}
	return ks.add(newKey)
}

// ImportMnemonic stores the mnemonic in a new key file encrypted with
// password. The address of the new wallet is the one at index 0 of the
// derivation path template, defaults to wallet.DefaultPathTemplate.
func (ks *KeyStore) ImportMnemonic(
	mnemonic, passphrase string, derivationPath wallet.PathTemplate, password string,
) (account Account, err error) {
	defer func() { ks.metrics.observe(opImport, err) }()

	if !wallet.IsMnemonicValid(mnemonic) {
		return Account{}, ErrInvalidMnemonic
	}
	key, err := NewKeyFromMnemonic(NewMnemonicKeyOpts{
		Mnemonic:       mnemonic,
		Passphrase:     passphrase,
		DerivationPath: derivationPath,
		Password:       password,
		Scrypt:         ks.scrypt,
	})
	if err != nil {
		return Account{}, err
	}
	return ks.add(key)
}

// ImportPrivateKey stores the raw private key in a new key file encrypted
// with password.
func (ks *KeyStore) ImportPrivateKey(privateKey []byte, password string) (account Account, err error) {
	defer func() { ks.metrics.observe(opImport, err) }()

	key, err := NewKeyFromPrivateKey(NewPrivateKeyOpts{
		PrivateKey: privateKey,
		Password:   password,
		Scrypt:     ks.scrypt,
	})
	if err != nil {
		return Account{}, err
	}
	return ks.add(key)
}

// Export returns the key file of the account's wallet, encrypted with
// newPassword. Nothing is persisted.
func (ks *KeyStore) Export(account Account, password, newPassword string) (buf []byte, err error) {
	defer func() { ks.metrics.observe(opExport, err) }()

	_, key, err := ks.find(account)
	if err != nil {
		return nil, err
	}
	key, err = key.ReEncrypt(password, newPassword, ks.scrypt)
	if err != nil {
		return nil, err
	}
	return json.Marshal(key)
}

// ExportPrivateKey returns the private key of the account, the one derived
// at the account's path for HD wallets.
func (ks *KeyStore) ExportPrivateKey(account Account, password string) (buf []byte, err error) {
	defer func() { ks.metrics.observe(opExportPrivateKey, err) }()

	_, key, err := ks.find(account)
	if err != nil {
		return nil, err
	}
	return key.PrivateKey(account.DerivationPath, password)
}

// ExportMnemonic returns the mnemonic of an HD wallet. It fails with
// ErrInvalidMnemonic for raw private keys.
func (ks *KeyStore) ExportMnemonic(account Account, password string) (mnemonic string, err error) {
	defer func() { ks.metrics.observe(opExportMnemonic, err) }()

	_, key, err := ks.find(account)
	if err != nil {
		return "", err
	}
	return key.Mnemonic(password)
}

// Update re-encrypts the account's key file with newPassword, in place.
func (ks *KeyStore) Update(account Account, password, newPassword string) (err error) {
	defer func() { ks.metrics.observe(opUpdate, err) }()

	w, oldKey, err := ks.find(account)
	if err != nil {
		return err
	}

	key, err := oldKey.ReEncrypt(password, newPassword, ks.scrypt)
	if err != nil {
		return err
	}
	key.ID = oldKey.ID

	content, err := json.Marshal(key)
	if err != nil {
		return err
	}

	ks.lock.Lock()
	defer ks.lock.Unlock()

	if ks.wallets[w.ID] != w || w.key != oldKey {
		return ErrAccountNotFound
	}
	if err := writeKeyFile(w.Path, content); err != nil {
		return err
	}
	w.key = key

	log.WithField("address", key.Address.Hex()).Debug("key file updated")
	return nil
}

// Delete removes the account's key file once the password is verified
// against it.
func (ks *KeyStore) Delete(account Account, password string) (err error) {
	defer func() { ks.metrics.observe(opDelete, err) }()

	w, key, err := ks.find(account)
	if err != nil {
		return err
	}

	s, err := key.unlock(password)
	if err != nil {
		return err
	}
	s.Zero()

	ks.lock.Lock()
	defer ks.lock.Unlock()

	if ks.wallets[w.ID] != w || w.key != key {
		return ErrAccountNotFound
	}
	if err := os.Remove(w.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	delete(ks.wallets, w.ID)
	delete(ks.byAddress, key.Address)
	ks.metrics.setAccounts(len(ks.wallets))

	log.WithField("address", key.Address.Hex()).Debug("key file deleted")
	return nil
}

// SignHash signs the 32-byte hash with the private key of the account.
func (ks *KeyStore) SignHash(hash []byte, account Account, password string) ([]byte, error) {
	sigs, err := ks.SignHashes([][]byte{hash}, account, password)
	if err != nil {
		return nil, err
	}
	return sigs[0], nil
}

// SignHashes signs every hash with the private key of the account,
// decrypting the key only once.
func (ks *KeyStore) SignHashes(hashes [][]byte, account Account, password string) (sigs [][]byte, err error) {
	defer func() { ks.metrics.observe(opSign, err) }()

	_, key, err := ks.find(account)
	if err != nil {
		return nil, err
	}
	return key.SignHashes(hashes, account.DerivationPath, password)
}

// DeriveAccounts returns the accounts of the HD wallet of the given account
// at each of the given paths, in the same order. Derived accounts are cached
// in the wallet, one per path.
func (ks *KeyStore) DeriveAccounts(
	account Account, paths []wallet.DerivationPath, password string,
) (accounts []Account, err error) {
	defer func() { ks.metrics.observe(opDerive, err) }()

	w, key, err := ks.find(account)
	if err != nil {
		return nil, err
	}
	if !key.IsHD() {
		return nil, ErrNotHDKey
	}

	ks.lock.RLock()
	missing := make([]wallet.DerivationPath, 0, len(paths))
	for _, path := range paths {
		if _, ok := w.accountAt(path); !ok {
			missing = append(missing, path)
		}
	}
	ks.lock.RUnlock()

	derived := make([]Account, 0, len(missing))
	if len(missing) > 0 {
		addresses, err := key.DeriveAddresses(missing, password)
		if err != nil {
			return nil, err
		}
		for i, addr := range addresses {
			derived = append(derived, Account{
				Address:        addr,
				DerivationPath: missing[i].Clone(),
				WalletID:       w.ID,
			})
		}
	} else {
		// the password is checked even if all accounts are cached.
		s, err := key.unlock(password)
		if err != nil {
			return nil, err
		}
		s.Zero()
	}

	ks.lock.Lock()
	defer ks.lock.Unlock()

	w.addAccounts(derived)
	accounts = make([]Account, 0, len(paths))
	for _, path := range paths {
		a, _ := w.accountAt(path)
		accounts = append(accounts, copyAccount(a))
	}
	return accounts, nil
}

// ExtendedPublicKey returns the base58 extended public key at the given path
// of the HD wallet of the account.
func (ks *KeyStore) ExtendedPublicKey(
	account Account, path wallet.DerivationPath, password string,
) (xpub string, err error) {
	defer func() { ks.metrics.observe(opDerive, err) }()

	_, key, err := ks.find(account)
	if err != nil {
		return "", err
	}
	return key.ExtendedPublicKey(path, password)
}

// add persists a new key file and indexes it, unless its address is already
// known.
func (ks *KeyStore) add(key *Key) (Account, error) {
	content, err := json.Marshal(key)
	if err != nil {
		return Account{}, err
	}

	ks.lock.Lock()
	defer ks.lock.Unlock()

	if _, ok := ks.byAddress[key.Address]; ok {
		return Account{}, ErrAccountAlreadyExists
	}

	name := keyFileName(key.Address, time.Now().UTC())
	path := filepath.Join(ks.dir, name)
	if err := writeKeyFile(path, content); err != nil {
		return Account{}, err
	}

	w := newWallet(name, path, key)
	ks.wallets[name] = w
	ks.byAddress[key.Address] = name
	ks.metrics.setAccounts(len(ks.wallets))

	log.WithFields(log.Fields{
		"address": key.Address.Hex(),
		"type":    key.Type,
	}).Debug("key file created")
	return w.PrimaryAccount(), nil
}

// find returns the wallet owning the account, looked up by wallet id if
// set, by address otherwise, along with its current key.
func (ks *KeyStore) find(account Account) (*Wallet, *Key, error) {
	ks.lock.RLock()
	defer ks.lock.RUnlock()

	id := account.WalletID
	if id == "" {
		var ok bool
		if id, ok = ks.byAddress[account.Address]; !ok {
			return nil, nil, ErrAccountNotFound
		}
	}
	w, ok := ks.wallets[id]
	if !ok || !w.owns(account) {
		return nil, nil, ErrAccountNotFound
	}
	return w, w.key, nil
}

func (ks *KeyStore) sortedIDs() []string {
	ids := make([]string, 0, len(ks.wallets))
	for id := range ks.wallets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
