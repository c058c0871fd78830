package keystore

import (
	"encoding/json"
	"fmt"

	"github.com/tdex-network/tdex-keystore/pkg/address"
	"github.com/tdex-network/tdex-keystore/pkg/wallet"
)

type keyJSON struct {
	Address        string        `json:"address"`
	Type           KeyType       `json:"type,omitempty"`
	ID             string        `json:"id"`
	Crypto         *CryptoHeader `json:"crypto"`
	DerivationPath string        `json:"derivationPath,omitempty"`
	Passphrase     string        `json:"passphrase,omitempty"`
	Version        int           `json:"version"`
}

// headerDecoders are tried in order to find the encrypted payload of a key
// file. The capitalized key is found in MyEtherWallet exports.
var headerDecoders = []func(map[string]json.RawMessage) (*CryptoHeader, bool, error){
	headerAt("crypto"),
	headerAt("Crypto"),
}

func headerAt(field string) func(map[string]json.RawMessage) (*CryptoHeader, bool, error) {
	return func(fields map[string]json.RawMessage) (*CryptoHeader, bool, error) {
		raw, ok := fields[field]
		if !ok || string(raw) == "null" {
			return nil, false, nil
		}
		header := &CryptoHeader{}
		if err := json.Unmarshal(raw, header); err != nil {
			return nil, true, err
		}
		return header, true, nil
	}
}

func (k Key) MarshalJSON() ([]byte, error) {
	typ := k.Type
	if typ == "" {
		typ = KeyTypePrivateKey
	}
	header := k.Crypto
	key := keyJSON{
		Address: k.Address.LowerHex(),
		Type:    typ,
		ID:      k.ID,
		Crypto:  &header,
		Version: k.Version,
	}
	if k.IsHD() {
		key.DerivationPath = string(k.pathTemplate())
		key.Passphrase = k.Passphrase
	}
	return json.Marshal(key)
}

func (k *Key) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedKeyFile, err)
	}

	var decoded struct {
		Address        string  `json:"address"`
		Type           KeyType `json:"type"`
		ID             string  `json:"id"`
		DerivationPath string  `json:"derivationPath"`
		Passphrase     string  `json:"passphrase"`
		Version        int     `json:"version"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedKeyFile, err)
	}

	addr, err := address.Parse(decoded.Address)
	if err != nil {
		return fmt.Errorf("%w: address: %s", ErrMalformedKeyFile, err)
	}
	if decoded.ID == "" {
		return fmt.Errorf("%w: missing id", ErrMalformedKeyFile)
	}
	if decoded.Version != Version {
		return ErrUnsupportedVersion
	}

	var header *CryptoHeader
	for _, decode := range headerDecoders {
		h, found, err := decode(fields)
		if err != nil {
			return fmt.Errorf("%w: crypto: %s", ErrMalformedKeyFile, err)
		}
		if found {
			header = h
			break
		}
	}
	if header == nil {
		return fmt.Errorf("%w: missing crypto", ErrMalformedKeyFile)
	}

	key := Key{
		Address: addr,
		Type:    KeyTypePrivateKey,
		ID:      decoded.ID,
		Crypto:  *header,
		Version: decoded.Version,
	}
	// Files without type or with an unknown one predate HD keys.
	if decoded.Type == KeyTypeMnemonic {
		key.Type = KeyTypeMnemonic
		key.Passphrase = decoded.Passphrase
		key.DerivationPath = wallet.DefaultPathTemplate
		if decoded.DerivationPath != "" {
			key.DerivationPath = wallet.PathTemplate(decoded.DerivationPath)
		}
		if err := key.DerivationPath.Validate(); err != nil {
			return fmt.Errorf("%w: derivation path: %s", ErrMalformedKeyFile, err)
		}
	}

	*k = key
	return nil
}

// DecodeKey parses a key file.
func DecodeKey(data []byte) (*Key, error) {
	key := &Key{}
	if err := json.Unmarshal(data, key); err != nil {
		return nil, err
	}
	return key, nil
}
