package keystore

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-keystore/pkg/hexutil"
	"github.com/tdex-network/tdex-keystore/pkg/wallet"
)

func TestDecodeKeyFixtures(t *testing.T) {
	tests := []struct {
		file       string
		decryptErr error
	}{
		{"key.json", nil},
		{"myetherwallet.json", nil},
		{"pbkdf2.json", ErrUnsupportedKDF},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			key, err := DecodeKey(readFixture(t, tt.file))
			require.NoError(t, err)
			assert.Equal(t, fixtureAddress, key.Address.Hex())
			assert.Equal(t, KeyTypePrivateKey, key.Type)
			assert.Equal(t, Version, key.Version)

			privateKey, err := key.Decrypt(testPassword)
			if tt.decryptErr != nil {
				assert.Equal(t, tt.decryptErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, fixturePrivateKey, hexutil.Encode(privateKey))
		})
	}
}

func TestDecodeMalformedKey(t *testing.T) {
	header := `{"cipher":"aes-128-ctr","ciphertext":"d172","cipherparams":{"iv":"83dbcc02d8ccb40e466191a123791e0e"},"kdf":"scrypt","kdfparams":{"dklen":32,"n":262144,"p":8,"r":1,"salt":"ab0c"},"mac":"2103"}`

	tests := []struct {
		name string
		json string
		err  error
	}{
		{"not json", `[1, 2]`, ErrMalformedKeyFile},
		{"missing address", `{"id":"a","version":3,"crypto":` + header + `}`, ErrMalformedKeyFile},
		{"short address", `{"address":"008aee","id":"a","version":3,"crypto":` + header + `}`, ErrMalformedKeyFile},
		{"missing id", `{"address":"008aeeda4d805471df9b2a5b0f38a0c3bcba786b","version":3,"crypto":` + header + `}`, ErrMalformedKeyFile},
		{"missing crypto", `{"address":"008aeeda4d805471df9b2a5b0f38a0c3bcba786b","id":"a","version":3}`, ErrMalformedKeyFile},
		{"version 1", `{"address":"008aeeda4d805471df9b2a5b0f38a0c3bcba786b","id":"a","version":1,"crypto":` + header + `}`, ErrUnsupportedVersion},
		{
			"invalid kdf params",
			`{"address":"008aeeda4d805471df9b2a5b0f38a0c3bcba786b","id":"a","version":3,"crypto":{"kdf":"scrypt","kdfparams":{"dklen":32,"n":3,"p":1,"r":8,"salt":"ab"}}}`,
			ErrMalformedKeyFile,
		},
		{
			"invalid derivation path",
			`{"address":"008aeeda4d805471df9b2a5b0f38a0c3bcba786b","id":"a","version":3,"type":"mnemonic","derivationPath":"m/a/b","crypto":` + header + `}`,
			ErrMalformedKeyFile,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeKey([]byte(tt.json))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestKeyJSON(t *testing.T) {
	raw := newTestPrivateKey(t, testPrivateKey, "password")
	hd := newTestMnemonicKey(t, "password")

	tests := []struct {
		name   string
		key    *Key
		fields []string
		absent []string
	}{
		{
			"raw key",
			raw,
			[]string{"address", "type", "id", "crypto", "version"},
			[]string{"derivationPath", "passphrase"},
		},
		{
			"mnemonic key",
			hd,
			[]string{"address", "type", "id", "crypto", "version", "derivationPath", "passphrase"},
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := json.Marshal(tt.key)
			require.NoError(t, err)

			var fields map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(buf, &fields))
			for _, f := range tt.fields {
				assert.Contains(t, fields, f)
			}
			for _, f := range tt.absent {
				assert.NotContains(t, fields, f)
			}
			assert.Equal(t, `"`+tt.key.Address.LowerHex()+`"`, string(fields["address"]))

			decoded, err := DecodeKey(buf)
			require.NoError(t, err)
			assert.Equal(t, tt.key, decoded)

			sig, err := decoded.SignHash(testHash, nil, "password")
			require.NoError(t, err)
			assert.Len(t, sig, 65)
		})
	}
}

func TestDecodeMnemonicKeyDefaults(t *testing.T) {
	key := newTestMnemonicKey(t, "password")
	buf, err := json.Marshal(key)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(buf, &fields))
	delete(fields, "derivationPath")
	buf, err = json.Marshal(fields)
	require.NoError(t, err)

	decoded, err := DecodeKey(buf)
	require.NoError(t, err)
	assert.Equal(t, wallet.DefaultPathTemplate, decoded.DerivationPath)
	assert.Equal(t, testPassphrase, decoded.Passphrase)

	mnemonic, err := decoded.Mnemonic("password")
	require.NoError(t, err)
	assert.Equal(t, testMnemonic, mnemonic)
}

func TestDecodeUnknownKeyType(t *testing.T) {
	buf := readFixture(t, "key.json")
	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(buf, &fields))
	fields["type"] = "ledger"
	buf, err := json.Marshal(fields)
	require.NoError(t, err)

	key, err := DecodeKey(buf)
	require.NoError(t, err)
	assert.Equal(t, KeyTypePrivateKey, key.Type)
}
