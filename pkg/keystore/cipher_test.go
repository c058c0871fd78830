package keystore

import (
	"crypto/aes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-keystore/pkg/hexutil"
)

const testPassword = "testpassword"

func TestEncryptDecryptData(t *testing.T) {
	plaintext := hexutil.MustDecode("7a28b5ba57c53603b0b07b56bba752f7784bf506fa95edc395f5cf6c7514fe9d")

	header, err := EncryptData(EncryptOpts{
		PlainText: plaintext,
		Password:  testPassword,
		Scrypt:    LightScryptOptions,
	})
	require.NoError(t, err)
	assert.Equal(t, CipherAES128CTR, header.Cipher)
	assert.Equal(t, KDFScrypt, header.KDF)
	assert.Len(t, header.CipherParams.IV, aes.BlockSize)
	assert.Len(t, header.MAC, 32)
	assert.NotEqual(t, plaintext, []byte(header.CipherText))

	decrypted, err := header.Decrypt(testPassword)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)

	_, err = header.Decrypt("password")
	assert.Equal(t, ErrInvalidPassword, err)

	other, err := EncryptData(EncryptOpts{
		PlainText: plaintext,
		Password:  testPassword,
		Scrypt:    LightScryptOptions,
	})
	require.NoError(t, err)
	assert.NotEqual(t, header.KDFParams.Salt, other.KDFParams.Salt)
	assert.NotEqual(t, header.CipherParams.IV, other.CipherParams.IV)
}

func TestEncryptDataInvalidOpts(t *testing.T) {
	tests := []struct {
		name string
		opts EncryptOpts
		err  error
	}{
		{"null plaintext", EncryptOpts{Password: testPassword}, ErrNullPlainText},
		{
			"invalid scrypt",
			EncryptOpts{
				PlainText: []byte("secret"),
				Scrypt:    ScryptOptions{N: 1000, R: 8, P: 1},
			},
			ErrInvalidCostFactor,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncryptData(tt.opts)
			assert.Equal(t, tt.err, err)
		})
	}
}

func newTestHeader(t *testing.T, plaintext []byte, cipherName string) *CryptoHeader {
	params, err := LightScryptOptions.newParams()
	require.NoError(t, err)
	derivedKey, err := params.DeriveKey([]byte(testPassword))
	require.NoError(t, err)

	iv := hexutil.MustDecode("83dbcc02d8ccb40e466191a123791e0e")
	cipherText, mac, err := Encrypt(plaintext, derivedKey, iv, cipherName)
	require.NoError(t, err)

	return &CryptoHeader{
		CipherText:   cipherText,
		Cipher:       cipherName,
		CipherParams: CipherParams{IV: iv},
		KDF:          KDFScrypt,
		KDFParams:    params,
		MAC:          mac,
	}
}

func TestDecryptCBC(t *testing.T) {
	plaintext := []byte("0123456789abcdef0123456789abcdef")
	header := newTestHeader(t, plaintext, CipherAES128CBC)

	decrypted, err := header.Decrypt(testPassword)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestDecryptFailing(t *testing.T) {
	plaintext := []byte("0123456789abcdef0123456789abcdef")

	tests := []struct {
		name   string
		tamper func(h *CryptoHeader)
		err    error
	}{
		{
			"unsupported kdf",
			func(h *CryptoHeader) { h.KDF = "pbkdf2" },
			ErrUnsupportedKDF,
		},
		{
			"tampered ciphertext",
			func(h *CryptoHeader) { h.CipherText[0] ^= 0xff },
			ErrInvalidPassword,
		},
		{
			"tampered mac",
			func(h *CryptoHeader) { h.MAC[31] ^= 0x01 },
			ErrInvalidPassword,
		},
		{
			"unsupported cipher",
			func(h *CryptoHeader) { h.Cipher = "aes-256-gcm" },
			ErrUnsupportedCipher,
		},
		{
			"short iv",
			func(h *CryptoHeader) { h.CipherParams.IV = h.CipherParams.IV[:8] },
			ErrInvalidCipherParams,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := newTestHeader(t, plaintext, CipherAES128CTR)
			tt.tamper(header)

			_, err := header.Decrypt(testPassword)
			assert.Equal(t, tt.err, err)
		})
	}
}

func TestEncryptFailing(t *testing.T) {
	derivedKey := make([]byte, 32)
	iv := make([]byte, aes.BlockSize)

	_, _, err := Encrypt([]byte("secret"), derivedKey[:16], iv, CipherAES128CTR)
	assert.Equal(t, ErrInvalidCipherParams, err)

	_, _, err = Encrypt([]byte("secret"), derivedKey, iv[:4], CipherAES128CTR)
	assert.Equal(t, ErrInvalidCipherParams, err)

	_, _, err = Encrypt([]byte("secret"), derivedKey, iv, CipherAES128CBC)
	assert.Equal(t, ErrInvalidCipherParams, err)

	_, _, err = Encrypt([]byte("secret"), derivedKey, iv, "des")
	assert.Equal(t, ErrUnsupportedCipher, err)
}

func TestCryptoHeaderJSON(t *testing.T) {
	header := newTestHeader(t, []byte("secret"), CipherAES128CTR)

	buf, err := json.Marshal(header)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf, &fields))
	for _, field := range []string{"ciphertext", "cipher", "cipherparams", "kdf", "kdfparams", "mac"} {
		assert.Contains(t, fields, field)
	}

	decoded := &CryptoHeader{}
	require.NoError(t, json.Unmarshal(buf, decoded))
	assert.Equal(t, header, decoded)

	decrypted, err := decoded.Decrypt(testPassword)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), decrypted)
}

func TestCryptoHeaderJSONUnsupportedKDF(t *testing.T) {
	raw := `{
		"cipher": "aes-128-ctr",
		"ciphertext": "5318b4d5",
		"cipherparams": {"iv": "6087dab2f9fdbbfaddc31a909735c1e6"},
		"kdf": "pbkdf2",
		"kdfparams": {"c": 262144, "dklen": 32, "prf": "hmac-sha256", "salt": "ae3c"},
		"mac": "517ead92"
	}`
	header := &CryptoHeader{}
	require.NoError(t, json.Unmarshal([]byte(raw), header))

	_, err := header.Decrypt(testPassword)
	assert.Equal(t, ErrUnsupportedKDF, err)

	buf, err := json.Marshal(header)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(buf))
}
