package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"

	"github.com/tdex-network/tdex-keystore/pkg/crypto"
	"github.com/tdex-network/tdex-keystore/pkg/hexutil"
)

const (
	// CipherAES128CTR is used for every new key.
	CipherAES128CTR = "aes-128-ctr"
	// CipherAES128CBC can only be decrypted.
	CipherAES128CBC = "aes-128-cbc"
	// KDFScrypt is the only supported key derivation function.
	KDFScrypt = "scrypt"

	encryptionKeyLength = 16
	macKeyLength        = 16
)

// CipherParams holds the initialization vector of the AES cipher of a key
// file.
type CipherParams struct {
	IV hexutil.Bytes `json:"iv"`
}

// CryptoHeader is the encrypted payload of a key file, along with the
// parameters needed to decrypt it.
type CryptoHeader struct {
	CipherText   hexutil.Bytes `json:"ciphertext"`
	Cipher       string        `json:"cipher"`
	CipherParams CipherParams  `json:"cipherparams"`
	KDF          string        `json:"kdf"`
	KDFParams    ScryptParams  `json:"kdfparams"`
	MAC          hexutil.Bytes `json:"mac"`

	// kdfparams of an unsupported kdf, kept as they are.
	rawKDFParams json.RawMessage
}

// EncryptOpts is the struct given to EncryptData
type EncryptOpts struct {
	PlainText []byte
	Password  string
	Scrypt    ScryptOptions
}

func (o EncryptOpts) validate() error {
	if len(o.PlainText) <= 0 {
		return ErrNullPlainText
	}
	return o.Scrypt.validate()
}

// EncryptData encrypts the plaintext with AES-128-CTR under a key derived
// from the password with fresh salt and IV.
func EncryptData(opts EncryptOpts) (*CryptoHeader, error) {
	opts.Scrypt = opts.Scrypt.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	params, err := opts.Scrypt.newParams()
	if err != nil {
		return nil, err
	}
	derivedKey, err := params.DeriveKey([]byte(opts.Password))
	if err != nil {
		return nil, err
	}
	defer crypto.ZeroBytes(derivedKey)

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}

	cipherText, mac, err := Encrypt(opts.PlainText, derivedKey, iv, CipherAES128CTR)
	if err != nil {
		return nil, err
	}

	return &CryptoHeader{
		CipherText:   cipherText,
		Cipher:       CipherAES128CTR,
		CipherParams: CipherParams{IV: iv},
		KDF:          KDFScrypt,
		KDFParams:    params,
		MAC:          mac,
	}, nil
}

// Encrypt encrypts plaintext with the first 16 bytes of derivedKey and
// returns the ciphertext together with its MAC.
func Encrypt(plaintext, derivedKey, iv []byte, cipherName string) ([]byte, []byte, error) {
	if len(derivedKey) < encryptionKeyLength+macKeyLength || len(iv) != aes.BlockSize {
		return nil, nil, ErrInvalidCipherParams
	}

	var (
		cipherText []byte
		err        error
	)
	switch cipherName {
	case CipherAES128CTR:
		cipherText, err = aesCTRXOR(derivedKey[:encryptionKeyLength], iv, plaintext)
	case CipherAES128CBC:
		cipherText, err = aesCBCEncrypt(derivedKey[:encryptionKeyLength], iv, plaintext)
	default:
		return nil, nil, ErrUnsupportedCipher
	}
	if err != nil {
		return nil, nil, err
	}

	return cipherText, computeMAC(derivedKey, cipherText), nil
}

// Decrypt returns the plaintext of the header. A MAC mismatch is always
// reported as ErrInvalidPassword and the cipher is never run in that case.
func (h *CryptoHeader) Decrypt(password string) ([]byte, error) {
	if h.KDF != KDFScrypt {
		return nil, ErrUnsupportedKDF
	}

	derivedKey, err := h.KDFParams.DeriveKey([]byte(password))
	if err != nil {
		return nil, err
	}
	defer crypto.ZeroBytes(derivedKey)

	mac := computeMAC(derivedKey, h.CipherText)
	if subtle.ConstantTimeCompare(mac, h.MAC) != 1 {
		return nil, ErrInvalidPassword
	}

	if len(h.CipherParams.IV) != aes.BlockSize {
		return nil, ErrInvalidCipherParams
	}
	key := derivedKey[:encryptionKeyLength]
	switch h.Cipher {
	case CipherAES128CTR:
		return aesCTRXOR(key, h.CipherParams.IV, h.CipherText)
	case CipherAES128CBC:
		return aesCBCDecrypt(key, h.CipherParams.IV, h.CipherText)
	default:
		return nil, ErrUnsupportedCipher
	}
}

func (h CryptoHeader) MarshalJSON() ([]byte, error) {
	type header CryptoHeader
	if h.KDF == KDFScrypt || h.rawKDFParams == nil {
		return json.Marshal(header(h))
	}

	return json.Marshal(struct {
		header
		KDFParams json.RawMessage `json:"kdfparams"`
	}{header(h), h.rawKDFParams})
}

func (h *CryptoHeader) UnmarshalJSON(data []byte) error {
	type header CryptoHeader
	var decoded struct {
		header
		KDFParams json.RawMessage `json:"kdfparams"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	*h = CryptoHeader(decoded.header)
	if decoded.KDF != KDFScrypt {
		h.rawKDFParams = decoded.KDFParams
		return nil
	}
	return json.Unmarshal(decoded.KDFParams, &h.KDFParams)
}

// computeMAC returns keccak256(derivedKey[16:32] || cipherText).
func computeMAC(derivedKey, cipherText []byte) []byte {
	return crypto.Keccak256(
		derivedKey[len(derivedKey)-macKeyLength:], cipherText,
	)
}

func aesCTRXOR(key, iv, in []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(in))
	cipher.NewCTR(block, iv).XORKeyStream(out, in)
	return out, nil
}

func aesCBCEncrypt(key, iv, in []byte) ([]byte, error) {
	if len(in)%aes.BlockSize != 0 {
		return nil, ErrInvalidCipherParams
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(in))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, in)
	return out, nil
}

func aesCBCDecrypt(key, iv, in []byte) ([]byte, error) {
	if len(in)%aes.BlockSize != 0 {
		return nil, ErrInvalidCipherParams
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(in))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, in)
	return out, nil
}
