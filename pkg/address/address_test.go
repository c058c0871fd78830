package address

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-keystore/pkg/crypto"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		input  string
		output string
	}{
		{"5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"},
		{"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359", "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"},
		{"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB", "0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB"},
		{"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb", "0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb"},
		{"008aeeda4d805471df9b2a5b0f38a0c3bcba786b", "0x008AeEda4D805471dF9b2A5B0f38A0C3bCBA786b"},
	}
	for _, tt := range tests {
		addr, err := Parse(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.output, addr.Hex())

		checked, err := ParseChecksummed(tt.output)
		require.NoError(t, err)
		assert.Equal(t, addr, checked)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		err   error
	}{
		{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", nil},
		{"5AAEB6053F3E94C9B9A09F33669435E7EF1BEAED", nil},
		{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1bea", ErrInvalidLength},
		{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed00", ErrInvalidLength},
		{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beae", ErrInvalidLength},
		{"0xzzaeb6053f3e94c9b9a09f33669435e7ef1beaed", ErrInvalidHex},
	}
	for _, tt := range tests {
		_, err := Parse(tt.input)
		assert.Equal(t, tt.err, err, tt.input)
	}

	_, err := ParseChecksummed("0x5AAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	assert.Equal(t, ErrInvalidChecksum, err)
}

func TestEquality(t *testing.T) {
	a := MustParse("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	b := MustParse("5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	assert.Equal(t, a, b)
	assert.True(t, a.Equal(b))

	index := map[Address]int{a: 1}
	assert.Equal(t, 1, index[b])
	assert.False(t, a.IsZero())
	assert.True(t, Address{}.IsZero())
}

func TestFromPublicKey(t *testing.T) {
	buf, _ := hex.DecodeString("7a28b5ba57c53603b0b07b56bba752f7784bf506fa95edc395f5cf6c7514fe9d")
	key, err := crypto.ToPrivateKey(buf)
	require.NoError(t, err)

	pubkey := crypto.FromPublicKey(key.PubKey())
	addr := FromPublicKey(pubkey)
	assert.Equal(t, "0x008AeEda4D805471dF9b2A5B0f38A0C3bCBA786b", addr.Hex())
	assert.Equal(t, addr, FromPublicKey(pubkey))

	assert.Panics(t, func() { FromPublicKey(pubkey[1:]) })
	assert.Panics(t, func() { FromPublicKey(key.PubKey().SerializeCompressed()) })
}

func TestJSON(t *testing.T) {
	addr := MustParse("0x008AeEda4D805471dF9b2A5B0f38A0C3bCBA786b")
	buf, err := json.Marshal(addr)
	require.NoError(t, err)
	assert.Equal(t, `"008aeeda4d805471df9b2a5b0f38a0c3bcba786b"`, string(buf))

	var decoded Address
	require.NoError(t, json.Unmarshal(buf, &decoded))
	assert.Equal(t, addr, decoded)
}
