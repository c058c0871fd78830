package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	password   = "hodlhodlhodl"
	mnemonic   = "ripple scissors kick mammal hire column oak again sun offer wealth tomorrow wagon turn fatal"
	passphrase = "TREZOR"
	hdAddress  = "0x27Ef5cDBe01777D62438AfFeb695e33fC2335979"
	privateKey = "9cdb5cab19aec3bd0fcd614c5f185e7a1d97634d4225730eba22497dc89a716c"
	hash       = "3f891fda3704f0368dab65fa81ebe616f4aa2a0854995da4dc0b59d2cadbd64f"
)

func setupEnv(t *testing.T) string {
	datadir := t.TempDir()
	t.Setenv("KEYSTORE_DATADIR", datadir)
	t.Setenv("KEYSTORE_SCRYPT_N", "4096")
	t.Setenv("KEYSTORE_SCRYPT_P", "6")
	return datadir
}

func runCLICommand(args ...string) (string, error) {
	out := &bytes.Buffer{}
	app := newApp()
	app.Writer = out
	app.ErrWriter = out
	err := app.Run(append([]string{"keystore"}, args...))
	return strings.TrimSpace(out.String()), err
}

func TestHDWalletCommands(t *testing.T) {
	setupEnv(t)

	addr, err := runCLICommand(
		"import-mnemonic", "--mnemonic", mnemonic, "--passphrase", passphrase, "--password", password,
	)
	require.NoError(t, err)
	require.Equal(t, hdAddress, addr)

	t.Run("derive", func(t *testing.T) {
		out, err := runCLICommand("derive", "--address", hdAddress, "--password", password, "--count", "3")
		require.NoError(t, err)

		var accounts []accountInfo
		require.NoError(t, json.Unmarshal([]byte(out), &accounts))
		require.Len(t, accounts, 3)
		assert.Equal(t, accountInfo{hdAddress, "m/44'/60'/0'/0/0"}, accounts[0])
		assert.Equal(t, "m/44'/60'/0'/0/2", accounts[2].DerivationPath)
	})

	t.Run("xpub", func(t *testing.T) {
		out, err := runCLICommand("xpub", "--address", hdAddress, "--password", password)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "xpub"))
	})

	t.Run("export-mnemonic", func(t *testing.T) {
		out, err := runCLICommand("export-mnemonic", "--address", hdAddress, "--password", password)
		require.NoError(t, err)
		assert.Equal(t, mnemonic, out)
	})

	t.Run("sign and verify", func(t *testing.T) {
		sig, err := runCLICommand(
			"sign", "--address", hdAddress, "--password", password,
			"--path", "m/44'/60'/0'/0/1", "--hash", hash,
		)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(sig, "0x"))

		// The signature was made by the second account, not the primary one.
		_, err = runCLICommand("verify", "--address", hdAddress, "--hash", hash, "--signature", sig)
		assert.Error(t, err)

		out, err := runCLICommand("derive", "--address", hdAddress, "--password", password, "--from", "1", "--count", "1")
		require.NoError(t, err)
		var accounts []accountInfo
		require.NoError(t, json.Unmarshal([]byte(out), &accounts))
		require.Len(t, accounts, 1)

		out, err = runCLICommand(
			"verify", "--address", accounts[0].Address, "--hash", hash, "--signature", sig,
		)
		require.NoError(t, err)
		assert.Equal(t, "Valid", out)
	})
}

func TestPrivateKeyCommands(t *testing.T) {
	datadir := setupEnv(t)

	addr, err := runCLICommand("import-key", "--key", privateKey, "--password", password)
	require.NoError(t, err)

	_, err = runCLICommand("import-key", "--key", privateKey, "--password", password)
	assert.Error(t, err)

	out, err := runCLICommand("export-key", "--address", addr, "--password", password)
	require.NoError(t, err)
	assert.Equal(t, privateKey, out)

	_, err = runCLICommand("export-key", "--address", addr, "--password", "wrong")
	assert.Error(t, err)

	_, err = runCLICommand("passwd", "--address", addr, "--password", password, "--new_password", "newpassword")
	require.NoError(t, err)

	keyJSON, err := runCLICommand("export", "--address", addr, "--password", "newpassword", "--new_password", password)
	require.NoError(t, err)
	file := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(file, []byte(keyJSON), 0600))

	_, err = runCLICommand("delete", "--address", addr, "--password", "newpassword")
	require.NoError(t, err)

	out, err = runCLICommand("import", "--file", file, "--password", password, "--new_password", password)
	require.NoError(t, err)
	assert.Equal(t, addr, out)

	entries, err := os.ReadDir(filepath.Join(datadir, "keystore"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestListCommand(t *testing.T) {
	setupEnv(t)

	for _, typ := range []string{"private-key", "mnemonic"} {
		_, err := runCLICommand("new", "--type", typ, "--password", password)
		require.NoError(t, err)
	}

	out, err := runCLICommand("list")
	require.NoError(t, err)

	var wallets []walletInfo
	require.NoError(t, json.Unmarshal([]byte(out), &wallets))
	require.Len(t, wallets, 2)

	types := []string{wallets[0].Type, wallets[1].Type}
	assert.ElementsMatch(t, []string{"private-key", "mnemonic"}, types)
	for _, w := range wallets {
		require.Len(t, w.Accounts, 1)
		assert.True(t, strings.HasSuffix(w.ID, strings.ToLower(w.Accounts[0].Address[2:])))
	}
}

func TestInvalidUsage(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing address", []string{"export-key", "--password", password}},
		{"unknown account", []string{"export-key", "--address", hdAddress}},
		{"invalid checksum", []string{"export-key", "--address", strings.ToLower(hdAddress[:10]) + hdAddress[10:]}},
		{"invalid key type", []string{"new", "--type", "seed"}},
		{"invalid hash", []string{"sign", "--address", hdAddress, "--hash", "zz"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLICommand(tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestMetricsEnabled(t *testing.T) {
	datadir := setupEnv(t)
	t.Setenv("KEYSTORE_ENABLE_METRICS", "true")

	_, err := runCLICommand("new", "--password", password)
	require.NoError(t, err)

	buf, err := os.ReadFile(filepath.Join(datadir, "stats"))
	require.NoError(t, err)
	assert.Contains(t, string(buf), "keystore_operations_total")
}

func TestDatadirFlag(t *testing.T) {
	setupEnv(t)
	envDatadir := filepath.Join(t.TempDir(), "unused")
	t.Setenv("KEYSTORE_DATADIR", envDatadir)
	datadir := t.TempDir()

	_, err := runCLICommand("--datadir", datadir, "new", "--password", password)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(datadir, "keystore"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = os.Stat(envDatadir)
	assert.True(t, os.IsNotExist(err))
}
