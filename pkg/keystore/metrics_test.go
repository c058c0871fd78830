package keystore

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	ks, err := New(Opts{Datadir: t.TempDir(), Scrypt: LightScryptOptions, Registerer: reg})
	require.NoError(t, err)

	account, err := ks.CreateAccount("password", KeyTypePrivateKey)
	require.NoError(t, err)
	_, err = ks.CreateAccount("password", KeyTypeMnemonic)
	require.NoError(t, err)
	_, err = ks.SignHash(testHash, account, "password")
	require.NoError(t, err)
	_, err = ks.SignHash(testHash, account, "wrong")
	require.Error(t, err)
	_, err = ks.SignHash(testHash[:1], account, "password")
	require.Error(t, err)

	tests := []struct {
		operation string
		outcome   string
		count     float64
	}{
		{opLoad, outcomeSuccess, 1},
		{opCreate, outcomeSuccess, 2},
		{opSign, outcomeSuccess, 1},
		{opSign, outcomeInvalidPassword, 1},
		{opSign, outcomeFailure, 1},
		{opDelete, outcomeSuccess, 0},
	}
	for _, tt := range tests {
		counter := ks.metrics.operations.WithLabelValues(tt.operation, tt.outcome)
		assert.Equal(t, tt.count, testutil.ToFloat64(counter), "%s/%s", tt.operation, tt.outcome)
	}
	assert.Equal(t, float64(2), testutil.ToFloat64(ks.metrics.accounts))

	require.NoError(t, ks.Delete(account, "password"))
	assert.Equal(t, float64(1), testutil.ToFloat64(ks.metrics.accounts))

	count, err := testutil.GatherAndCount(reg, "keystore_accounts", "keystore_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 7, count)

	_, err = New(Opts{Datadir: t.TempDir(), Registerer: reg})
	assert.Error(t, err)
}
