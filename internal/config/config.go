package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tdex-network/tdex-keystore/pkg/keystore"
)

const (
	// DatadirKey is the local data directory where key files are stored
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// ScryptNKey is the scrypt cost factor used to encrypt new key files
	ScryptNKey = "SCRYPT_N"
	// ScryptRKey is the scrypt block size used to encrypt new key files
	ScryptRKey = "SCRYPT_R"
	// ScryptPKey is the scrypt parallelization factor used to encrypt new key
	// files
	ScryptPKey = "SCRYPT_P"
	// EnableMetricsKey makes commands report the keystore metrics once done
	EnableMetricsKey = "ENABLE_METRICS"

	KeystoreLocation = "keystore"
	StatsLocation    = "stats"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("tdex-keystore", false)

// InitConfig loads the configuration from the environment. A non-empty
// datadir takes precedence over KEYSTORE_DATADIR and is applied before the
// data directory gets created.
func InitConfig(datadir string) error {
	vip = viper.New()
	vip.SetEnvPrefix("KEYSTORE")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, int(log.InfoLevel))
	vip.SetDefault(ScryptNKey, keystore.StandardScryptN)
	vip.SetDefault(ScryptRKey, keystore.StandardScryptR)
	vip.SetDefault(ScryptPKey, keystore.StandardScryptP)
	vip.SetDefault(EnableMetricsKey, false)

	if datadir != "" {
		vip.Set(DatadirKey, datadir)
	}

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetKeystoreDir returns the directory of the key files, inside the datadir.
func GetKeystoreDir() string {
	return filepath.Join(GetDatadir(), KeystoreLocation)
}

func GetLogLevel() log.Level {
	return log.Level(GetInt(LogLevelKey))
}

func GetScryptOptions() keystore.ScryptOptions {
	return keystore.ScryptOptions{
		N: GetInt(ScryptNKey),
		R: GetInt(ScryptRKey),
		P: GetInt(ScryptPKey),
	}
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	logLevel := GetInt(LogLevelKey)
	if logLevel < int(log.PanicLevel) || logLevel > int(log.TraceLevel) {
		return fmt.Errorf(
			"%s must be in range [%d, %d]", LogLevelKey, log.PanicLevel, log.TraceLevel,
		)
	}

	// scrypt params are fully validated when the keystore is opened.
	for _, key := range []string{ScryptNKey, ScryptRKey, ScryptPKey} {
		if GetInt(key) <= 0 {
			return fmt.Errorf("%s must be a positive number", key)
		}
	}

	return nil
}

func initDatadir() error {
	return makeDirectoryIfNotExists(GetKeystoreDir())
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0700)
	}
	return nil
}
