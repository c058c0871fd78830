package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-keystore/internal/config"
	"github.com/tdex-network/tdex-keystore/pkg/address"
	"github.com/tdex-network/tdex-keystore/pkg/keystore"
	"github.com/tdex-network/tdex-keystore/pkg/stats"
	"github.com/urfave/cli/v2"
)

const (
	datadirFlagName     = "datadir"
	addressFlagName     = "address"
	passwordFlagName    = "password"
	newPasswordFlagName = "new_password"
	pathFlagName        = "path"
)

var (
	addressFlag = &cli.StringFlag{
		Name:     addressFlagName,
		Usage:    "the address of the account",
		Required: true,
	}
	passwordFlag = &cli.StringFlag{
		Name:  passwordFlagName,
		Usage: "the password that encrypts the key file",
		Value: "",
	}
	newPasswordFlag = &cli.StringFlag{
		Name:  newPasswordFlagName,
		Usage: "the password that encrypts the new key file",
		Value: "",
	}
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fatal(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Version = "0.0.1"
	app.Name = "keystore"
	app.Usage = "Command line interface to manage encrypted key files"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  datadirFlagName,
			Usage: "the data directory, overrides KEYSTORE_DATADIR",
		},
	}
	app.Before = func(ctx *cli.Context) error {
		if err := config.InitConfig(ctx.String(datadirFlagName)); err != nil {
			return err
		}
		log.SetLevel(config.GetLogLevel())
		return nil
	}
	app.Commands = append(
		app.Commands,
		&newaccount,
		&importkeyfile,
		&importkey,
		&importmnemonic,
		&listaccounts,
		&exportkeyfile,
		&exportkey,
		&exportmnemonic,
		&changepassword,
		&deleteaccount,
		&sign,
		&verify,
		&derive,
		&xpub,
	)
	return app
}

// getKeystore opens the keystore of the configured datadir. The returned
// cleanup func logs the keystore metrics and appends them to the stats file
// of the datadir, if enabled.
func getKeystore() (*keystore.KeyStore, func(), error) {
	var registry *prometheus.Registry
	if config.GetBool(config.EnableMetricsKey) {
		registry = prometheus.NewRegistry()
	}

	opts := keystore.Opts{
		Datadir: config.GetKeystoreDir(),
		Scrypt:  config.GetScryptOptions(),
	}
	if registry != nil {
		opts.Registerer = registry
	}
	ks, err := keystore.New(opts)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if registry == nil {
			return
		}
		if err := stats.LogMetrics(registry); err != nil {
			log.WithError(err).Warn("unable to gather metrics")
		}
		statsFile := filepath.Join(config.GetDatadir(), config.StatsLocation)
		if err := stats.DumpMetrics(registry, statsFile); err != nil {
			log.WithError(err).Warn("unable to dump metrics")
		}
	}
	return ks, cleanup, nil
}

// getAccount resolves the primary account with the address of the
// --address flag.
func getAccount(ctx *cli.Context, ks *keystore.KeyStore) (keystore.Account, error) {
	addr, err := address.ParseChecksummed(ctx.String(addressFlagName))
	if err != nil {
		return keystore.Account{}, fmt.Errorf("invalid address: %w", err)
	}
	account, ok := ks.Account(addr)
	if !ok {
		return keystore.Account{}, keystore.ErrAccountNotFound
	}
	return account, nil
}

func printJSON(w io.Writer, v interface{}) error {
	buf, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return fmt.Errorf("unable to encode response: %w", err)
	}
	_, err = fmt.Fprintln(w, string(buf))
	return err
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[keystore] %v\n", err)
	}
	os.Exit(1)
}
