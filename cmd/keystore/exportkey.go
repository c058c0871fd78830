package main

import (
	"fmt"

	"github.com/tdex-network/tdex-keystore/pkg/crypto"
	"github.com/tdex-network/tdex-keystore/pkg/hexutil"
	"github.com/tdex-network/tdex-keystore/pkg/keystore"
	"github.com/tdex-network/tdex-keystore/pkg/wallet"
	"github.com/urfave/cli/v2"
)

var exportkey = cli.Command{
	Name:  "export-key",
	Usage: "print the hex encoded private key of an account",
	Flags: []cli.Flag{
		addressFlag,
		passwordFlag,
		&cli.StringFlag{
			Name:  pathFlagName,
			Usage: "the derivation path of the account, for HD wallets only",
		},
	},
	Action: exportKeyAction,
}

func exportKeyAction(ctx *cli.Context) error {
	ks, cleanup, err := getKeystore()
	if err != nil {
		return err
	}
	defer cleanup()

	account, err := getDerivedAccount(ctx, ks)
	if err != nil {
		return err
	}

	privateKey, err := ks.ExportPrivateKey(account, ctx.String(passwordFlagName))
	if err != nil {
		return err
	}
	defer crypto.ZeroBytes(privateKey)

	fmt.Fprintln(ctx.App.Writer, hexutil.Encode(privateKey))
	return nil
}

// getDerivedAccount resolves the account of the --address flag, or the one
// at the --path flag of its HD wallet if set.
func getDerivedAccount(ctx *cli.Context, ks *keystore.KeyStore) (keystore.Account, error) {
	account, err := getAccount(ctx, ks)
	if err != nil {
		return keystore.Account{}, err
	}
	if !ctx.IsSet(pathFlagName) {
		return account, nil
	}

	path, err := wallet.ParseDerivationPath(ctx.String(pathFlagName))
	if err != nil {
		return keystore.Account{}, err
	}
	accounts, err := ks.DeriveAccounts(
		account, []wallet.DerivationPath{path}, ctx.String(passwordFlagName),
	)
	if err != nil {
		return keystore.Account{}, err
	}
	return accounts[0], nil
}
