package main

import (
	"fmt"

	"github.com/tdex-network/tdex-keystore/pkg/wallet"
	"github.com/urfave/cli/v2"
)

var importmnemonic = cli.Command{
	Name:  "import-mnemonic",
	Usage: "import a BIP39 mnemonic as an HD wallet",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "mnemonic",
			Usage:    "the space separated mnemonic words",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "passphrase",
			Usage: "the optional BIP39 passphrase",
		},
		&cli.StringFlag{
			Name:  pathFlagName,
			Usage: "the derivation path template of the wallet accounts",
			Value: string(wallet.DefaultPathTemplate),
		},
		passwordFlag,
	},
	Action: importMnemonicAction,
}

func importMnemonicAction(ctx *cli.Context) error {
	ks, cleanup, err := getKeystore()
	if err != nil {
		return err
	}
	defer cleanup()

	account, err := ks.ImportMnemonic(
		ctx.String("mnemonic"),
		ctx.String("passphrase"),
		wallet.PathTemplate(ctx.String(pathFlagName)),
		ctx.String(passwordFlagName),
	)
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.App.Writer, account.Address.Hex())
	return nil
}
