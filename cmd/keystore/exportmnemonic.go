package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var exportmnemonic = cli.Command{
	Name:  "export-mnemonic",
	Usage: "print the mnemonic of an HD wallet",
	Flags: []cli.Flag{
		addressFlag,
		passwordFlag,
	},
	Action: exportMnemonicAction,
}

func exportMnemonicAction(ctx *cli.Context) error {
	ks, cleanup, err := getKeystore()
	if err != nil {
		return err
	}
	defer cleanup()

	account, err := getAccount(ctx, ks)
	if err != nil {
		return err
	}

	mnemonic, err := ks.ExportMnemonic(account, ctx.String(passwordFlagName))
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.App.Writer, mnemonic)
	return nil
}
