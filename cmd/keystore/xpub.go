package main

import (
	"fmt"

	"github.com/tdex-network/tdex-keystore/pkg/wallet"
	"github.com/urfave/cli/v2"
)

var xpub = cli.Command{
	Name:  "xpub",
	Usage: "print the extended public key at a derivation path of an HD wallet",
	Flags: []cli.Flag{
		addressFlag,
		passwordFlag,
		&cli.StringFlag{
			Name:  pathFlagName,
			Usage: "the derivation path of the extended key",
			Value: wallet.DefaultBaseDerivationPath.String(),
		},
	},
	Action: xpubAction,
}

func xpubAction(ctx *cli.Context) error {
	path, err := wallet.ParseDerivationPath(ctx.String(pathFlagName))
	if err != nil {
		return err
	}

	ks, cleanup, err := getKeystore()
	if err != nil {
		return err
	}
	defer cleanup()

	account, err := getAccount(ctx, ks)
	if err != nil {
		return err
	}

	key, err := ks.ExtendedPublicKey(account, path, ctx.String(passwordFlagName))
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.App.Writer, key)
	return nil
}
