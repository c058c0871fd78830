package main

import (
	"fmt"

	"github.com/tdex-network/tdex-keystore/pkg/keystore"
	"github.com/urfave/cli/v2"
)

var newaccount = cli.Command{
	Name:  "new",
	Usage: "create a new account encrypted with the given password",
	Flags: []cli.Flag{
		passwordFlag,
		&cli.StringFlag{
			Name:  "type",
			Usage: "the type of key to generate, either private-key or mnemonic",
			Value: string(keystore.KeyTypePrivateKey),
		},
	},
	Action: newAccountAction,
}

func newAccountAction(ctx *cli.Context) error {
	ks, cleanup, err := getKeystore()
	if err != nil {
		return err
	}
	defer cleanup()

	account, err := ks.CreateAccount(
		ctx.String(passwordFlagName), keystore.KeyType(ctx.String("type")),
	)
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.App.Writer, account.Address.Hex())
	return nil
}
