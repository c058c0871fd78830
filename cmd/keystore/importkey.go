package main

import (
	"fmt"

	"github.com/tdex-network/tdex-keystore/pkg/crypto"
	"github.com/tdex-network/tdex-keystore/pkg/hexutil"
	"github.com/urfave/cli/v2"
)

var importkey = cli.Command{
	Name:  "import-key",
	Usage: "import a hex encoded raw private key",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "key",
			Usage:    "the hex encoded private key",
			Required: true,
		},
		passwordFlag,
	},
	Action: importKeyAction,
}

func importKeyAction(ctx *cli.Context) error {
	privateKey, err := hexutil.Decode(ctx.String("key"))
	if err != nil {
		return fmt.Errorf("invalid private key: %w", err)
	}
	defer crypto.ZeroBytes(privateKey)

	ks, cleanup, err := getKeystore()
	if err != nil {
		return err
	}
	defer cleanup()

	account, err := ks.ImportPrivateKey(privateKey, ctx.String(passwordFlagName))
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.App.Writer, account.Address.Hex())
	return nil
}
