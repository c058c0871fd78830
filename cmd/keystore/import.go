package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var importkeyfile = cli.Command{
	Name:  "import",
	Usage: "import a key file, re-encrypting it with a new password",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "file",
			Usage:    "the path of the key file to import",
			Required: true,
		},
		passwordFlag,
		newPasswordFlag,
	},
	Action: importKeyFileAction,
}

func importKeyFileAction(ctx *cli.Context) error {
	keyJSON, err := os.ReadFile(ctx.String("file"))
	if err != nil {
		return err
	}

	ks, cleanup, err := getKeystore()
	if err != nil {
		return err
	}
	defer cleanup()

	account, err := ks.Import(
		keyJSON, ctx.String(passwordFlagName), ctx.String(newPasswordFlagName),
	)
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.App.Writer, account.Address.Hex())
	return nil
}
