package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var exportkeyfile = cli.Command{
	Name:  "export",
	Usage: "print the key file of an account encrypted with a new password",
	Flags: []cli.Flag{
		addressFlag,
		passwordFlag,
		newPasswordFlag,
	},
	Action: exportKeyFileAction,
}

func exportKeyFileAction(ctx *cli.Context) error {
	ks, cleanup, err := getKeystore()
	if err != nil {
		return err
	}
	defer cleanup()

	account, err := getAccount(ctx, ks)
	if err != nil {
		return err
	}

	keyJSON, err := ks.Export(
		account, ctx.String(passwordFlagName), ctx.String(newPasswordFlagName),
	)
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.App.Writer, string(keyJSON))
	return nil
}
