package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var deleteaccount = cli.Command{
	Name:  "delete",
	Usage: "delete the key file of an account",
	Flags: []cli.Flag{
		addressFlag,
		passwordFlag,
	},
	Action: deleteAccountAction,
}

func deleteAccountAction(ctx *cli.Context) error {
	ks, cleanup, err := getKeystore()
	if err != nil {
		return err
	}
	defer cleanup()

	account, err := getAccount(ctx, ks)
	if err != nil {
		return err
	}

	if err := ks.Delete(account, ctx.String(passwordFlagName)); err != nil {
		return err
	}

	fmt.Fprintln(ctx.App.Writer, "Done")
	return nil
}
