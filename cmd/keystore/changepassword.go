package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var changepassword = cli.Command{
	Name:  "passwd",
	Usage: "change the password of the key file of an account",
	Flags: []cli.Flag{
		addressFlag,
		passwordFlag,
		newPasswordFlag,
	},
	Action: changePasswordAction,
}

func changePasswordAction(ctx *cli.Context) error {
	ks, cleanup, err := getKeystore()
	if err != nil {
		return err
	}
	defer cleanup()

	account, err := getAccount(ctx, ks)
	if err != nil {
		return err
	}

	if err := ks.Update(
		account, ctx.String(passwordFlagName), ctx.String(newPasswordFlagName),
	); err != nil {
		return err
	}

	fmt.Fprintln(ctx.App.Writer, "Done")
	return nil
}
