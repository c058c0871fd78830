package main

import (
	"github.com/tdex-network/tdex-keystore/pkg/wallet"
	"github.com/urfave/cli/v2"
)

var derive = cli.Command{
	Name:  "derive",
	Usage: "derive sequential accounts of an HD wallet",
	Flags: []cli.Flag{
		addressFlag,
		passwordFlag,
		&cli.StringFlag{
			Name:  pathFlagName,
			Usage: "the derivation path template, x is replaced by the account index",
			Value: string(wallet.DefaultPathTemplate),
		},
		&cli.UintFlag{
			Name:  "from",
			Usage: "the index of the first account",
			Value: 0,
		},
		&cli.UintFlag{
			Name:  "count",
			Usage: "the number of accounts to derive",
			Value: 5,
		},
	},
	Action: deriveAction,
}

func deriveAction(ctx *cli.Context) error {
	template := wallet.PathTemplate(ctx.String(pathFlagName))
	paths, err := template.Accounts(uint32(ctx.Uint("from")), uint32(ctx.Uint("count")))
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

	accounts, err := ks.DeriveAccounts(account, paths, ctx.String(passwordFlagName))
	if err != nil {
		return err
	}

	infos := make([]accountInfo, 0, len(accounts))
	for _, a := range accounts {
		infos = append(infos, newAccountInfo(a))
	}
	return printJSON(ctx.App.Writer, infos)
}
