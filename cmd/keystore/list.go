package main

import (
	"github.com/tdex-network/tdex-keystore/pkg/keystore"
	"github.com/urfave/cli/v2"
)

var listaccounts = cli.Command{
	Name:   "list",
	Usage:  "list the wallets of the keystore with their known accounts",
	Action: listAccountsAction,
}

type accountInfo struct {
	Address        string `json:"address"`
	DerivationPath string `json:"derivationPath,omitempty"`
}

type walletInfo struct {
	ID       string        `json:"id"`
	Type     string        `json:"type"`
	Path     string        `json:"path"`
	Accounts []accountInfo `json:"accounts"`
}

func newAccountInfo(account keystore.Account) accountInfo {
	info := accountInfo{Address: account.Address.Hex()}
	if account.IsHD() {
		info.DerivationPath = account.DerivationPath.String()
	}
	return info
}

func listAccountsAction(ctx *cli.Context) error {
	ks, cleanup, err := getKeystore()
	if err != nil {
		return err
	}
	defer cleanup()

	wallets := ks.Wallets()
	infos := make([]walletInfo, 0, len(wallets))
	for _, w := range wallets {
		accounts := make([]accountInfo, 0)
		for _, account := range w.Accounts() {
			accounts = append(accounts, newAccountInfo(account))
		}
		infos = append(infos, walletInfo{
			ID:       w.ID,
			Type:     string(w.Type()),
			Path:     w.Path,
			Accounts: accounts,
		})
	}

	return printJSON(ctx.App.Writer, infos)
}
