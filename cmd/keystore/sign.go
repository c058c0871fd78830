package main

import (
	"fmt"

	"github.com/tdex-network/tdex-keystore/pkg/hexutil"
	"github.com/urfave/cli/v2"
)

var sign = cli.Command{
	Name:  "sign",
	Usage: "sign one or more 32-byte hashes with the private key of an account",
	Flags: []cli.Flag{
		addressFlag,
		passwordFlag,
		&cli.StringSliceFlag{
			Name:     "hash",
			Usage:    "the hex encoded hash to sign, can be repeated",
			Required: true,
		},
		&cli.StringFlag{
			Name:  pathFlagName,
			Usage: "the derivation path of the signing account, for HD wallets only",
		},
	},
	Action: signAction,
}

func signAction(ctx *cli.Context) error {
	hexHashes := ctx.StringSlice("hash")
	hashes := make([][]byte, 0, len(hexHashes))
	for _, h := range hexHashes {
		hash, err := hexutil.Decode(h)
		if err != nil {
			return fmt.Errorf("invalid hash %s: %w", h, err)
		}
		hashes = append(hashes, hash)
	}

	ks, cleanup, err := getKeystore()
	if err != nil {
		return err
	}
	defer cleanup()

	account, err := getDerivedAccount(ctx, ks)
	if err != nil {
		return err
	}

	sigs, err := ks.SignHashes(hashes, account, ctx.String(passwordFlagName))
	if err != nil {
		return err
	}

	for _, sig := range sigs {
		fmt.Fprintln(ctx.App.Writer, hexutil.EncodeWithPrefix(sig))
	}
	return nil
}
