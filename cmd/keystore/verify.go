package main

import (
	"fmt"

	"github.com/tdex-network/tdex-keystore/pkg/address"
	"github.com/tdex-network/tdex-keystore/pkg/crypto"
	"github.com/tdex-network/tdex-keystore/pkg/hexutil"
	"github.com/urfave/cli/v2"
)

var verify = cli.Command{
	Name:  "verify",
	Usage: "verify that a signature of a hash was made by the given address",
	Flags: []cli.Flag{
		addressFlag,
		&cli.StringFlag{
			Name:     "hash",
			Usage:    "the hex encoded signed hash",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "signature",
			Usage:    "the hex encoded 65-byte signature",
			Required: true,
		},
	},
	Action: verifyAction,
}

func verifyAction(ctx *cli.Context) error {
	addr, err := address.ParseChecksummed(ctx.String(addressFlagName))
	if err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}
	hash, err := hexutil.Decode(ctx.String("hash"))
	if err != nil {
		return fmt.Errorf("invalid hash: %w", err)
	}
	sig, err := hexutil.Decode(ctx.String("signature"))
	if err != nil {
		return fmt.Errorf("invalid signature: %w", err)
	}

	pubkey, err := crypto.Ecrecover(hash, sig)
	if err != nil {
		return err
	}
	signer := address.FromPublicKey(pubkey)
	if signer != addr || !crypto.VerifySignature(pubkey, hash, sig) {
		return fmt.Errorf("signature was made by %s", signer.Hex())
	}

	fmt.Fprintln(ctx.App.Writer, "Valid")
	return nil
}
