package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/luca-patrignani/merkle-ledger/consensus"
	"github.com/luca-patrignani/merkle-ledger/ledger"
)

func schemeFlag(name string) (consensus.Scheme, error) {
	switch name {
	case "ed25519":
		return consensus.Ed25519Scheme{}, nil
	case "schnorr":
		return consensus.NewSchnorrScheme(), nil
	}
	return nil, fmt.Errorf("unknown scheme %q, expected ed25519 or schnorr", name)
}

// signAndCommit signs payload with a fresh key, commits the envelope to a new
// chain and checks it back out of the block.
func signAndCommit(scheme consensus.Scheme, payload string) (ledger.Block, consensus.SignedTransaction, error) {
	keys, err := scheme.GenerateKey()
	if err != nil {
		return ledger.Block{}, consensus.SignedTransaction{}, err
	}
	tx, err := consensus.SignTransaction(scheme, keys, []byte(payload))
	if err != nil {
		return ledger.Block{}, consensus.SignedTransaction{}, err
	}
	bc, err := ledger.NewBlockchain()
	if err != nil {
		return ledger.Block{}, consensus.SignedTransaction{}, err
	}
	block, err := bc.Append([]ledger.Transaction{tx})
	if err != nil {
		return ledger.Block{}, consensus.SignedTransaction{}, err
	}
	st, err := consensus.VerifyTransaction(block.Transactions[0])
	if err != nil {
		return ledger.Block{}, consensus.SignedTransaction{}, err
	}
	return block, st, nil
}

func newSignCmd() *cobra.Command {
	var scheme string
	cmd := &cobra.Command{
		Use:   "sign PAYLOAD",
		Short: "Sign a payload with a fresh key and commit it to a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := schemeFlag(scheme)
			if err != nil {
				return err
			}
			block, st, err := signAndCommit(s, args[0])
			if err != nil {
				return err
			}
			pterm.Info.Printfln("transaction: %s", block.Transactions[0])
			pterm.Success.Printfln("%s signature by %x verified in block %d (%s)",
				st.Scheme, st.Public, block.Index, block.Hash.Short())
			return nil
		},
	}
	cmd.Flags().StringVar(&scheme, "scheme", "ed25519", "signature scheme: ed25519 or schnorr")
	return cmd
}
