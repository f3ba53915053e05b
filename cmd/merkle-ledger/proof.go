package main

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/luca-patrignani/merkle-ledger/hashing"
	"github.com/luca-patrignani/merkle-ledger/merkle"
)

// proofFile is what prove writes and verify reads.
type proofFile struct {
	Leaf  string         `cbor:"leaf"`
	Root  hashing.Digest `cbor:"root"`
	Proof merkle.Proof   `cbor:"proof"`
}

func writeProof(path string, pf proofFile) error {
	b, err := cbor.Marshal(pf)
	if err != nil {
		return fmt.Errorf("encode proof: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}

func readProof(path string) (proofFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return proofFile{}, err
	}
	var pf proofFile
	if err := cbor.Unmarshal(b, &pf); err != nil {
		return proofFile{}, fmt.Errorf("decode proof %s: %w", path, err)
	}
	return pf, nil
}

// buildProof builds the tree over txs and the proof of txs[index].
func buildProof(txs []string, index int) (proofFile, error) {
	tree, err := merkle.Build(txs)
	if err != nil {
		return proofFile{}, err
	}
	proof, err := tree.Prove(index)
	if err != nil {
		return proofFile{}, err
	}
	return proofFile{Leaf: txs[index], Root: tree.Root(), Proof: proof}, nil
}

func newProveCmd() *cobra.Command {
	var (
		index int
		out   string
	)
	cmd := &cobra.Command{
		Use:   "prove TX...",
		Short: "Build a Merkle tree over the transactions and prove one of them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pf, err := buildProof(args, index)
			if err != nil {
				return err
			}
			pterm.Info.Printfln("root: %s", pf.Root)
			data := pterm.TableData{{"Level", "Sibling", "Side"}}
			for i, s := range pf.Proof {
				side := "right"
				if s.SiblingIsLeft {
					side = "left"
				}
				data = append(data, []string{fmt.Sprint(i), s.Sibling.String(), side})
			}
			if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
				return err
			}
			if out == "" {
				return nil
			}
			if err := writeProof(out, pf); err != nil {
				return err
			}
			pterm.Success.Printfln("proof written to %s", out)
			return nil
		},
	}
	cmd.Flags().IntVar(&index, "index", 0, "position of the transaction to prove")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the proof as CBOR to this file")
	return cmd
}

func newVerifyCmd() *cobra.Command {
	var (
		leaf string
		root string
	)
	cmd := &cobra.Command{
		Use:   "verify PROOF_FILE",
		Short: "Verify a proof written by prove",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pf, err := readProof(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("leaf") {
				pf.Leaf = leaf
			}
			if cmd.Flags().Changed("root") {
				pf.Root = hashing.Digest(root)
			}
			if !merkle.Verify(pf.Leaf, pf.Proof, pf.Root) {
				return fmt.Errorf("%q is not included under root %s", pf.Leaf, pf.Root.Short())
			}
			pterm.Success.Printfln("%q is included under root %s", pf.Leaf, pf.Root.Short())
			return nil
		},
	}
	cmd.Flags().StringVar(&leaf, "leaf", "", "check this transaction instead of the one in the file")
	cmd.Flags().StringVar(&root, "root", "", "check against this root instead of the one in the file")
	return cmd
}
