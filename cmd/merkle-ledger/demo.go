package main

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/luca-patrignani/merkle-ledger/consensus"
	"github.com/luca-patrignani/merkle-ledger/ledger"
)

var demoBatches = [][]ledger.Transaction{
	{"Alice pays Bob 10 BTC", "Bob pays Charlie 5 BTC"},
	{"Charlie pays Dave 2 BTC", "Dave pays Eve 1 BTC", "Eve pays Frank 0.5 BTC"},
}

func newDemoCmd() *cobra.Command {
	var (
		tamperBlock int
		difficulty  int
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Build a small chain, tamper with it and validate it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printBanner()
			return runDemo(cmd.Context(), difficulty, tamperBlock)
		},
	}
	cmd.Flags().IntVarP(&difficulty, "difficulty", "d", 2, "proof-of-work difficulty of every block")
	cmd.Flags().IntVar(&tamperBlock, "tamper", 1, "index of the block whose first transaction is altered")
	return cmd
}

func runDemo(ctx context.Context, difficulty, tamperBlock int) error {
	bc, err := buildDemoChain(ctx, difficulty)
	if err != nil {
		return err
	}
	if err := printBlocks(bc.Blocks()); err != nil {
		return err
	}
	printValidation("BEFORE TAMPERING", bc.Validate())

	p, err := bc.ProveTransaction(1, 0)
	if err != nil {
		return err
	}
	pterm.Info.Printfln("%q is in block %d: %t", p.Transaction, p.BlockIndex, ledger.VerifyTransaction(p))

	result, err := tamper(bc, tamperBlock)
	if err != nil {
		return err
	}
	printValidation("AFTER TAMPERING", result)
	pterm.Info.Printfln("proof issued before tampering still verifies against the stored root: %t",
		ledger.VerifyTransaction(p))
	return nil
}

// buildDemoChain produces every demo batch through a Producer run by three
// validators.
func buildDemoChain(ctx context.Context, difficulty int) (*ledger.Blockchain, error) {
	scheme := consensus.Ed25519Scheme{}
	validators := []consensus.Validator{{Name: "alice", Stake: 5}, {Name: "bob", Stake: 3}, {Name: "carol", Stake: 2}}
	for i := range validators {
		keys, err := scheme.GenerateKey()
		if err != nil {
			return nil, err
		}
		validators[i].Keys = keys
	}
	producer, err := consensus.NewProducer(consensus.ProducerConfig{
		Validators: validators,
		Scheme:     scheme,
		Difficulty: difficulty,
	})
	if err != nil {
		return nil, err
	}

	bc, err := ledger.NewBlockchain()
	if err != nil {
		return nil, err
	}
	for _, batch := range demoBatches {
		r, err := producer.Produce(ctx, bc, batch)
		if err != nil {
			return nil, err
		}
		if err := consensus.VerifyReceipt(scheme, validators, r); err != nil {
			return nil, err
		}
		pterm.Info.Printfln("block %d produced by %s, nonce %d after %d attempts, %d/%d votes",
			r.Block.Index, r.Leader, r.Work.Nonce, r.Work.Attempts, len(r.Votes), len(validators))
	}
	return bc, nil
}

// tamper rewrites the first transaction of block index in place and
// validates the chain again.
func tamper(bc *ledger.Blockchain, index int) (ledger.ValidationResult, error) {
	b, err := bc.GetByIndex(index)
	if err != nil {
		return ledger.ValidationResult{}, err
	}
	txs := append([]ledger.Transaction(nil), b.Transactions...)
	pterm.Warning.Printfln("block %d: %q becomes %q", index, txs[0], txs[0]+" (forged)")
	txs[0] += " (forged)"
	b.ReplaceTransactions(txs)
	return bc.Validate(), nil
}
