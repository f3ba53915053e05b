package main

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/luca-patrignani/merkle-ledger/consensus"
	"github.com/luca-patrignani/merkle-ledger/hashing"
)

func newMineCmd() *cobra.Command {
	var (
		prevHash   string
		difficulty int
		opts       consensus.MineOptions
	)
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Search for a proof-of-work nonce over a previous block hash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spinner, _ := pterm.DefaultSpinner.Start("Mining at difficulty ", difficulty, "...")
			work, err := consensus.Mine(cmd.Context(), hashing.Digest(prevHash), difficulty, opts)
			if err != nil {
				spinner.Fail(err)
				return err
			}
			spinner.Success("Nonce found")
			return pterm.DefaultTable.WithData(pterm.TableData{
				{"Nonce", pterm.Sprint(work.Nonce)},
				{"Hash", work.Hash.String()},
				{"Attempts", pterm.Sprint(work.Attempts)},
				{"Elapsed", work.Elapsed.Round(time.Microsecond).String()},
			}).Render()
		},
	}
	cmd.Flags().StringVar(&prevHash, "prev", "0", "previous block hash")
	cmd.Flags().IntVarP(&difficulty, "difficulty", "d", 4, "number of leading hex zeros")
	cmd.Flags().Uint64Var(&opts.MaxAttempts, "max-attempts", consensus.DefaultMaxAttempts, "give up after this many nonces")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "give up after this long (0 means no limit)")
	return cmd
}
