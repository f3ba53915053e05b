package main

import (
	"log/slog"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var debug bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "merkle-ledger",
		Short: "Tamper-evident ledger of Merkle-committed transaction batches",
		Long: `merkle-ledger builds a hash-linked chain of blocks, each committing to
its transactions through a Merkle root, and shows how tampering is detected.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				pterm.DefaultLogger.Level = pterm.LogLevelDebug
			}
			slog.SetDefault(slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger)))
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newDemoCmd(),
		newProveCmd(),
		newVerifyCmd(),
		newMineCmd(),
		newElectCmd(),
		newSignCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
