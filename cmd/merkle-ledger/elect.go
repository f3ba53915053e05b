package main

import (
	"crypto/cipher"
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.dedis.ch/kyber/v4/suites"

	"github.com/luca-patrignani/merkle-ledger/consensus"
)

// parseValidators reads NAME=STAKE pairs.
func parseValidators(args []string) ([]consensus.Validator, error) {
	validators := make([]consensus.Validator, 0, len(args))
	for _, arg := range args {
		name, stake, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid validator %q, expected NAME=STAKE", arg)
		}
		s, err := strconv.ParseUint(stake, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid stake for %s: %w", name, err)
		}
		validators = append(validators, consensus.Validator{Name: name, Stake: s})
	}
	return validators, nil
}

// electionStream returns a deterministic stream for a non-empty seed and
// nil otherwise.
func electionStream(seed string) cipher.Stream {
	if seed == "" {
		return nil
	}
	return suites.MustFind("Ed25519").XOF([]byte(seed))
}

// tally runs rounds elections and counts the wins of every validator.
func tally(validators []consensus.Validator, stream cipher.Stream, rounds int) (map[string]int, error) {
	wins := make(map[string]int, len(validators))
	for range rounds {
		v, err := consensus.SelectValidator(validators, stream)
		if err != nil {
			return nil, err
		}
		wins[v.Name]++
	}
	return wins, nil
}

func newElectCmd() *cobra.Command {
	var (
		seed   string
		rounds int
	)
	cmd := &cobra.Command{
		Use:   "elect NAME=STAKE...",
		Short: "Elect block producers weighted by stake",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			validators, err := parseValidators(args)
			if err != nil {
				return err
			}
			wins, err := tally(validators, electionStream(seed), rounds)
			if err != nil {
				return err
			}
			bars := make(pterm.Bars, 0, len(validators))
			for _, v := range validators {
				bars = append(bars, pterm.Bar{Label: v.Name, Value: wins[v.Name]})
			}
			return pterm.DefaultBarChart.WithHorizontal().WithShowValue().WithBars(bars).Render()
		},
	}
	cmd.Flags().StringVar(&seed, "seed", "", "seed for a reproducible election")
	cmd.Flags().IntVarP(&rounds, "rounds", "n", 1, "number of elections to run")
	return cmd
}
