package ledger

import "log/slog"

type config struct {
	clock   Clock
	logger  *slog.Logger
	genesis []Transaction
}

type option func(config) config

// WithClock sets the clock that stamps every block, genesis included.
func WithClock(clock Clock) option {
	return func(c config) config {
		c.clock = clock
		return c
	}
}

// WithLogger sets the logger used for appends and validation failures.
func WithLogger(logger *slog.Logger) option {
	return func(c config) config {
		c.logger = logger
		return c
	}
}

// WithGenesis replaces the default genesis batch.
func WithGenesis(txs ...Transaction) option {
	return func(c config) config {
		c.genesis = append([]Transaction(nil), txs...)
		return c
	}
}
