package consensus

import (
	"context"
	"crypto/cipher"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/luca-patrignani/merkle-ledger/ledger"
)

var (
	// ErrStaleWork is returned when the ledger tail moved while mining.
	ErrStaleWork = errors.New("stale work")
	// ErrInvalidWork is returned when a receipt's nonce does not meet its difficulty.
	ErrInvalidWork = errors.New("invalid work")
	// ErrNoQuorum is returned when a receipt carries too few valid votes.
	ErrNoQuorum = errors.New("no quorum")
	// ErrUnknownValidator is returned for a leader or voter outside the validator set.
	ErrUnknownValidator = errors.New("unknown validator")
)

// ProducerConfig configures a Producer. Scheme defaults to Ed25519Scheme,
// Logger to slog.Default and Stream to crypto/rand.
type ProducerConfig struct {
	Validators []Validator
	Scheme     Scheme
	Difficulty int
	Mine       MineOptions
	Stream     cipher.Stream
	Logger     *slog.Logger
}

// Producer turns transaction batches into blocks: it elects a leader by
// stake, mines over the ledger tail, appends the batch and collects a vote
// from every validator on the new block.
type Producer struct {
	mu     sync.Mutex
	cfg    ProducerConfig
	quorum int
}

// NewProducer checks the configuration and returns a Producer.
func NewProducer(cfg ProducerConfig) (*Producer, error) {
	if cfg.Scheme == nil {
		cfg.Scheme = Ed25519Scheme{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if err := checkDifficulty(cfg.Difficulty); err != nil {
		return nil, err
	}
	staked := false
	for _, v := range cfg.Validators {
		if len(v.Keys.Private) == 0 {
			return nil, fmt.Errorf("validator %q has no private key", v.Name)
		}
		staked = staked || v.Stake > 0
	}
	if !staked {
		return nil, ErrNoStake
	}
	cfg.Validators = append([]Validator(nil), cfg.Validators...)
	return &Producer{cfg: cfg, quorum: computeQuorum(len(cfg.Validators))}, nil
}

// Quorum returns the number of votes a receipt needs.
func (p *Producer) Quorum() int {
	return p.quorum
}

// Produce seals txs into a new block of l. The ledger is only touched
// through Ledger. The block is appended only if the tail is still the one the
// work was mined over; otherwise Produce fails with ErrStaleWork and l is
// left unchanged.
func (p *Producer) Produce(ctx context.Context, l Ledger, txs []ledger.Transaction) (Receipt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	leader, err := SelectValidator(p.cfg.Validators, p.cfg.Stream)
	if err != nil {
		return Receipt{}, err
	}
	p.cfg.Logger.Debug("leader elected", "leader", leader.Name, "stake", leader.Stake)

	tail, err := l.GetLatest()
	if err != nil {
		return Receipt{}, err
	}
	work, err := Mine(ctx, tail.Hash, p.cfg.Difficulty, p.cfg.Mine)
	if err != nil {
		return Receipt{}, fmt.Errorf("leader %s: %w", leader.Name, err)
	}
	p.cfg.Logger.Debug("nonce mined",
		"leader", leader.Name,
		"nonce", work.Nonce,
		"attempts", work.Attempts,
		"elapsed", work.Elapsed)

	block, err := l.AppendAfter(tail.Hash, txs)
	if errors.Is(err, ledger.ErrTailMoved) {
		return Receipt{}, fmt.Errorf("%w: mined over %s: %w", ErrStaleWork, tail.Hash.Short(), err)
	}
	if err != nil {
		return Receipt{}, err
	}

	votes := make([]Vote, 0, len(p.cfg.Validators))
	for _, v := range p.cfg.Validators {
		vote, err := p.endorse(v, block)
		if err != nil {
			return Receipt{}, err
		}
		votes = append(votes, vote)
	}
	p.cfg.Logger.Info("block produced",
		"index", block.Index,
		"hash", block.Hash.Short(),
		"leader", leader.Name,
		"votes", len(votes))

	return Receipt{
		Block:      block,
		Leader:     leader.Name,
		Difficulty: p.cfg.Difficulty,
		Work:       work,
		Votes:      votes,
	}, nil
}

// endorse has v check the block and sign its hash.
func (p *Producer) endorse(v Validator, block ledger.Block) (Vote, error) {
	h, err := block.RecomputeHash()
	if err != nil {
		return Vote{}, err
	}
	if h != block.Hash {
		return Vote{}, fmt.Errorf("validator %s: block %d: %w", v.Name, block.Index, ledger.ErrHashMismatch)
	}
	vote := Vote{Voter: v.Name, BlockHash: block.Hash}
	if err := vote.Sign(p.cfg.Scheme, v.Keys.Private); err != nil {
		return Vote{}, fmt.Errorf("validator %s: %w", v.Name, err)
	}
	return vote, nil
}

// VerifyReceipt checks a receipt against the validator set: the block must
// hash to its stored hash, the work must meet the difficulty over the
// block's previous hash, and at least a quorum of distinct validators must
// have signed the block hash.
func VerifyReceipt(scheme Scheme, validators []Validator, r Receipt) error {
	h, err := r.Block.RecomputeHash()
	if err != nil {
		return err
	}
	if h != r.Block.Hash {
		return fmt.Errorf("block %d: %w", r.Block.Index, ledger.ErrHashMismatch)
	}
	if !CheckWork(r.Block.PrevHash, r.Work.Nonce, r.Difficulty) || workHash(r.Block.PrevHash, r.Work.Nonce) != r.Work.Hash {
		return fmt.Errorf("%w: nonce %d at difficulty %d", ErrInvalidWork, r.Work.Nonce, r.Difficulty)
	}

	byName := make(map[string]Validator, len(validators))
	for _, v := range validators {
		byName[v.Name] = v
	}
	if _, ok := byName[r.Leader]; !ok {
		return fmt.Errorf("%w: leader %q", ErrUnknownValidator, r.Leader)
	}

	accepted := make(map[string]bool, len(r.Votes))
	for _, vote := range r.Votes {
		v, ok := byName[vote.Voter]
		if !ok || vote.BlockHash != r.Block.Hash {
			continue
		}
		if ok, _ := vote.VerifySignature(scheme, v.Keys.Public); ok {
			accepted[vote.Voter] = true
		}
	}
	if need := computeQuorum(len(validators)); len(accepted) < need {
		return fmt.Errorf("%w: %d of %d votes", ErrNoQuorum, len(accepted), need)
	}
	return nil
}
