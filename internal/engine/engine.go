// Package engine implements the transfer reconciliation engine: given a
// pool of normalized transactions from N statements, it finds candidate
// transfer pairs across accounts, scores them, resolves conflicts, and
// emits a TransferSet plus categorization overrides for confirmed pairs.
//
// The engine is synchronous and batch-oriented. Inputs are never mutated,
// so a run is idempotent given identical transactions and seeds.
package engine

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/transfermatch-dev/transfermatch/internal/config"
	"github.com/transfermatch-dev/transfermatch/internal/idiom"
	"github.com/transfermatch-dev/transfermatch/internal/model"
)

// Engine wires the indexer, scorer, and resolver together.
type Engine struct {
	matching config.MatchingConfig
	names    []string
	registry *idiom.Registry
	log      zerolog.Logger
}

// New creates an Engine from configuration and a pattern-set registry.
func New(cfg *config.Config, registry *idiom.Registry, log zerolog.Logger) *Engine {
	return &Engine{
		matching: cfg.Matching,
		names:    cfg.User.Names,
		registry: registry,
		log:      log,
	}
}

// Reconcile runs one full reconciliation pass over the batch. seeds are
// previously user-confirmed pairs: their transactions are pinned (excluded
// from re-scoring) and the pairs are carried into Confirmed verbatim, so
// user decisions are never silently revisited.
//
// A seed referencing an unknown transaction ID, or violating the
// outgoing/incoming sign invariant, indicates an upstream contract
// violation and returns an error.
func (e *Engine) Reconcile(txns []model.Transaction, seeds []model.CandidatePair) (*model.TransferSet, error) {
	byID := make(map[string]model.Transaction, len(txns))
	for _, t := range txns {
		byID[t.ID] = t
	}

	pinned, err := validateSeeds(seeds, byID)
	if err != nil {
		return nil, err
	}

	// Annotate idioms without touching the caller's slice.
	pool := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		if pinned[t.ID] {
			continue
		}
		t.BankIdiom = e.registry.Classify(t.SourceAccount, t.BankIdiom)
		pool = append(pool, t)
	}

	ix := NewIndexer(pool, e.matching.DateToleranceHours, e.log)
	scorer := NewScorer(e.registry, e.names, e.matching.DateToleranceHours, e.matching.MinConfidence)

	var candidates []model.CandidatePair
	for _, i := range ix.Outgoing() {
		for _, j := range ix.CandidatesFor(i) {
			if pair, ok := scorer.Score(pool[i], pool[j]); ok {
				candidates = append(candidates, pair)
			}
		}
	}

	resolver := NewResolver(e.matching.ConfidenceThreshold, e.matching.TieMargin)
	res := resolver.Resolve(candidates)

	set := buildTransferSet(seeds, res, e.matching.DefaultPairCategory)

	e.log.Info().
		Int("transactions", len(txns)).
		Int("skipped", ix.Skipped()).
		Int("candidates", len(candidates)).
		Int("confirmed", len(set.Confirmed)).
		Int("potential", len(set.Potential)).
		Int("conflicts", len(set.Conflicts)).
		Msg("reconciliation complete")

	return set, nil
}

// validateSeeds checks the seed pairs against the batch and returns the set
// of pinned transaction IDs.
func validateSeeds(seeds []model.CandidatePair, byID map[string]model.Transaction) (map[string]bool, error) {
	pinned := make(map[string]bool, len(seeds)*2)
	for _, s := range seeds {
		out, ok := byID[s.OutgoingID]
		if !ok {
			return nil, fmt.Errorf("seed pair references unknown transaction %q", s.OutgoingID)
		}
		in, ok := byID[s.IncomingID]
		if !ok {
			return nil, fmt.Errorf("seed pair references unknown transaction %q", s.IncomingID)
		}
		if !out.Outgoing() || !in.Incoming() {
			return nil, fmt.Errorf("seed pair %s/%s violates sign invariant", s.OutgoingID, s.IncomingID)
		}
		if out.SourceAccount == in.SourceAccount {
			return nil, fmt.Errorf("seed pair %s/%s matches within account %q", s.OutgoingID, s.IncomingID, out.SourceAccount)
		}
		if pinned[s.OutgoingID] || pinned[s.IncomingID] {
			return nil, fmt.Errorf("seed pair %s/%s reuses an already pinned transaction", s.OutgoingID, s.IncomingID)
		}
		pinned[s.OutgoingID] = true
		pinned[s.IncomingID] = true
	}
	return pinned, nil
}
