package engine

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/transfermatch-dev/transfermatch/internal/model"
)

const hoursPerDay = 24

// Indexer buckets transactions by sign and coarse date key so pairwise
// scoring only visits realistic candidates instead of the full
// cross-product. The indexing scheme is advisory: correctness comes from
// the scorer's precise gates, the index only bounds the work.
type Indexer struct {
	txns           []model.Transaction
	outgoing       map[int64][]int // day key -> indices into txns
	incoming       map[int64][]int
	outgoingOrder  []int // usable outgoing indices in input order
	toleranceHours int
	skipped        int
}

// NewIndexer builds an index over the batch. Rows with a zero date or zero
// amount cannot participate in matching; they are skipped and logged, never
// fatal (one unparseable row must not abort unrelated reconciliations).
func NewIndexer(txns []model.Transaction, toleranceHours int, log zerolog.Logger) *Indexer {
	ix := &Indexer{
		txns:           txns,
		outgoing:       make(map[int64][]int),
		incoming:       make(map[int64][]int),
		toleranceHours: toleranceHours,
	}
	for i, t := range txns {
		if t.Date.IsZero() || t.Amount.IsZero() {
			ix.skipped++
			log.Debug().
				Str("id", t.ID).
				Str("account", t.SourceAccount).
				Msg("skipping transaction without usable date or amount")
			continue
		}
		key := dayKey(t.Date)
		if t.Outgoing() {
			ix.outgoing[key] = append(ix.outgoing[key], i)
			ix.outgoingOrder = append(ix.outgoingOrder, i)
		} else {
			ix.incoming[key] = append(ix.incoming[key], i)
		}
	}
	return ix
}

// Outgoing returns the indices of all usable outgoing transactions in input
// order, giving callers a deterministic iteration base.
func (ix *Indexer) Outgoing() []int {
	return ix.outgoingOrder
}

// Skipped returns how many rows were excluded from candidate generation.
func (ix *Indexer) Skipped() int {
	return ix.skipped
}

// CandidatesFor returns the indices of all opposite-sign transactions from
// a different source account whose date bucket lies within the tolerance
// window of the given transaction. Precise hour-level filtering happens in
// the scorer; buckets only need to be a superset.
func (ix *Indexer) CandidatesFor(i int) []int {
	t := ix.txns[i]
	buckets := ix.outgoing
	if t.Outgoing() {
		buckets = ix.incoming
	}

	// One extra day each way absorbs partial-day tolerances.
	span := int64(ix.toleranceHours/hoursPerDay) + 1
	key := dayKey(t.Date)

	var out []int
	for d := key - span; d <= key+span; d++ {
		for _, j := range buckets[d] {
			if ix.txns[j].SourceAccount == t.SourceAccount {
				continue
			}
			out = append(out, j)
		}
	}
	return out
}

// dayKey collapses a timestamp to a UTC day number.
func dayKey(t time.Time) int64 {
	return t.UTC().Unix() / (hoursPerDay * 60 * 60)
}
