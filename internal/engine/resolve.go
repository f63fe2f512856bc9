package engine

import (
	"sort"

	"github.com/transfermatch-dev/transfermatch/internal/model"
)

// Resolution groups scored candidates by their terminal state for one run.
type Resolution struct {
	Confirmed []model.CandidatePair
	Potential []model.CandidatePair
	Conflicts []model.ConflictGroup
}

// Resolver decides, per transaction, which single candidate (if any) is
// confirmed, and demotes the rest to potential or conflict status. The
// decision is order-independent: candidates are processed in descending
// confidence with a stable ID tiebreak, so identical inputs always yield
// identical output regardless of how rows arrived.
type Resolver struct {
	threshold float64
	tieMargin float64
}

// NewResolver creates a Resolver. threshold is the minimum confidence for
// auto-confirmation; tieMargin is the gap under which competing candidates
// count as tied.
func NewResolver(threshold, tieMargin float64) *Resolver {
	return &Resolver{threshold: threshold, tieMargin: tieMargin}
}

// pair states during resolution.
type pairState int

const (
	statePending pairState = iota
	stateConfirmed
	stateConflicted
	statePotential
)

// Resolve classifies all scored candidates. Every input pair lands in
// exactly one of Confirmed, Potential, or a conflict group. When two
// candidates for the same transaction tie within the margin, neither is
// auto-picked: a wrong guess corrupts financial categorization, so the
// whole group is surfaced for manual resolution instead.
func (r *Resolver) Resolve(pairs []model.CandidatePair) Resolution {
	ordered := make([]model.CandidatePair, len(pairs))
	copy(ordered, pairs)
	sortPairs(ordered)

	states := make([]pairState, len(ordered))
	claimed := make(map[string]bool) // transaction IDs taken by a confirmed pair or conflict group

	var res Resolution
	for i, p := range ordered {
		if states[i] != statePending {
			continue
		}

		// A better match already claimed one side.
		if claimed[p.OutgoingID] || claimed[p.IncomingID] {
			states[i] = statePotential
			res.Potential = append(res.Potential, p)
			continue
		}

		if p.Confidence < r.threshold {
			states[i] = statePotential
			res.Potential = append(res.Potential, p)
			continue
		}

		rivals := r.rivalsOf(ordered, states, claimed, i)
		if len(rivals) == 0 {
			states[i] = stateConfirmed
			claimed[p.OutgoingID] = true
			claimed[p.IncomingID] = true
			res.Confirmed = append(res.Confirmed, p)
			continue
		}

		// Conflicts are reported only among above-threshold candidates.
		// A tie against a sub-threshold rival still blocks confirmation,
		// but both sides drop to potential instead.
		var tiedAbove []int
		for _, j := range rivals {
			if ordered[j].Confidence >= r.threshold {
				tiedAbove = append(tiedAbove, j)
			}
		}
		if len(tiedAbove) == 0 {
			states[i] = statePotential
			res.Potential = append(res.Potential, p)
			continue
		}

		group := model.ConflictGroup{Pairs: []model.CandidatePair{p}}
		states[i] = stateConflicted
		claimed[p.OutgoingID] = true
		claimed[p.IncomingID] = true
		for _, j := range tiedAbove {
			states[j] = stateConflicted
			claimed[ordered[j].OutgoingID] = true
			claimed[ordered[j].IncomingID] = true
			group.Pairs = append(group.Pairs, ordered[j])
		}
		res.Conflicts = append(res.Conflicts, group)
	}

	return res
}

// rivalsOf returns the indices of pending candidates that share a
// transaction with pair i and whose confidence lies within the tie margin.
// The tie test deliberately ignores the confirmation threshold: whether a
// rival ties must not change when the threshold moves, or raising the
// threshold could promote new confirmations. ordered is sorted descending,
// so only later pairs can be rivals.
func (r *Resolver) rivalsOf(ordered []model.CandidatePair, states []pairState, claimed map[string]bool, i int) []int {
	p := ordered[i]
	var rivals []int
	for j := i + 1; j < len(ordered); j++ {
		q := ordered[j]
		if states[j] != statePending {
			continue
		}
		if !q.Involves(p.OutgoingID) && !q.Involves(p.IncomingID) {
			continue
		}
		if claimed[q.OutgoingID] || claimed[q.IncomingID] {
			continue
		}
		if p.Confidence-q.Confidence <= r.tieMargin {
			rivals = append(rivals, j)
		}
	}
	return rivals
}

// sortPairs orders candidates by confidence descending, breaking ties by
// transaction IDs so output ordering never depends on insertion accidents.
func sortPairs(pairs []model.CandidatePair) {
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].Confidence != pairs[j].Confidence {
			return pairs[i].Confidence > pairs[j].Confidence
		}
		if pairs[i].OutgoingID != pairs[j].OutgoingID {
			return pairs[i].OutgoingID < pairs[j].OutgoingID
		}
		return pairs[i].IncomingID < pairs[j].IncomingID
	})
}
