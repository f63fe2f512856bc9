package engine

import (
	"github.com/transfermatch-dev/transfermatch/internal/model"
)

// buildTransferSet assembles the final output: pinned seeds first, then the
// run's own confirmations, plus the category override for every confirmed
// transaction. The override must win over any keyword-based categorization
// applied downstream; consumers are required to check Overrides before
// evaluating rules.
func buildTransferSet(seeds []model.CandidatePair, res Resolution, pairCategory string) *model.TransferSet {
	set := &model.TransferSet{
		Confirmed: make([]model.CandidatePair, 0, len(seeds)+len(res.Confirmed)),
		Potential: res.Potential,
		Conflicts: res.Conflicts,
		Overrides: make(map[string]string),
	}

	set.Confirmed = append(set.Confirmed, seeds...)
	set.Confirmed = append(set.Confirmed, res.Confirmed...)

	for _, p := range set.Confirmed {
		set.Overrides[p.OutgoingID] = pairCategory
		set.Overrides[p.IncomingID] = pairCategory
	}

	return set
}
