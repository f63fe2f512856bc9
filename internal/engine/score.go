package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/transfermatch-dev/transfermatch/internal/idiom"
	"github.com/transfermatch-dev/transfermatch/internal/model"
)

// Signal weights. Amount agreement and date proximity are gates, so every
// surviving pair starts from the amount base; the description bonus is what
// separates auto-confirmable pairs from review candidates.
const (
	amountBase    = 0.50
	dateWeight    = 0.15
	nameBonus     = 0.30
	keywordBonus  = 0.15
	maxConfidence = 1.0
)

// amountEpsilon absorbs rounding differences between statements.
var amountEpsilon = decimal.RequireFromString("0.01")

// Scorer computes a confidence in [0,1] for (outgoing, incoming) candidate
// pairs by combining amount agreement, date proximity, and
// description-pattern agreement.
type Scorer struct {
	registry       *idiom.Registry
	userNames      []string
	toleranceHours int
	minConfidence  float64
}

// NewScorer creates a Scorer. userNames are the statement owner's name
// variants; a one-sided extracted name matching the owner still counts as a
// name signal, since self-transfers name the owner on whichever side the
// bank bothers to record.
func NewScorer(registry *idiom.Registry, userNames []string, toleranceHours int, minConfidence float64) *Scorer {
	return &Scorer{
		registry:       registry,
		userNames:      userNames,
		toleranceHours: toleranceHours,
		minConfidence:  minConfidence,
	}
}

// Score evaluates one outgoing/incoming candidate. The second return value
// is false when the pair fails a hard gate (amount, date) or scores below
// the discard floor, in which case the pair is dropped entirely.
func (s *Scorer) Score(out, in model.Transaction) (model.CandidatePair, bool) {
	amountReason, ok := amountSignal(out, in)
	if !ok {
		return model.CandidatePair{}, false
	}

	diff := out.Date.Sub(in.Date)
	if diff < 0 {
		diff = -diff
	}
	tolerance := time.Duration(s.toleranceHours) * time.Hour
	if diff > tolerance || tolerance <= 0 {
		return model.CandidatePair{}, false
	}

	// Closer dates score higher; a gap right at the tolerance edge
	// contributes nothing beyond passing the gate.
	closeness := 1 - float64(diff)/float64(tolerance)
	confidence := amountBase + dateWeight*closeness

	reasons := []model.Reason{amountReason, model.ReasonDateWithinTolerance}

	nameMatched, keywordMatched := s.descriptionSignal(out, in)
	switch {
	case nameMatched:
		confidence += nameBonus
		reasons = append(reasons, model.ReasonNameMatch)
		if keywordMatched {
			reasons = append(reasons, model.ReasonKeywordMatch)
		}
	case keywordMatched:
		confidence += keywordBonus
		reasons = append(reasons, model.ReasonKeywordMatch)
	}

	if confidence > maxConfidence {
		confidence = maxConfidence
	}
	if confidence < s.minConfidence {
		return model.CandidatePair{}, false
	}

	return model.CandidatePair{
		OutgoingID: out.ID,
		IncomingID: in.ID,
		Confidence: confidence,
		Reasons:    reasons,
	}, true
}

// amountSignal is the hard gate: either the plain amounts agree under a
// shared currency, or one side's recorded exchange amount agrees with the
// other side's amount. No FX-rate service is consulted; cross-currency
// transfers are only recognized when the statement itself recorded the
// converted value.
func amountSignal(out, in model.Transaction) (model.Reason, bool) {
	outAbs := out.Amount.Abs()

	if out.Currency == in.Currency && equalWithin(outAbs, in.Amount) {
		return model.ReasonAmountMatch, true
	}
	if out.HasExchange() && out.ExchangeCurrency == in.Currency && equalWithin(out.ExchangeAmount.Abs(), in.Amount) {
		return model.ReasonExchangeAmountMatch, true
	}
	if in.HasExchange() && in.ExchangeCurrency == out.Currency && equalWithin(in.ExchangeAmount.Abs(), outAbs) {
		return model.ReasonExchangeAmountMatch, true
	}
	return "", false
}

func equalWithin(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(amountEpsilon)
}

// descriptionSignal checks the two independent description signals: a
// person-name match via the idiom templates, and transfer-keyword presence
// on both sides.
func (s *Scorer) descriptionSignal(out, in model.Transaction) (nameMatched, keywordMatched bool) {
	outSet := s.registry.Get(out.BankIdiom)
	inSet := s.registry.Get(in.BankIdiom)

	keywordMatched = outSet.HasKeyword(out.Description) && inSet.HasKeyword(in.Description)

	outName, outOK := outSet.ExtractName(out.Description, true)
	inName, inOK := inSet.ExtractName(in.Description, false)

	switch {
	case outOK && inOK:
		nameMatched = idiom.NamesMatch(outName, inName)
	case outOK:
		nameMatched = s.matchesUser(outName)
	case inOK:
		nameMatched = s.matchesUser(inName)
	}
	return nameMatched, keywordMatched
}

func (s *Scorer) matchesUser(name string) bool {
	for _, variant := range s.userNames {
		if idiom.NamesMatch(name, variant) {
			return true
		}
	}
	return false
}
