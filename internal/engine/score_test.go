package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transfermatch-dev/transfermatch/internal/idiom"
	"github.com/transfermatch-dev/transfermatch/internal/model"
)

func newTestScorer() *Scorer {
	return NewScorer(idiom.DefaultRegistry(), []string{"Ammar Qazi"}, 72, 0.50)
}

func outgoing(account, amount, currency, desc string, day time.Time) model.Transaction {
	return model.Transaction{
		ID:            account + ":1",
		SourceAccount: account,
		Date:          day,
		Amount:        dec(amount),
		Currency:      currency,
		Description:   desc,
		BankIdiom:     idiom.Generic,
	}
}

func incoming(account, amount, currency, desc string, day time.Time) model.Transaction {
	t := outgoing(account, amount, currency, desc, day)
	t.ID = account + ":2"
	return t
}

func TestScore_AmountGateRejects(t *testing.T) {
	s := newTestScorer()
	day := date(2025, 3, 10)

	_, ok := s.Score(
		outgoing("a", "-100.00", "USD", "Transfer out", day),
		incoming("b", "99.50", "USD", "Transfer in", day),
	)
	assert.False(t, ok, "amount mismatch must reject the pair outright")

	_, ok = s.Score(
		outgoing("a", "-100.00", "USD", "Transfer out", day),
		incoming("b", "100.00", "EUR", "Transfer in", day),
	)
	assert.False(t, ok, "currency mismatch without exchange data must reject")
}

func TestScore_AmountWithinEpsilon(t *testing.T) {
	s := newTestScorer()
	day := date(2025, 3, 10)

	pair, ok := s.Score(
		outgoing("a", "-100.00", "USD", "Transfer out", day),
		incoming("b", "100.01", "USD", "Transfer in", day),
	)
	require.True(t, ok)
	assert.Contains(t, pair.Reasons, model.ReasonAmountMatch)
}

func TestScore_ExchangeAmountBothDirections(t *testing.T) {
	s := newTestScorer()
	day := date(2025, 3, 10)

	out := outgoing("a", "-108.99", "USD", "Transfer out", day)
	out.ExchangeAmount = dec("30000")
	out.ExchangeCurrency = "PKR"
	in := incoming("b", "30000", "PKR", "Transfer in", day)

	pair, ok := s.Score(out, in)
	require.True(t, ok)
	assert.Contains(t, pair.Reasons, model.ReasonExchangeAmountMatch)

	// Converted value recorded on the incoming side instead.
	out2 := outgoing("a", "-108.99", "USD", "Transfer out", day)
	in2 := incoming("b", "30000", "PKR", "Transfer in", day)
	in2.ExchangeAmount = dec("108.99")
	in2.ExchangeCurrency = "USD"

	pair2, ok := s.Score(out2, in2)
	require.True(t, ok)
	assert.Contains(t, pair2.Reasons, model.ReasonExchangeAmountMatch)
}

func TestScore_DateGate(t *testing.T) {
	s := newTestScorer()

	_, ok := s.Score(
		outgoing("a", "-75.00", "EUR", "Transfer out", date(2025, 3, 1)),
		incoming("b", "75.00", "EUR", "Transfer in", date(2025, 3, 10)),
	)
	assert.False(t, ok, "nine days exceeds a 72 hour tolerance")
}

func TestScore_CloserDatesScoreHigher(t *testing.T) {
	s := newTestScorer()

	sameDay, ok := s.Score(
		outgoing("a", "-50.00", "USD", "Transfer out", date(2025, 3, 10)),
		incoming("b", "50.00", "USD", "Transfer in", date(2025, 3, 10)),
	)
	require.True(t, ok)

	twoDays, ok := s.Score(
		outgoing("a", "-50.00", "USD", "Transfer out", date(2025, 3, 10)),
		incoming("b", "50.00", "USD", "Transfer in", date(2025, 3, 12)),
	)
	require.True(t, ok)

	assert.Greater(t, sameDay.Confidence, twoDays.Confidence)
}

func TestScore_NameBeatsKeywordOnly(t *testing.T) {
	s := newTestScorer()
	day := date(2025, 3, 10)

	withName := outgoing("a", "-500", "USD", "Sent money to John Smith", day)
	withName.BankIdiom = "wise"
	inWithName := incoming("b", "500", "USD", "Received money from John Smith", day)
	inWithName.BankIdiom = "wise"

	named, ok := s.Score(withName, inWithName)
	require.True(t, ok)
	assert.Contains(t, named.Reasons, model.ReasonNameMatch)

	keywordOnly, ok := s.Score(
		outgoing("a", "-500", "USD", "Wire transfer out", day),
		incoming("b", "500", "USD", "Wire transfer received", day),
	)
	require.True(t, ok)
	assert.Contains(t, keywordOnly.Reasons, model.ReasonKeywordMatch)
	assert.NotContains(t, keywordOnly.Reasons, model.ReasonNameMatch)

	assert.Greater(t, named.Confidence, keywordOnly.Confidence)
}

func TestScore_NoDescriptionSignalStillEligible(t *testing.T) {
	s := newTestScorer()
	day := date(2025, 3, 10)

	pair, ok := s.Score(
		outgoing("a", "-50.00", "USD", "", day),
		incoming("b", "50.00", "USD", "", day),
	)
	require.True(t, ok, "amount and date alone keep the pair eligible")
	assert.Less(t, pair.Confidence, 0.70, "but below auto-confirmation territory")
	assert.GreaterOrEqual(t, pair.Confidence, 0.50)
}

func TestScore_UserNameMatchOneSided(t *testing.T) {
	s := newTestScorer()
	day := date(2025, 3, 10)

	out := outgoing("a", "-500", "USD", "Sent money to Ammar Qazi", day)
	out.BankIdiom = "wise"
	in := incoming("b", "500", "USD", "Deposit", day)

	pair, ok := s.Score(out, in)
	require.True(t, ok)
	assert.Contains(t, pair.Reasons, model.ReasonNameMatch,
		"a one-sided name matching the statement owner counts as a name signal")
}

func TestScore_Symmetric(t *testing.T) {
	s := newTestScorer()

	out := outgoing("a", "-500", "USD", "Sent money to John Smith", date(2025, 3, 10))
	out.BankIdiom = "wise"
	in := incoming("b", "500", "USD", "Received money from John Smith", date(2025, 3, 11))
	in.BankIdiom = "wise"

	forward, ok := s.Score(out, in)
	require.True(t, ok)

	// Swap roles with amounts and dates mirrored identically.
	out2 := out
	out2.Amount = dec("500")
	out2.Description = "Received money from John Smith"
	out2.Date = date(2025, 3, 11)
	in2 := in
	in2.Amount = dec("-500")
	in2.Description = "Sent money to John Smith"
	in2.Date = date(2025, 3, 10)

	backward, ok := s.Score(in2, out2)
	require.True(t, ok)
	assert.Equal(t, forward.Confidence, backward.Confidence)
}

func TestScore_BelowFloorDiscarded(t *testing.T) {
	s := NewScorer(idiom.DefaultRegistry(), nil, 72, 0.70)
	day := date(2025, 3, 10)

	// Amount + date only: stays under a 0.70 floor and disappears.
	_, ok := s.Score(
		outgoing("a", "-50.00", "USD", "", day),
		incoming("b", "50.00", "USD", "", day),
	)
	assert.False(t, ok)
}
