package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transfermatch-dev/transfermatch/internal/config"
	"github.com/transfermatch-dev/transfermatch/internal/idiom"
	"github.com/transfermatch-dev/transfermatch/internal/logging"
	"github.com/transfermatch-dev/transfermatch/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := config.Default("Ammar Qazi")
	return New(cfg, idiom.DefaultRegistry(), logging.Nop())
}

func TestReconcile_CrossCurrencyTransfer(t *testing.T) {
	txns := []model.Transaction{
		{
			ID:               "wise-usd:1",
			SourceAccount:    "wise-usd",
			Date:             date(2025, 3, 10),
			Amount:           dec("-108.99"),
			Currency:         "USD",
			ExchangeAmount:   dec("30000"),
			ExchangeCurrency: "PKR",
			Description:      "Sent money to Ammar Qazi",
			BankIdiom:        "wise",
		},
		{
			ID:            "nayapay:1",
			SourceAccount: "nayapay",
			Date:          date(2025, 3, 10),
			Amount:        dec("30000"),
			Currency:      "PKR",
			Description:   "Incoming fund transfer from Ammar Qazi Bank Alfalah",
			BankIdiom:     "nayapay",
		},
	}

	set, err := newTestEngine(t).Reconcile(txns, nil)
	require.NoError(t, err)

	require.Len(t, set.Confirmed, 1)
	assert.Empty(t, set.Potential)
	assert.Empty(t, set.Conflicts)

	pair := set.Confirmed[0]
	assert.Equal(t, "wise-usd:1", pair.OutgoingID)
	assert.Equal(t, "nayapay:1", pair.IncomingID)
	assert.GreaterOrEqual(t, pair.Confidence, 0.9)
	assert.Contains(t, pair.Reasons, model.ReasonExchangeAmountMatch)
	assert.Contains(t, pair.Reasons, model.ReasonDateWithinTolerance)
	assert.Contains(t, pair.Reasons, model.ReasonNameMatch)

	assert.Equal(t, "Balance Correction", set.Overrides["wise-usd:1"])
	assert.Equal(t, "Balance Correction", set.Overrides["nayapay:1"])
}

func TestReconcile_AmbiguousDuplicates(t *testing.T) {
	// Two identical outgoing transfers competing for one incoming row must
	// never be auto-picked.
	txns := []model.Transaction{
		{
			ID:            "a:1",
			SourceAccount: "a",
			Date:          date(2025, 3, 10),
			Amount:        dec("-500"),
			Currency:      "USD",
			Description:   "Sent money to John Smith",
			BankIdiom:     "wise",
		},
		{
			ID:            "b:1",
			SourceAccount: "b",
			Date:          date(2025, 3, 10),
			Amount:        dec("-500"),
			Currency:      "USD",
			Description:   "Sent money to John Smith",
			BankIdiom:     "wise",
		},
		{
			ID:            "c:1",
			SourceAccount: "c",
			Date:          date(2025, 3, 10),
			Amount:        dec("500"),
			Currency:      "USD",
			Description:   "Received money from John Smith",
			BankIdiom:     "wise",
		},
	}

	set, err := newTestEngine(t).Reconcile(txns, nil)
	require.NoError(t, err)

	assert.Empty(t, set.Confirmed)
	require.Len(t, set.Conflicts, 1)
	assert.Len(t, set.Conflicts[0].Pairs, 2)
	assert.Empty(t, set.Overrides)
}

func TestReconcile_DateGateRejects(t *testing.T) {
	// Nine days apart with a 72 hour tolerance: no candidate at all.
	txns := []model.Transaction{
		{
			ID:            "a:1",
			SourceAccount: "a",
			Date:          date(2025, 3, 1),
			Amount:        dec("-75.00"),
			Currency:      "EUR",
			Description:   "Transfer out",
		},
		{
			ID:            "b:1",
			SourceAccount: "b",
			Date:          date(2025, 3, 10),
			Amount:        dec("75.00"),
			Currency:      "EUR",
			Description:   "Transfer in",
		},
	}

	set, err := newTestEngine(t).Reconcile(txns, nil)
	require.NoError(t, err)

	assert.Empty(t, set.Confirmed)
	assert.Empty(t, set.Potential)
	assert.Empty(t, set.Conflicts)
}

func TestReconcile_UnmatchedPurchaseStaysOut(t *testing.T) {
	txns := []model.Transaction{
		{
			ID:            "a:1",
			SourceAccount: "a",
			Date:          date(2025, 3, 5),
			Amount:        dec("-40.00"),
			Currency:      "USD",
			Description:   "Card purchase at Lidl",
		},
	}

	set, err := newTestEngine(t).Reconcile(txns, nil)
	require.NoError(t, err)

	assert.Empty(t, set.Confirmed)
	assert.Empty(t, set.Potential)
	assert.Empty(t, set.Conflicts)
}

func TestReconcile_SkipsUnusableRows(t *testing.T) {
	txns := []model.Transaction{
		{
			ID:            "a:1",
			SourceAccount: "a",
			Amount:        dec("-50"), // zero date
			Currency:      "USD",
		},
		{
			ID:            "b:1",
			SourceAccount: "b",
			Date:          date(2025, 3, 5),
			Amount:        dec("50"),
			Currency:      "USD",
		},
	}

	// The batch must not abort because of one unusable row.
	set, err := newTestEngine(t).Reconcile(txns, nil)
	require.NoError(t, err)
	assert.Empty(t, set.Confirmed)
}

func TestReconcile_Idempotence(t *testing.T) {
	txns := sampleBatch()
	eng := newTestEngine(t)

	first, err := eng.Reconcile(txns, nil)
	require.NoError(t, err)
	second, err := eng.Reconcile(txns, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestReconcile_OrderIndependence(t *testing.T) {
	txns := sampleBatch()
	reversed := make([]model.Transaction, len(txns))
	for i, tx := range txns {
		reversed[len(txns)-1-i] = tx
	}

	eng := newTestEngine(t)
	a, err := eng.Reconcile(txns, nil)
	require.NoError(t, err)
	b, err := eng.Reconcile(reversed, nil)
	require.NoError(t, err)

	assert.Equal(t, a.Confirmed, b.Confirmed)
	assert.Equal(t, a.Potential, b.Potential)
	assert.Equal(t, a.Conflicts, b.Conflicts)
	assert.Equal(t, a.Overrides, b.Overrides)
}

func TestReconcile_ConfirmedUniqueness(t *testing.T) {
	set, err := newTestEngine(t).Reconcile(sampleBatch(), nil)
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, p := range set.Confirmed {
		seen[p.OutgoingID]++
		seen[p.IncomingID]++
	}
	for txID, n := range seen {
		assert.Equal(t, 1, n, "transaction %s appears in %d confirmed pairs", txID, n)
	}
}

func TestReconcile_PinnedSeedsCarriedVerbatim(t *testing.T) {
	txns := sampleBatch()
	eng := newTestEngine(t)

	first, err := eng.Reconcile(txns, nil)
	require.NoError(t, err)
	require.NotEmpty(t, first.Confirmed)

	// Feed the confirmed set back as seeds with extra unrelated rows added.
	extra := append([]model.Transaction{}, txns...)
	extra = append(extra, model.Transaction{
		ID:            "extra:1",
		SourceAccount: "extra",
		Date:          date(2025, 3, 11),
		Amount:        dec("-9.99"),
		Currency:      "USD",
		Description:   "Coffee",
	})

	second, err := eng.Reconcile(extra, first.Confirmed)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(second.Confirmed), len(first.Confirmed))
	for i, seed := range first.Confirmed {
		assert.Equal(t, seed, second.Confirmed[i], "seed %d must be carried verbatim", i)
	}
}

func TestReconcile_SeedUnknownTransaction(t *testing.T) {
	txns := sampleBatch()
	seeds := []model.CandidatePair{{OutgoingID: "nope:1", IncomingID: txns[1].ID}}

	_, err := newTestEngine(t).Reconcile(txns, seeds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown transaction")
}

func TestReconcile_SeedSignViolation(t *testing.T) {
	txns := sampleBatch()
	// Outgoing and incoming swapped.
	seeds := []model.CandidatePair{{OutgoingID: "nayapay:1", IncomingID: "wise-usd:1"}}

	_, err := newTestEngine(t).Reconcile(txns, seeds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sign invariant")
}

func TestReconcile_ThresholdMonotonicity(t *testing.T) {
	txns := sampleBatch()

	run := func(threshold float64) *model.TransferSet {
		cfg := config.Default("Ammar Qazi")
		cfg.Matching.ConfidenceThreshold = threshold
		eng := New(cfg, idiom.DefaultRegistry(), logging.Nop())
		set, err := eng.Reconcile(txns, nil)
		require.NoError(t, err)
		return set
	}

	low := run(0.70)
	high := run(0.90)

	assert.LessOrEqual(t, len(high.Confirmed), len(low.Confirmed))
	lowFlagged := len(low.Potential) + len(low.Conflicts)
	highFlagged := len(high.Potential) + len(high.Conflicts)
	assert.GreaterOrEqual(t, highFlagged, lowFlagged)
}

// sampleBatch mixes a clean cross-currency transfer, a same-currency
// transfer without description signal, and unrelated spending.
func sampleBatch() []model.Transaction {
	return []model.Transaction{
		{
			ID:               "wise-usd:1",
			SourceAccount:    "wise-usd",
			Date:             date(2025, 3, 10),
			Amount:           dec("-108.99"),
			Currency:         "USD",
			ExchangeAmount:   dec("30000"),
			ExchangeCurrency: "PKR",
			Description:      "Sent money to Ammar Qazi",
			BankIdiom:        "wise",
		},
		{
			ID:            "nayapay:1",
			SourceAccount: "nayapay",
			Date:          date(2025, 3, 10),
			Amount:        dec("30000"),
			Currency:      "PKR",
			Description:   "Incoming fund transfer from Ammar Qazi Bank Alfalah",
			BankIdiom:     "nayapay",
		},
		{
			ID:            "chase:1",
			SourceAccount: "chase",
			Date:          date(2025, 3, 12),
			Amount:        dec("-200.00"),
			Currency:      "USD",
			Description:   "Online payment",
		},
		{
			ID:            "wise-usd:2",
			SourceAccount: "wise-usd",
			Date:          date(2025, 3, 13),
			Amount:        dec("200.00"),
			Currency:      "USD",
			Description:   "Deposit",
		},
		{
			ID:            "chase:2",
			SourceAccount: "chase",
			Date:          date(2025, 3, 14),
			Amount:        dec("-12.50"),
			Currency:      "USD",
			Description:   "Card purchase at Lidl",
		},
	}
}
