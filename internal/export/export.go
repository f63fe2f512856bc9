// Package export writes the unified statement CSV and the confirmed
// transfers CSV produced by a reconciliation run.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/transfermatch-dev/transfermatch/internal/config"
	"github.com/transfermatch-dev/transfermatch/internal/model"
)

// Uncategorized is assigned when no override and no keyword rule applies.
const Uncategorized = "Uncategorized"

// Categorizer assigns a category to each transaction. The override map from
// the reconciliation engine always wins; keyword rules only apply to
// transactions that are not part of a confirmed transfer. This ordering is
// contractual: a confirmed transfer's category must not be revocable by
// rule evaluation.
type Categorizer struct {
	rules     []config.CategoryRule
	overrides map[string]string
}

// NewCategorizer creates a Categorizer from config rules and the engine's
// override map.
func NewCategorizer(rules []config.CategoryRule, overrides map[string]string) *Categorizer {
	return &Categorizer{rules: rules, overrides: overrides}
}

// Categorize returns the category for a transaction.
func (c *Categorizer) Categorize(t model.Transaction) string {
	if cat, ok := c.overrides[t.ID]; ok {
		return cat
	}
	desc := strings.ToLower(t.Description)
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(desc, strings.ToLower(kw)) {
				return rule.Name
			}
		}
	}
	return Uncategorized
}

// TransactionsHeader is the column header of the unified export.
var TransactionsHeader = []string{"id", "date", "account", "description", "amount", "currency", "category"}

// WriteTransactions writes the unified CSV of all transactions with their
// final categories.
func WriteTransactions(w io.Writer, txns []model.Transaction, cat *Categorizer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(TransactionsHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, t := range txns {
		row := []string{
			t.ID,
			t.Date.Format("2006-01-02"),
			t.SourceAccount,
			t.Description,
			t.Amount.StringFixed(2),
			t.Currency,
			cat.Categorize(t),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// TransfersHeader is the column header of the confirmed transfers export.
var TransfersHeader = []string{"outgoing_id", "incoming_id", "confidence", "reasons"}

// WriteTransfers writes the confirmed pairs of a TransferSet.
func WriteTransfers(w io.Writer, pairs []model.CandidatePair) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(TransfersHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, p := range pairs {
		reasons := make([]string, len(p.Reasons))
		for j, r := range p.Reasons {
			reasons[j] = string(r)
		}
		row := []string{
			p.OutgoingID,
			p.IncomingID,
			strconv.FormatFloat(p.Confidence, 'f', 2, 64),
			strings.Join(reasons, ";"),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// WriteTransactionsFile writes the unified export to a file path, creating
// parent directories as needed.
func WriteTransactionsFile(path string, txns []model.Transaction, cat *Categorizer) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteTransactions(f, txns, cat)
}

// WriteTransfersFile writes the transfers export to a file path.
func WriteTransfersFile(path string, pairs []model.CandidatePair) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteTransfers(f, pairs)
}

func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating export file %q: %w", path, err)
	}
	return f, nil
}
