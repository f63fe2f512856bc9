package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/transfermatch-dev/transfermatch/internal/id"
	"github.com/transfermatch-dev/transfermatch/internal/model"
)

// NayaPayParser parses NayaPay wallet statement CSV exports. Amounts are
// unsigned; the TYPE column decides direction. Everything is PKR.
type NayaPayParser struct{}

const (
	nayapayDateFormat = "02 Jan 2006 03:04 PM"
	nayapayCurrency   = "PKR"
)

// Format returns the parser name.
func (p *NayaPayParser) Format() string { return "nayapay" }

// Idiom returns the description pattern set for NayaPay statements.
func (p *NayaPayParser) Idiom() string { return "nayapay" }

// Parse reads a NayaPay CSV and returns normalized Transactions.
func (p *NayaPayParser) Parse(r io.Reader, sourceAccount string) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading nayapay CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	idx := headerIndex(records[0])
	iTime := idx("TIMESTAMP")
	iType := idx("TYPE")
	iDesc := idx("DESCRIPTION")
	iAmount := idx("AMOUNT")
	if iTime < 0 || iType < 0 || iDesc < 0 || iAmount < 0 {
		return nil, fmt.Errorf("missing required headers in nayapay CSV (TIMESTAMP,TYPE,DESCRIPTION,AMOUNT)")
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		date, err := time.Parse(nayapayDateFormat, strings.TrimSpace(rec[iTime]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing timestamp %q: %w", i+2, rec[iTime], err)
		}

		raw := strings.ReplaceAll(strings.TrimSpace(rec[iAmount]), ",", "")
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount %q: %w", i+2, rec[iAmount], err)
		}

		// Debit rows are outgoing regardless of how the export signs them.
		txType := strings.ToLower(strings.TrimSpace(rec[iType]))
		if strings.Contains(txType, "debit") && amount.IsPositive() {
			amount = amount.Neg()
		}

		txns = append(txns, model.Transaction{
			ID:            id.FormatTransactionID(sourceAccount, i+1),
			SourceAccount: sourceAccount,
			Date:          date,
			Amount:        amount,
			Currency:      nayapayCurrency,
			Description:   strings.TrimSpace(rec[iDesc]),
			BankIdiom:     p.Idiom(),
		})
	}
	return txns, nil
}
