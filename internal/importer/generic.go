package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/transfermatch-dev/transfermatch/internal/id"
	"github.com/transfermatch-dev/transfermatch/internal/idiom"
	"github.com/transfermatch-dev/transfermatch/internal/model"
)

// GenericParser handles plain Date,Description,Amount[,Currency] exports
// from banks without a dedicated parser. Rows get the generic idiom:
// keyword-only description matching, no name extraction.
type GenericParser struct{}

const genericDateFormat = "2006-01-02"

// Format returns the parser name.
func (p *GenericParser) Format() string { return "generic" }

// Idiom returns the fallback description pattern set.
func (p *GenericParser) Idiom() string { return idiom.Generic }

// Parse reads a generic CSV and returns normalized Transactions.
func (p *GenericParser) Parse(r io.Reader, sourceAccount string) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading generic CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	idx := headerIndex(records[0])
	iDate := idx("Date")
	iDesc := idx("Description")
	iAmount := idx("Amount")
	iCurrency := idx("Currency")
	if iDate < 0 || iDesc < 0 || iAmount < 0 {
		return nil, fmt.Errorf("missing required headers in generic CSV (Date,Description,Amount)")
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		date, err := time.Parse(genericDateFormat, strings.TrimSpace(rec[iDate]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date %q: %w", i+2, rec[iDate], err)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(rec[iAmount]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount %q: %w", i+2, rec[iAmount], err)
		}

		currency := ""
		if iCurrency >= 0 {
			currency = strings.ToUpper(strings.TrimSpace(rec[iCurrency]))
		}

		txns = append(txns, model.Transaction{
			ID:            id.FormatTransactionID(sourceAccount, i+1),
			SourceAccount: sourceAccount,
			Date:          date,
			Amount:        amount,
			Currency:      currency,
			Description:   strings.TrimSpace(rec[iDesc]),
			BankIdiom:     p.Idiom(),
		})
	}
	return txns, nil
}
