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

// WiseParser parses Wise (TransferWise) statement CSV exports. Wise records
// the converted value of cross-currency transfers in the "Exchange To" /
// "Exchange To Amount" columns, which is what lets the reconciliation
// engine match a USD debit against a PKR credit without an FX service.
type WiseParser struct{}

const wiseDateFormat = "02-01-2006"

// Format returns the parser name.
func (p *WiseParser) Format() string { return "wise" }

// Idiom returns the description pattern set for Wise statements.
func (p *WiseParser) Idiom() string { return "wise" }

// Parse reads a Wise CSV and returns normalized Transactions.
func (p *WiseParser) Parse(r io.Reader, sourceAccount string) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading wise CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	idx := headerIndex(records[0])
	iDate := idx("Date")
	iAmount := idx("Amount")
	iCurrency := idx("Currency")
	iDesc := idx("Description")
	iExchCur := idx("Exchange To")
	iExchAmt := idx("Exchange To Amount")
	if iDate < 0 || iAmount < 0 || iCurrency < 0 || iDesc < 0 {
		return nil, fmt.Errorf("missing required headers in wise CSV (Date,Amount,Currency,Description)")
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		date, err := time.Parse(wiseDateFormat, strings.TrimSpace(rec[iDate]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date %q: %w", i+2, rec[iDate], err)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(rec[iAmount]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount %q: %w", i+2, rec[iAmount], err)
		}

		t := model.Transaction{
			ID:            id.FormatTransactionID(sourceAccount, i+1),
			SourceAccount: sourceAccount,
			Date:          date,
			Amount:        amount,
			Currency:      strings.ToUpper(strings.TrimSpace(rec[iCurrency])),
			Description:   strings.TrimSpace(rec[iDesc]),
			BankIdiom:     p.Idiom(),
		}

		if iExchCur >= 0 && iExchAmt >= 0 {
			exchCur := strings.ToUpper(strings.TrimSpace(rec[iExchCur]))
			exchRaw := strings.TrimSpace(rec[iExchAmt])
			if exchCur != "" && exchRaw != "" {
				exch, err := decimal.NewFromString(exchRaw)
				if err != nil {
					return nil, fmt.Errorf("row %d: parsing exchange amount %q: %w", i+2, exchRaw, err)
				}
				t.ExchangeAmount = exch
				t.ExchangeCurrency = exchCur
			}
		}

		txns = append(txns, t)
	}
	return txns, nil
}
