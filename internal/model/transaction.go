package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one parsed, normalized statement row. Transactions are
// read-only inputs to the reconciliation engine; results are attached
// externally, never written back into the struct.
type Transaction struct {
	// ID is stable within a batch, formed from source account + row index.
	ID            string          `json:"id"`
	SourceAccount string          `json:"source_account"`
	Date          time.Time       `json:"date"`
	Amount        decimal.Decimal `json:"amount"` // negative = outgoing
	Currency      string          `json:"currency"`

	// ExchangeAmount/ExchangeCurrency carry the converted value of a
	// cross-currency transfer when the statement records one (e.g. Wise
	// "Exchange To Amount"). ExchangeCurrency == "" means absent.
	ExchangeAmount   decimal.Decimal `json:"exchange_amount,omitempty"`
	ExchangeCurrency string          `json:"exchange_currency,omitempty"`

	Description string `json:"description"`

	// BankIdiom selects the description-pattern set used for name
	// extraction ("wise", "nayapay", ...). Empty means not yet classified.
	BankIdiom string `json:"bank_idiom,omitempty"`
}

// Outgoing reports whether the transaction moves money out of its account.
func (t Transaction) Outgoing() bool {
	return t.Amount.IsNegative()
}

// Incoming reports whether the transaction moves money into its account.
func (t Transaction) Incoming() bool {
	return t.Amount.IsPositive()
}

// HasExchange reports whether the row records a converted amount.
func (t Transaction) HasExchange() bool {
	return t.ExchangeCurrency != ""
}
