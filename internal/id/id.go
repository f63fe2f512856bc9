// Package id formats and parses batch-stable transaction identifiers.
// An ID couples the source account with the row index in its statement
// file, e.g. "wise-usd:14", so the same input always yields the same IDs.
package id

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatTransactionID returns an ID like "wise-usd:14".
func FormatTransactionID(account string, row int) string {
	return fmt.Sprintf("%s:%d", account, row)
}

// ParseTransactionID splits "wise-usd:14" into account and row. The account
// part may itself contain colons; the row is everything after the last one.
func ParseTransactionID(id string) (account string, row int, err error) {
	i := strings.LastIndex(id, ":")
	if i <= 0 || i == len(id)-1 {
		return "", 0, fmt.Errorf("invalid transaction ID format: %q", id)
	}
	row, err = strconv.Atoi(id[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid row in transaction ID %q: %w", id, err)
	}
	return id[:i], row, nil
}
