// Package decisions persists user-confirmed transfer pairs between runs.
// The store is an append-only CSV; on the next reconciliation the recorded
// pairs are fed back as seed input so the engine pins them instead of
// re-scoring, and a user decision is never silently revisited.
package decisions

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/transfermatch-dev/transfermatch/internal/model"
)

// Decision is one row in the decision log.
type Decision struct {
	Timestamp  time.Time
	OutgoingID string
	IncomingID string
	Confidence float64
	DecidedBy  string // "auto" or "user"
	Notes      string
}

// Header is the CSV header for confirmed-transfers.csv.
const Header = "timestamp,outgoing_id,incoming_id,confidence,decided_by,notes"

const (
	numFields     = 6
	decisionsDir  = "decisions"
	decisionsFile = "decisions/confirmed-transfers.csv"
	colTimestamp  = 0
	colOutgoing   = 1
	colIncoming   = 2
	colConfidence = 3
	colDecidedBy  = 4
	colNotes      = 5
)

// MarshalDecision converts a Decision to a CSV row.
func MarshalDecision(d Decision) []string {
	row := make([]string, numFields)
	row[colTimestamp] = d.Timestamp.Format(time.RFC3339)
	row[colOutgoing] = d.OutgoingID
	row[colIncoming] = d.IncomingID
	row[colConfidence] = strconv.FormatFloat(d.Confidence, 'f', -1, 64)
	row[colDecidedBy] = d.DecidedBy
	row[colNotes] = d.Notes
	return row
}

// UnmarshalDecision converts a CSV row to a Decision.
func UnmarshalDecision(record []string) (Decision, error) {
	if len(record) != numFields {
		return Decision{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Decision{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	conf, err := strconv.ParseFloat(record[colConfidence], 64)
	if err != nil {
		return Decision{}, fmt.Errorf("parsing confidence %q: %w", record[colConfidence], err)
	}

	return Decision{
		Timestamp:  ts,
		OutgoingID: record[colOutgoing],
		IncomingID: record[colIncoming],
		Confidence: conf,
		DecidedBy:  record[colDecidedBy],
		Notes:      record[colNotes],
	}, nil
}

// Append writes decisions to <root>/decisions/confirmed-transfers.csv,
// creating the file and header if needed.
func Append(root string, ds []Decision) error {
	dir := filepath.Join(root, decisionsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating decisions dir: %w", err)
	}

	path := filepath.Join(root, decisionsFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening decision log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, d := range ds {
		if err := cw.Write(MarshalDecision(d)); err != nil {
			return fmt.Errorf("writing decision %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all decisions from <root>/decisions/confirmed-transfers.csv.
// Returns nil if the file does not exist.
func Read(root string) ([]Decision, error) {
	path := filepath.Join(root, decisionsFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening decision log: %w", err)
	}
	defer f.Close()

	return readDecisions(f)
}

func readDecisions(r io.Reader) ([]Decision, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading decision CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var ds []Decision
	for i, rec := range records[1:] {
		d, err := UnmarshalDecision(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		ds = append(ds, d)
	}
	return ds, nil
}

// Seeds converts decisions into seed pairs for the engine. Later decisions
// for the same transaction win, and each transaction ends up in at most one
// seed so the pinning invariant holds.
func Seeds(ds []Decision) []model.CandidatePair {
	var seeds []model.CandidatePair
	used := make(map[string]bool)
	for i := len(ds) - 1; i >= 0; i-- {
		d := ds[i]
		if used[d.OutgoingID] || used[d.IncomingID] {
			continue
		}
		used[d.OutgoingID] = true
		used[d.IncomingID] = true
		seeds = append(seeds, model.CandidatePair{
			OutgoingID: d.OutgoingID,
			IncomingID: d.IncomingID,
			Confidence: d.Confidence,
		})
	}
	// Restore chronological order after the reverse scan.
	for l, r := 0, len(seeds)-1; l < r; l, r = l+1, r-1 {
		seeds[l], seeds[r] = seeds[r], seeds[l]
	}
	return seeds
}
