package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/transfermatch-dev/transfermatch/internal/model"
)

// Parser converts one bank's statement CSV into normalized Transactions.
// Parsers assign batch-stable IDs and tag rows with the bank idiom used
// later for description-pattern matching.
type Parser interface {
	Parse(r io.Reader, sourceAccount string) ([]model.Transaction, error)
	Format() string
	Idiom() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a CSV file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&WiseParser{})
	r.Register(&NayaPayParser{})
	r.Register(&GenericParser{})
	return r
}

// Detect guesses the statement format from a file name. Unknown names fall
// back to the generic parser.
func Detect(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "wise"):
		return "wise"
	case strings.Contains(lower, "nayapay"):
		return "nayapay"
	default:
		return "generic"
	}
}

// importDir is the subdirectory holding statement CSVs awaiting import.
const importDir = "import"

// Scan returns CSV files in <root>/import/.
func Scan(root string) ([]FileInfo, error) {
	dir := filepath.Join(root, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// SourceAccount derives the account tag from a statement file name:
// "wise-usd.csv" -> "wise-usd".
func SourceAccount(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// headerIndex builds a case-insensitive column lookup from a header row.
func headerIndex(head []string) func(name string) int {
	return func(name string) int {
		for i, h := range head {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
		return -1
	}
}
