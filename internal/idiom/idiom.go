// Package idiom maps bank-specific description conventions to pattern sets
// used for transfer keyword detection and counterparty name extraction.
// Adding support for a new bank means registering a new PatternSet, not
// branching inside the scorer.
package idiom

import (
	"regexp"
	"strings"
)

// Generic is the fallback idiom: keyword-only matching, no name extraction.
const Generic = "generic"

// PatternSet holds the description patterns for one bank idiom. Outgoing and
// Incoming templates carry exactly one capture group for the counterparty
// name. Keywords are lowercase substrings that mark transfer-like rows.
type PatternSet struct {
	Name     string
	Outgoing []*regexp.Regexp
	Incoming []*regexp.Regexp
	Keywords []string
}

// Registry holds named pattern sets. Registration order is preserved so
// classification is deterministic.
type Registry struct {
	sets  map[string]*PatternSet
	order []string
}

// NewRegistry creates an empty pattern-set registry.
func NewRegistry() *Registry {
	return &Registry{sets: make(map[string]*PatternSet)}
}

// Register adds a pattern set. Panics on duplicate name.
func (r *Registry) Register(ps *PatternSet) {
	key := strings.ToLower(ps.Name)
	if _, ok := r.sets[key]; ok {
		panic("duplicate pattern set: " + key)
	}
	r.sets[key] = ps
	r.order = append(r.order, key)
}

// Get returns the pattern set for an idiom, falling back to generic for
// unknown names rather than failing.
func (r *Registry) Get(name string) *PatternSet {
	if ps, ok := r.sets[strings.ToLower(name)]; ok {
		return ps
	}
	return r.sets[Generic]
}

// Known reports whether an idiom name is registered.
func (r *Registry) Known(name string) bool {
	_, ok := r.sets[strings.ToLower(name)]
	return ok
}

// Classify selects the idiom for a transaction from the upstream hint and
// the source account name. Pure and deterministic: a registered hint wins,
// then account-name substrings, then generic.
func (r *Registry) Classify(sourceAccount, hint string) string {
	if hint != "" && r.Known(hint) {
		return strings.ToLower(hint)
	}
	account := strings.ToLower(sourceAccount)
	for _, name := range r.order {
		if name == Generic {
			continue
		}
		if strings.Contains(account, name) {
			return name
		}
	}
	return Generic
}

// ExtractName pulls the counterparty name out of a description using the
// direction-appropriate templates. Returns false when no template matches
// or the set has no name templates at all.
func (ps *PatternSet) ExtractName(description string, outgoing bool) (string, bool) {
	templates := ps.Incoming
	if outgoing {
		templates = ps.Outgoing
	}
	for _, re := range templates {
		m := re.FindStringSubmatch(description)
		if len(m) >= 2 && strings.TrimSpace(m[1]) != "" {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

// HasKeyword reports whether the description contains any of the set's
// transfer-indicating keywords.
func (ps *PatternSet) HasKeyword(description string) bool {
	desc := strings.ToLower(description)
	for _, kw := range ps.Keywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}

// NamesMatch reports whether two extracted names refer to the same person.
// The shorter token sequence must be a prefix of the longer one, which
// handles inconsistent abbreviation across statements ("Ammar" vs
// "Ammar Qazi" vs "Ammar Qazi Bank Alfalah").
func NamesMatch(a, b string) bool {
	ta := strings.Fields(strings.ToLower(a))
	tb := strings.Fields(strings.ToLower(b))
	if len(ta) == 0 || len(tb) == 0 {
		return false
	}
	if len(tb) < len(ta) {
		ta, tb = tb, ta
	}
	for i, tok := range ta {
		if tb[i] != tok {
			return false
		}
	}
	return true
}

// DefaultRegistry returns a registry with all built-in pattern sets.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(wisePatterns())
	r.Register(nayapayPatterns())
	r.Register(genericPatterns())
	return r
}

func wisePatterns() *PatternSet {
	return &PatternSet{
		Name: "wise",
		Outgoing: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^sent money to (.+)$`),
			regexp.MustCompile(`(?i)^transferred to (.+)$`),
		},
		Incoming: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^received money from (.+?) with reference .*$`),
			regexp.MustCompile(`(?i)^received money from (.+)$`),
		},
		Keywords: []string{"sent money", "received money", "transferred", "converted"},
	}
}

func nayapayPatterns() *PatternSet {
	return &PatternSet{
		Name: "nayapay",
		Outgoing: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^outgoing fund transfer to (.+)$`),
			regexp.MustCompile(`(?i)^money sent to (.+)$`),
			regexp.MustCompile(`(?i)^raast payment to (.+)$`),
		},
		Incoming: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^incoming fund transfer from (.+)$`),
			regexp.MustCompile(`(?i)^money received from (.+)$`),
			regexp.MustCompile(`(?i)^raast payment from (.+)$`),
		},
		Keywords: []string{"fund transfer", "money sent", "money received", "raast"},
	}
}

func genericPatterns() *PatternSet {
	return &PatternSet{
		Name:     Generic,
		Keywords: []string{"transfer", "sent", "received", "wire", "remittance"},
	}
}
