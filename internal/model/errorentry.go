package model

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// MaxErrorIndexEntries bounds the per-project error index (spec.md §3,
// §4.7: "Bounded to 100 entries per project (FIFO on overflow)").
const MaxErrorIndexEntries = 100

// SimilarityThreshold and AutoSuggestMaxResults pin the ambiguous
// constants spec.md §4.7 and §9 leave to the implementation.
const (
	SimilarityThreshold   = 0.6
	AutoSuggestMaxResults = 2
)

// ErrorEntry is one indexed validation failure (spec.md §3).
type ErrorEntry struct {
	Timestamp  time.Time `json:"ts"`
	FilePattern string   `json:"file_pattern"`
	ErrorType  string    `json:"error_type"`
	ErrorMsg   string    `json:"error_msg"`
	ScopeDesc  string    `json:"scope_desc"`
	ProjectID  string    `json:"project_id"`
	Resolution string    `json:"resolution,omitempty"`
}

var camelWordRegex = regexp.MustCompile(`[A-Z][a-z0-9]*`)

// FilePatternOf derives the FIFO index key for path by replacing the
// non-suffix stem with "*" (spec.md §3: "UserController.php → *Controller.php").
//
// Tokenization/derivation rule frozen here per spec.md §9 note (a): take
// the last CamelCase word of the filename stem as the suffix; if the
// stem has no CamelCase boundary, the whole stem collapses to "*".
func FilePatternOf(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	words := camelWordRegex.FindAllString(stem, -1)
	if len(words) == 0 {
		return "*" + ext
	}
	return "*" + words[len(words)-1] + ext
}

// tokenize lowercases and splits on anything that isn't a letter or digit.
var tokenSplitRegex = regexp.MustCompile(`[^a-z0-9]+`)

func tokenize(s string) map[string]struct{} {
	s = strings.ToLower(s)
	parts := tokenSplitRegex.Split(s, -1)
	set := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		if p != "" {
			set[p] = struct{}{}
		}
	}
	return set
}

// jaccard returns the token-overlap ratio in [0,1].
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Matches scores query against this entry in [0,1], combining
// token-overlap with ErrorMsg (weight 0.6), FilePattern (0.25), and
// ScopeDesc (0.15) — frozen per spec.md §9 note (a).
func (e ErrorEntry) Matches(query string) float64 {
	q := tokenize(query)
	score := 0.6*jaccard(q, tokenize(e.ErrorMsg)) +
		0.25*jaccard(q, tokenize(e.FilePattern)) +
		0.15*jaccard(q, tokenize(e.ScopeDesc))
	if score > 1 {
		score = 1
	}
	return score
}
