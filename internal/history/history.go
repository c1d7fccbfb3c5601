// Package history manages a project's append-only action log
// (history.jsonl) and its bounded error-recall index (error_index.json),
// per spec.md §4.6 "History and error recall".
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/chainguard-dev/chainguard/internal/model"
)

// Store owns the two files backing one project's history.
type Store struct {
	HistoryPath    string
	ErrorIndexPath string
}

// New returns a Store rooted at the given paths (typically
// project.Manager.HistoryPath / ErrorIndexPath for a given project ID).
func New(historyPath, errorIndexPath string) *Store {
	return &Store{HistoryPath: historyPath, ErrorIndexPath: errorIndexPath}
}

// Append writes one entry to history.jsonl, creating the file and its
// directory if needed. The log is append-only: entries are never
// rewritten or reordered (spec.md §4.6 invariant).
func (s *Store) Append(entry model.HistoryEntry) error {
	if err := os.MkdirAll(filepath.Dir(s.HistoryPath), 0o755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}
	f, err := os.OpenFile(s.HistoryPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening history log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling history entry: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing history entry: %w", err)
	}
	return nil
}

// Recent returns the last n entries from history.jsonl, most recent last.
func (s *Store) Recent(n int) ([]model.HistoryEntry, error) {
	f, err := os.Open(s.HistoryPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening history log: %w", err)
	}
	defer f.Close()

	var all []model.HistoryEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var e model.HistoryEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue // skip corrupt lines rather than fail the whole read
		}
		all = append(all, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning history log: %w", err)
	}

	if n <= 0 || n >= len(all) {
		return all, nil
	}
	return all[len(all)-n:], nil
}

// errorIndexDoc is the on-disk shape of error_index.json: a flat,
// capacity-bounded list of entries (spec.md §4.6 "capped at 100,
// oldest evicted first").
type errorIndexDoc struct {
	Entries []model.ErrorEntry `json:"entries"`
}

// loadErrorIndex reads error_index.json, returning an empty document on
// a missing or corrupt file.
func (s *Store) loadErrorIndex() errorIndexDoc {
	data, err := os.ReadFile(s.ErrorIndexPath)
	if err != nil {
		return errorIndexDoc{}
	}
	var doc errorIndexDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return errorIndexDoc{}
	}
	return doc
}

func (s *Store) saveErrorIndex(doc errorIndexDoc) error {
	if err := os.MkdirAll(filepath.Dir(s.ErrorIndexPath), 0o755); err != nil {
		return fmt.Errorf("creating error index dir: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling error index: %w", err)
	}
	tmp := s.ErrorIndexPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing error index temp file: %w", err)
	}
	return os.Rename(tmp, s.ErrorIndexPath)
}

// RecordError appends a resolved-or-pending error entry to the index,
// evicting the oldest entry first once at capacity.
func (s *Store) RecordError(entry model.ErrorEntry) error {
	doc := s.loadErrorIndex()
	doc.Entries = append(doc.Entries, entry)
	if len(doc.Entries) > model.MaxErrorIndexEntries {
		doc.Entries = doc.Entries[len(doc.Entries)-model.MaxErrorIndexEntries:]
	}
	return s.saveErrorIndex(doc)
}

// ScoredEntry pairs an ErrorEntry with its similarity score against a query.
type ScoredEntry struct {
	Entry model.ErrorEntry `json:"entry"`
	Score float64          `json:"score"`
}

// FindSimilar returns up to model.AutoSuggestMaxResults entries scoring
// at or above model.SimilarityThreshold against query, highest first
// (spec.md §4.6 "find_similar_errors").
func (s *Store) FindSimilar(query string) []ScoredEntry {
	doc := s.loadErrorIndex()

	var scored []ScoredEntry
	for _, e := range doc.Entries {
		if score := e.Matches(query); score >= model.SimilarityThreshold {
			scored = append(scored, ScoredEntry{Entry: e, Score: score})
		}
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if len(scored) > model.AutoSuggestMaxResults {
		scored = scored[:model.AutoSuggestMaxResults]
	}
	return scored
}
