package model

import (
	"time"

	"github.com/gobwas/glob"
)

// MaxScopeDescriptionLen is the truncation point for ScopeDefinition.Description
// (spec.md §3: "≤ 500 chars, truncated with warning").
const MaxScopeDescriptionLen = 500

// ChecklistItem is one entry of a ScopeDefinition's checklist.
type ChecklistItem struct {
	Item  string `json:"item"`
	Check string `json:"check"`
}

// ScopeDefinition binds a mode, acceptance criteria, a checklist, and
// module globs for the duration of a task (spec.md §3).
type ScopeDefinition struct {
	Description         string          `json:"description"`
	Modules             []string        `json:"modules"`
	AcceptanceCriteria  []string        `json:"acceptance_criteria"`
	Checklist           []ChecklistItem `json:"checklist"`
	CreatedAt           time.Time       `json:"created_at"`
	DescriptionTruncated bool           `json:"description_truncated,omitempty"`

	compiled []glob.Glob
}

// NewScope builds a ScopeDefinition, truncating an overlong description
// and pre-compiling the module globs once rather than on every match.
func NewScope(description string, modules, acceptanceCriteria []string, checklist []ChecklistItem) *ScopeDefinition {
	truncated := false
	if len(description) > MaxScopeDescriptionLen {
		description = description[:MaxScopeDescriptionLen]
		truncated = true
	}

	s := &ScopeDefinition{
		Description:          description,
		Modules:              modules,
		AcceptanceCriteria:   acceptanceCriteria,
		Checklist:            checklist,
		CreatedAt:            time.Now().UTC(),
		DescriptionTruncated: truncated,
	}
	s.compileGlobs()
	return s
}

func (s *ScopeDefinition) compileGlobs() {
	s.compiled = make([]glob.Glob, 0, len(s.Modules))
	for _, pattern := range s.Modules {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			// An unparsable pattern never matches rather than panicking a handler.
			continue
		}
		s.compiled = append(s.compiled, g)
	}
}

// Matches reports whether relPath falls inside this scope's declared
// modules. An empty module list matches nothing (everything is
// "out of scope" until modules are declared).
func (s *ScopeDefinition) Matches(relPath string) bool {
	if s == nil {
		return false
	}
	if len(s.compiled) == 0 && len(s.Modules) > 0 {
		s.compileGlobs()
	}
	for _, g := range s.compiled {
		if g.Match(relPath) {
			return true
		}
	}
	return false
}
