package model

import "strings"

// TaskMode selects which validators, enforcements, and extra tools are
// active for a project (spec.md §4.3).
type TaskMode string

const (
	ModeProgramming TaskMode = "programming"
	ModeContent     TaskMode = "content"
	ModeDevops      TaskMode = "devops"
	ModeResearch    TaskMode = "research"
	ModeGeneric     TaskMode = "generic"
)

// ParseMode maps an arbitrary string onto a known TaskMode, falling back
// to ModeProgramming for anything unrecognized (spec.md §4.3: "Unknown
// mode strings fall back to programming").
func ParseMode(s string) TaskMode {
	switch TaskMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeContent:
		return ModeContent
	case ModeDevops:
		return ModeDevops
	case ModeResearch:
		return ModeResearch
	case ModeGeneric:
		return ModeGeneric
	case ModeProgramming:
		return ModeProgramming
	default:
		return ModeProgramming
	}
}

// ModeFeatures is the closed set of capabilities a mode turns on. It is a
// pure function of TaskMode — see Features().
type ModeFeatures struct {
	SyntaxValidation bool
	DBEnforcement    bool
	HTTPEnforcement  bool
	ScopeEnforcement bool
	FileTracking     bool
	WordCount        bool
	ChapterTracking  bool
	CommandLogging   bool
	Checkpoints      bool
	HealthChecks     bool
	SourceTracking   bool
	FactIndexing     bool
}

// Features returns the feature table row for mode (spec.md §4.3 table).
func Features(mode TaskMode) ModeFeatures {
	switch mode {
	case ModeProgramming:
		return ModeFeatures{
			SyntaxValidation: true,
			DBEnforcement:    true,
			HTTPEnforcement:  true,
			ScopeEnforcement: true,
			FileTracking:     true,
		}
	case ModeContent:
		return ModeFeatures{
			FileTracking:    true,
			WordCount:       true,
			ChapterTracking: true,
		}
	case ModeDevops:
		return ModeFeatures{
			HTTPEnforcement:  true,
			ScopeEnforcement: true,
			FileTracking:     true,
			CommandLogging:   true,
			Checkpoints:      true,
			HealthChecks:     true,
		}
	case ModeResearch:
		return ModeFeatures{
			SourceTracking: true,
			FactIndexing:   true,
		}
	case ModeGeneric:
		return ModeFeatures{
			FileTracking: true,
		}
	default:
		return Features(ModeProgramming)
	}
}

// Preamble returns the mode-specific instructions emitted alongside
// set_scope (spec.md §4.3: "the system emits a mode-specific preamble").
func Preamble(mode TaskMode) string {
	switch mode {
	case ModeProgramming:
		return "Programming mode: every file write is syntax-checked, schema-affecting " +
			"files require a fresh db_schema inspection, and finish requires passing " +
			"tests and acknowledged alerts."
	case ModeContent:
		return "Content mode: syntax and DB checks are off. Use word_count and " +
			"track_chapter to keep prose metrics current."
	case ModeDevops:
		return "Devops mode: log every shell command with log_command, checkpoint " +
			"state before risky changes, and run health_check after deploys."
	case ModeResearch:
		return "Research mode: add_source and index_fact as you go so the sources " +
			"and facts tools can list prior findings."
	default:
		return "Generic mode: file tracking only, no specialized enforcement."
	}
}
