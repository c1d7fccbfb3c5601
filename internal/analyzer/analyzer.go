// Package analyzer generates the impact report the completion gate
// requires before finish (spec.md §4.5 "Impact analysis"), reusing
// guards.Result's severity vocabulary so a report reads the same way
// a guard outcome does.
package analyzer

import (
	"path/filepath"
	"strings"

	"github.com/chainguard-dev/chainguard/internal/guards"
	"github.com/chainguard-dev/chainguard/internal/model"
)

// Report summarizes the risk surface of a project's changed files.
type Report struct {
	ChangedFileCount  int             `json:"changed_file_count"`
	OutOfScopeCount   int             `json:"out_of_scope_count"`
	Findings          []guards.Result `json:"findings"`
	SchemaFilesTouched []string       `json:"schema_files_touched,omitempty"`
}

// schemaPatternMatch reports whether path looks like a schema-sensitive
// file, using the same glob patterns config.Schema.Patterns configures.
func schemaPatternMatch(patterns []string, path string) bool {
	base := filepath.Base(path)
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
	}
	return false
}

// Analyze inspects a project's changed/out-of-scope file lists and
// produces an impact report. It does not mutate project state; callers
// are responsible for marking ImpactCheckPending=false afterward.
func Analyze(ps *model.ProjectState, schemaPatterns []string) Report {
	report := Report{
		ChangedFileCount: len(ps.ChangedFiles),
		OutOfScopeCount:  len(ps.OutOfScopeFiles),
	}

	if len(ps.OutOfScopeFiles) > 0 {
		report.Findings = append(report.Findings, guards.Fail(
			"out_of_scope_files", guards.Warning,
			summarizeFiles("files were touched outside the declared scope", ps.OutOfScopeFiles),
			"Review whether these edits belong in a separate scope.",
		))
	} else {
		report.Findings = append(report.Findings, guards.Pass("out_of_scope_files"))
	}

	var schemaHits []string
	for _, f := range ps.ChangedFiles {
		if schemaPatternMatch(schemaPatterns, f) {
			schemaHits = append(schemaHits, f)
		}
	}
	report.SchemaFilesTouched = schemaHits
	if len(schemaHits) > 0 {
		report.Findings = append(report.Findings, guards.Fail(
			"schema_files_touched", guards.Warning,
			summarizeFiles("schema-sensitive files were changed", schemaHits),
			"Confirm db_schema reflects these changes before finishing.",
		))
	} else {
		report.Findings = append(report.Findings, guards.Pass("schema_files_touched"))
	}

	if len(ps.Alerts) > 0 {
		blocking := ps.UnacknowledgedBlockingAlerts()
		if len(blocking) > 0 {
			report.Findings = append(report.Findings, guards.Fail(
				"unacknowledged_alerts", guards.HardBlock,
				summarizeAlerts(blocking),
				"Acknowledge these alerts with clear_alerts.",
			))
		} else {
			report.Findings = append(report.Findings, guards.Pass("unacknowledged_alerts"))
		}
	}

	return report
}

func summarizeFiles(label string, files []string) string {
	return label + ": " + strings.Join(files, ", ")
}

func summarizeAlerts(alerts []model.Alert) string {
	msgs := make([]string, len(alerts))
	for i, a := range alerts {
		msgs[i] = a.Message
	}
	return strings.Join(msgs, "; ")
}
