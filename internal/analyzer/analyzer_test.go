package analyzer

import (
	"testing"

	"github.com/chainguard-dev/chainguard/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestAnalyzeCleanProjectHasNoFailingFindings(t *testing.T) {
	ps := model.New("id", "name", "/tmp")
	ps.PushChangedFile("src/handler.go")

	report := Analyze(ps, []string{"*.sql"})
	assert.Equal(t, 1, report.ChangedFileCount)
	assert.Equal(t, 0, report.OutOfScopeCount)
	assert.Empty(t, report.SchemaFilesTouched)
	for _, f := range report.Findings {
		assert.True(t, f.Passed)
	}
}

func TestAnalyzeFlagsOutOfScopeFiles(t *testing.T) {
	ps := model.New("id", "name", "/tmp")
	ps.PushOutOfScopeFile("src/billing/invoice.go")

	report := Analyze(ps, nil)
	assert.Equal(t, 1, report.OutOfScopeCount)

	found := false
	for _, f := range report.Findings {
		if f.GuardName == "out_of_scope_files" {
			found = true
			assert.False(t, f.Passed)
			assert.Contains(t, f.Message, "invoice.go")
		}
	}
	assert.True(t, found)
}

func TestAnalyzeFlagsSchemaSensitiveFiles(t *testing.T) {
	ps := model.New("id", "name", "/tmp")
	ps.PushChangedFile("db/migration_20260101.sql")

	report := Analyze(ps, []string{"*.sql"})
	assert.Equal(t, []string{"db/migration_20260101.sql"}, report.SchemaFilesTouched)
}

func TestAnalyzeFlagsUnacknowledgedBlockingAlertsAsHardBlock(t *testing.T) {
	ps := model.New("id", "name", "/tmp")
	ps.AddAlert("dangerous migration detected", model.SeverityBlocking)

	report := Analyze(ps, nil)

	found := false
	for _, f := range report.Findings {
		if f.GuardName == "unacknowledged_alerts" {
			found = true
			assert.False(t, f.Passed)
			assert.Contains(t, f.Message, "dangerous migration detected")
		}
	}
	assert.True(t, found)
}

func TestAnalyzeOmitsAlertFindingWhenNoAlertsExist(t *testing.T) {
	ps := model.New("id", "name", "/tmp")
	report := Analyze(ps, nil)

	for _, f := range report.Findings {
		assert.NotEqual(t, "unacknowledged_alerts", f.GuardName)
	}
}
