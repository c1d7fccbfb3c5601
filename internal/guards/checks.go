package guards

import "context"

// ScopeRequired enforces the scope gate: every tool outside the
// always-allowed set requires set_scope to have been called first
// (spec.md §4.2 "Scope gate"). HARD_BLOCK — there is no force override,
// since proceeding without a scope defeats the entire coordination model.
var ScopeRequired = NewGuardFunc("scope_required", func(_ context.Context, gctx *GuardContext) Result {
	if gctx.HasScope {
		return Pass("scope_required")
	}
	return Fail("scope_required", HardBlock,
		"No scope is set for this project. Every tool call outside the always-allowed set requires an active scope.",
		"Call set_scope with a description, modules, and acceptance criteria before retrying.",
	)
})

// SchemaFreshnessRequired blocks edits to schema-sensitive paths
// (spec.md's schema file patterns) until the database schema has been
// inspected within the configured TTL (spec.md §4.9 "Schema freshness").
// SOFT_BLOCK — force=true lets the agent proceed at its own risk.
var SchemaFreshnessRequired = NewGuardFunc("schema_freshness_required", func(_ context.Context, gctx *GuardContext) Result {
	if !gctx.SchemaSensitivePath || gctx.SchemaChecked {
		return Pass("schema_freshness_required")
	}
	return Fail("schema_freshness_required", SoftBlock,
		"This path matches a schema-sensitive pattern but the database schema has not been checked recently.",
		"Call db_schema to refresh the cached schema, or use force=true to proceed without it.",
	)
})

// NoBlockingAlerts prevents finish while blocking-severity alerts remain
// unacknowledged (spec.md invariant I3 / §4.5 completion gate condition 1).
// HARD_BLOCK — acknowledging the alert (not force) is the intended remedy.
var NoBlockingAlerts = NewGuardFunc("no_blocking_alerts", func(_ context.Context, gctx *GuardContext) Result {
	if gctx.BlockingAlertCount == 0 {
		return Pass("no_blocking_alerts")
	}
	return Fail("no_blocking_alerts", HardBlock,
		"There are unacknowledged blocking alerts for this project.",
		"Review the alerts and acknowledge them with clear_alerts before finishing.",
	)
})

// HTTPTestsRequired enforces that web-facing changes have at least one
// passing HTTP test before finish, when the active mode requires it
// (spec.md §4.5 completion gate condition 2). SOFT_BLOCK.
var HTTPTestsRequired = NewGuardFunc("http_tests_required", func(_ context.Context, gctx *GuardContext) Result {
	if !gctx.HTTPRequired || gctx.HTTPTestsPassed > 0 {
		return Pass("http_tests_required")
	}
	return Fail("http_tests_required", SoftBlock,
		"No HTTP endpoint test has passed for this scope yet.",
		"Run http_test against the affected route, or use force=true to skip.",
	)
})

// ChecklistMustPass blocks finish while any checklist item for the
// active scope is still failing (spec.md §4.5 completion gate condition 3).
// SOFT_BLOCK.
var ChecklistMustPass = NewGuardFunc("checklist_must_pass", func(_ context.Context, gctx *GuardContext) Result {
	if gctx.ChecklistFailures == 0 {
		return Pass("checklist_must_pass")
	}
	return Fail("checklist_must_pass", SoftBlock,
		"One or more checklist items are still failing.",
		"Re-run the checklist and resolve failures, or use force=true to finish anyway.",
	)
})

// AcceptanceCriteriaMet blocks finish while any acceptance criterion for
// the active scope is unmet (spec.md §4.5 completion gate condition 4).
// SOFT_BLOCK.
var AcceptanceCriteriaMet = NewGuardFunc("acceptance_criteria_met", func(_ context.Context, gctx *GuardContext) Result {
	if gctx.UnmetCriteriaCount == 0 {
		return Pass("acceptance_criteria_met")
	}
	return Fail("acceptance_criteria_met", SoftBlock,
		"Not every acceptance criterion for the current scope is marked met.",
		"Update criteria status, or use force=true to finish with open criteria.",
	)
})

// ImpactReportRequired enforces the two-phase completion gate: finish
// must be preceded by an impact report generated in the same session
// (spec.md §4.5 "finish requires a prior impact report"). HARD_BLOCK —
// this is structural, not a risk call, so it is not force-overridable.
var ImpactReportRequired = NewGuardFunc("impact_report_required", func(_ context.Context, gctx *GuardContext) Result {
	if gctx.ImpactReportAvailable {
		return Pass("impact_report_required")
	}
	return Fail("impact_report_required", HardBlock,
		"finish was called without a preceding impact report for this session.",
		"Call analyze_impact first, review its findings, then call finish again.",
	)
})

// ValidationsMustPass blocks finish while a syntax validation has failed
// with no later passing validation (spec.md §4.5 completion gate
// condition 5). SOFT_BLOCK.
var ValidationsMustPass = NewGuardFunc("validations_must_pass", func(_ context.Context, gctx *GuardContext) Result {
	if !gctx.ValidationPending {
		return Pass("validations_must_pass")
	}
	return Fail("validations_must_pass", SoftBlock,
		"A tracked file failed syntax validation and has not since passed.",
		"Fix and re-track the file so its validation passes, or use force=true to finish anyway.",
	)
})

// CompletionGate is the ordered set of conditions finish must satisfy,
// in the order spec.md §4.5 evaluates them.
var CompletionGate = []Guard{
	ImpactReportRequired,
	NoBlockingAlerts,
	HTTPTestsRequired,
	ChecklistMustPass,
	AcceptanceCriteriaMet,
	ValidationsMustPass,
}

// DispatchGate is the single gate the MCP dispatcher runs before any
// non-always-allowed tool executes (spec.md §4.2).
var DispatchGate = []Guard{
	ScopeRequired,
}
