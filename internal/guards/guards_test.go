package guards

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunnerHardBlockAlwaysBlocksRegardlessOfForce(t *testing.T) {
	hard := NewGuardFunc("always_hard", func(_ context.Context, gctx *GuardContext) Result {
		return Fail("always_hard", HardBlock, "nope", "")
	})

	runner := NewRunner()
	outcome := runner.Run(context.Background(), &GuardContext{Force: true}, []Guard{hard})

	assert.True(t, outcome.Blocked)
	assert.Len(t, outcome.HardBlocks(), 1)
}

func TestRunnerSoftBlockOverriddenByForce(t *testing.T) {
	soft := NewGuardFunc("always_soft", func(_ context.Context, gctx *GuardContext) Result {
		return Fail("always_soft", SoftBlock, "careful", "use force")
	})

	runner := NewRunner()

	blocked := runner.Run(context.Background(), &GuardContext{Force: false}, []Guard{soft})
	assert.True(t, blocked.Blocked)

	forced := runner.Run(context.Background(), &GuardContext{Force: true}, []Guard{soft})
	assert.False(t, forced.Blocked)
	assert.Len(t, forced.SoftBlocks(), 1)
}

func TestRunnerWarningsAndSuggestionsNeverBlock(t *testing.T) {
	warn := NewGuardFunc("warn", func(_ context.Context, gctx *GuardContext) Result {
		return Fail("warn", Warning, "heads up", "")
	})
	suggest := NewGuardFunc("suggest", func(_ context.Context, gctx *GuardContext) Result {
		return Fail("suggest", Suggestion, "consider this", "")
	})

	runner := NewRunner()
	outcome := runner.Run(context.Background(), &GuardContext{}, []Guard{warn, suggest})

	assert.False(t, outcome.Blocked)
	assert.Len(t, outcome.Warnings(), 1)
	assert.Len(t, outcome.Suggestions(), 1)
}

func TestFormatBlockMessageEmptyWhenNotBlocked(t *testing.T) {
	outcome := &Outcome{Blocked: false}
	assert.Equal(t, "", outcome.FormatBlockMessage())
}

func TestFormatBlockMessageMentionsForceOverride(t *testing.T) {
	outcome := &Outcome{
		Blocked: true,
		Results: []Result{
			Fail("checklist_must_pass", SoftBlock, "checklist failing", "fix it"),
		},
	}
	msg := outcome.FormatBlockMessage()
	assert.Contains(t, msg, "checklist_must_pass")
	assert.Contains(t, msg, "force=true")
}
