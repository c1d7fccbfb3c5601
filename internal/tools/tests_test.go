package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestConfigSetsCommandWithoutRunning(t *testing.T) {
	d, reg, dir := testDeps(t)

	result := callTool(t, reg, "test_config", map[string]any{
		"working_dir": dir,
		"command":     "go",
		"args":        []string{"test", "./..."},
	})
	assert.False(t, result.IsError)

	sess, err := d.Manager.Acquire(dir)
	require.NoError(t, err)
	defer sess.Release()
	require.NotNil(t, sess.State.TestConfig)
	assert.Equal(t, "go", sess.State.TestConfig.Command)
	assert.Nil(t, sess.State.TestResults, "test_config must not invoke the configured command")
}

func TestTestConfigWithoutCommandReturnsCurrentConfig(t *testing.T) {
	_, reg, dir := testDeps(t)

	callTool(t, reg, "test_config", map[string]any{
		"working_dir": dir,
		"command":     "npm",
		"args":        []string{"test"},
	})

	result := callTool(t, reg, "test_config", map[string]any{"working_dir": dir})
	assert.Contains(t, result.Content[0].Text, "npm")
}

func TestTestStatusReportsConfigAndLastResult(t *testing.T) {
	_, reg, dir := testDeps(t)

	callTool(t, reg, "test_config", map[string]any{
		"working_dir": dir,
		"command":     "go",
		"args":        []string{"test", "./..."},
	})

	result := callTool(t, reg, "test_status", map[string]any{"working_dir": dir})
	assert.False(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "go")
	assert.Contains(t, result.Content[0].Text, `"tests_passed": 0`)
}
