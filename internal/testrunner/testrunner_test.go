package testrunner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chainguard-dev/chainguard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExecutesCommandAndCapturesOutput(t *testing.T) {
	r := New(2 * time.Second)
	result := r.Run(context.Background(), model.TestConfig{
		Command: "echo",
		Args:    []string{"hello from tests"},
	})

	assert.Contains(t, result.Output, "hello from tests")
	assert.Equal(t, 0, result.ExitCode)
}

func TestRunNonZeroExitSetsExitCodeAndFailure(t *testing.T) {
	r := New(2 * time.Second)
	result := r.Run(context.Background(), model.TestConfig{Command: "false"})

	assert.Equal(t, 1, result.ExitCode)
	assert.False(t, result.Success)
}

func TestRunRespectsPerConfigTimeoutOverDefault(t *testing.T) {
	r := New(30 * time.Second)
	start := time.Now()
	result := r.Run(context.Background(), model.TestConfig{
		Command: "sleep",
		Args:    []string{"5"},
		Timeout: 1,
	})
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 3*time.Second)
	assert.False(t, result.Success)
}

func TestDetectFrameworkPytest(t *testing.T) {
	framework, passed, failed, total := detectFramework("5 passed, 2 failed in 1.23s")
	assert.Equal(t, "pytest", framework)
	assert.Equal(t, 5, passed)
	assert.Equal(t, 2, failed)
	assert.Equal(t, 7, total)
}

func TestDetectFrameworkJest(t *testing.T) {
	framework, passed, failed, total := detectFramework("Tests:       1 failed, 2 skipped, 10 passed, 13 total")
	assert.Equal(t, "jest", framework)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 10, passed)
	assert.Equal(t, 13, total)
}

func TestDetectFrameworkMocha(t *testing.T) {
	framework, passed, failed, total := detectFramework("12 passing (44ms)\n2 failing")
	assert.Equal(t, "mocha", framework)
	assert.Equal(t, 12, passed)
	assert.Equal(t, 2, failed)
	assert.Equal(t, 14, total)
}

func TestDetectFrameworkPHPUnitAllPassing(t *testing.T) {
	framework, passed, failed, total := detectFramework("OK (8 tests, 20 assertions)")
	assert.Equal(t, "phpunit", framework)
	assert.Equal(t, 8, passed)
	assert.Equal(t, 0, failed)
	assert.Equal(t, 8, total)
}

func TestDetectFrameworkPHPUnitWithFailures(t *testing.T) {
	framework, passed, failed, total := detectFramework("Tests: 10, Assertions: 22, Failures: 3")
	assert.Equal(t, "phpunit", framework)
	assert.Equal(t, 3, failed)
	assert.Equal(t, 7, passed)
	assert.Equal(t, 10, total)
}

func TestDetectFrameworkVitest(t *testing.T) {
	framework, passed, failed, total := detectFramework("Tests  2 failed | 8 passed (10)")
	assert.Equal(t, "vitest", framework)
	assert.Equal(t, 2, failed)
	assert.Equal(t, 8, passed)
	assert.Equal(t, 10, total)
}

func TestDetectFrameworkUnknownOutput(t *testing.T) {
	framework, passed, failed, total := detectFramework("nothing recognizable here")
	assert.Equal(t, "unknown", framework)
	assert.Zero(t, passed)
	assert.Zero(t, failed)
	assert.Zero(t, total)
}

func TestExtractErrorLinesCapsAtTen(t *testing.T) {
	var output string
	for i := 0; i < 15; i++ {
		output += "Error: something went wrong\n"
	}
	lines := extractErrorLines(output)
	assert.Len(t, lines, 10)
}

func TestDetectCommandFindsPackageJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{}`), 0o644))

	cfg, err := DetectCommand(dir)
	require.NoError(t, err)
	assert.Equal(t, "npm", cfg.Command)
	assert.Equal(t, []string{"test"}, cfg.Args)
}

func TestDetectCommandFindsPHPUnitXML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "phpunit.xml"), []byte(`<phpunit/>`), 0o644))

	cfg, err := DetectCommand(dir)
	require.NoError(t, err)
	assert.Equal(t, "vendor/bin/phpunit", cfg.Command)
}

func TestDetectCommandNoManifestReturnsError(t *testing.T) {
	dir := t.TempDir()
	_, err := DetectCommand(dir)
	require.Error(t, err)
}
