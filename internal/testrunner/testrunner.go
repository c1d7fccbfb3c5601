// Package testrunner executes a project's configured test command and
// parses its output into a structured model.TestResult (spec.md §4.7
// "Test execution").
package testrunner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/chainguard-dev/chainguard/internal/chainerr"
	"github.com/chainguard-dev/chainguard/internal/model"
)

// MaxOutputCapture bounds how much combined stdout/stderr is retained.
const MaxOutputCapture = 32 * 1024

// Runner executes test commands with a bounded timeout.
type Runner struct {
	Timeout time.Duration
}

// New creates a Runner with the given default subprocess timeout.
func New(timeout time.Duration) *Runner { return &Runner{Timeout: timeout} }

// Run executes cfg.Command/Args in cfg.WorkingDir and parses the result.
func (r *Runner) Run(ctx context.Context, cfg model.TestConfig) model.TestResult {
	timeout := r.Timeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	if cfg.WorkingDir != "" {
		cmd.Dir = cfg.WorkingDir
	}

	start := time.Now()
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	runErr := cmd.Run()
	duration := time.Since(start)

	output := buf.String()
	if len(output) > MaxOutputCapture {
		output = output[:MaxOutputCapture]
	}

	result := model.TestResult{
		Duration:  duration.Seconds(),
		Output:    output,
		Timestamp: time.Now().UTC(),
	}

	framework, passed, failed, total := detectFramework(output)
	result.Framework = framework
	result.Passed = passed
	result.Failed = failed
	result.Total = total
	result.ErrorLines = extractErrorLines(output)

	if exitErr, ok := runErr.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
	} else if runErr != nil {
		result.ExitCode = -1
	}

	result.Success = runErr == nil && failed == 0
	return result
}

// phpunitRe, jestRe, pytestRe, mochaRe, and vitestRe recognize each
// framework's summary line well enough to pull pass/fail/total counts
// without depending on machine-readable (e.g. JSON/JUnit) output modes.
var (
	phpunitRe = regexp.MustCompile(`OK \((\d+) tests?, \d+ assertions?\)|Tests: (\d+), Assertions: \d+(?:, Failures: (\d+))?`)
	jestRe    = regexp.MustCompile(`Tests:\s+(?:(\d+) failed, )?(?:(\d+) skipped, )?(\d+) passed, (\d+) total`)
	pytestRe  = regexp.MustCompile(`(\d+) passed(?:, (\d+) failed)?(?:, (\d+) error)?`)
	mochaRe   = regexp.MustCompile(`(\d+) passing(?:\s+\([^)]*\))?(?:\s+(\d+) failing)?`)
	vitestRe  = regexp.MustCompile(`Tests\s+(\d+) failed \| (\d+) passed \((\d+)\)`)
)

func detectFramework(output string) (framework string, passed, failed, total int) {
	switch {
	case vitestRe.MatchString(output):
		m := vitestRe.FindStringSubmatch(output)
		failed = atoi(m[1])
		passed = atoi(m[2])
		total = atoi(m[3])
		return "vitest", passed, failed, total
	case jestRe.MatchString(output):
		m := jestRe.FindStringSubmatch(output)
		failed = atoi(m[1])
		passed = atoi(m[3])
		total = atoi(m[4])
		return "jest", passed, failed, total
	case mochaRe.MatchString(output):
		m := mochaRe.FindStringSubmatch(output)
		passed = atoi(m[1])
		failed = atoi(m[2])
		return "mocha", passed, failed, passed + failed
	case pytestRe.MatchString(output):
		m := pytestRe.FindStringSubmatch(output)
		passed = atoi(m[1])
		failed = atoi(m[2])
		return "pytest", passed, failed, passed + failed
	case phpunitRe.MatchString(output):
		m := phpunitRe.FindStringSubmatch(output)
		if m[1] != "" {
			total = atoi(m[1])
			passed = total
			return "phpunit", passed, 0, total
		}
		total = atoi(m[2])
		failed = atoi(m[3])
		passed = total - failed
		return "phpunit", passed, failed, total
	default:
		return "unknown", 0, 0, 0
	}
}

var errorLineRe = regexp.MustCompile(`(?i)(error|exception|fail(ed|ure)?)\b.{0,160}`)

// extractErrorLines pulls a handful of lines that look like failures,
// for a short summary without echoing the entire output back.
func extractErrorLines(output string) []string {
	matches := errorLineRe.FindAllString(output, -1)
	if len(matches) > 10 {
		matches = matches[:10]
	}
	return matches
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// DetectCommand guesses a reasonable default test command for a project
// root by checking for well-known manifest files (spec.md §4.7 "test
// command auto-detection").
func DetectCommand(projectPath string) (model.TestConfig, error) {
	checks := []struct {
		file    string
		command string
		args    []string
	}{
		{"phpunit.xml", "vendor/bin/phpunit", nil},
		{"phpunit.xml.dist", "vendor/bin/phpunit", nil},
		{"package.json", "npm", []string{"test"}},
		{"pytest.ini", "python3", []string{"-m", "pytest"}},
		{"pyproject.toml", "python3", []string{"-m", "pytest"}},
	}
	for _, c := range checks {
		if fileExists(projectPath, c.file) {
			return model.TestConfig{Command: c.command, Args: c.args, WorkingDir: projectPath}, nil
		}
	}
	return model.TestConfig{}, chainerr.New(chainerr.IOFail, fmt.Sprintf("no recognizable test manifest found in %s", projectPath))
}

func fileExists(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
