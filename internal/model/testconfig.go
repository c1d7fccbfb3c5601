package model

import "time"

// TestConfig names the command a project's run_tests tool should invoke
// (spec.md §3, §4.10).
type TestConfig struct {
	Command    string   `json:"command"`
	Args       []string `json:"args,omitempty"`
	Timeout    int      `json:"timeout_seconds,omitempty"`
	WorkingDir string   `json:"working_dir,omitempty"`
}

// TestResult is the parsed outcome of the most recent run_tests call
// (spec.md §4.10).
type TestResult struct {
	Success    bool      `json:"success"`
	Passed     int       `json:"passed"`
	Failed     int       `json:"failed"`
	Total      int       `json:"total"`
	Duration   float64   `json:"duration_seconds"`
	Framework  string    `json:"framework,omitempty"`
	Output     string    `json:"output,omitempty"`
	ErrorLines []string  `json:"error_lines,omitempty"`
	ExitCode   int       `json:"exit_code"`
	Timestamp  time.Time `json:"timestamp"`
}
