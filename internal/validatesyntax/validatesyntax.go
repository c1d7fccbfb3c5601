// Package validatesyntax dispatches a file to the right external syntax
// checker by extension (spec.md §4.4 "Syntax validation"), running each
// checker as a subprocess with a bounded timeout.
package validatesyntax

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Result is the outcome of validating one file.
type Result struct {
	Path     string `json:"path"`
	Tool     string `json:"tool"`
	Valid    bool   `json:"valid"`
	Skipped  bool   `json:"skipped"`
	Message  string `json:"message,omitempty"`
	Line     int    `json:"line,omitempty"`
	RawOutput string `json:"raw_output,omitempty"`
}

// Validator checks a file with an external interpreter/compiler.
type Validator struct {
	Timeout time.Duration
}

// New creates a Validator with the given subprocess timeout.
func New(timeout time.Duration) *Validator {
	return &Validator{Timeout: timeout}
}

var (
	phpErrorLine    = regexp.MustCompile(`on line (\d+)`)
	nodeErrorLine   = regexp.MustCompile(`:(\d+)\)?\s*$`)
	pyErrorLine     = regexp.MustCompile(`line (\d+)`)
)

// Validate dispatches path to the syntax checker for its extension.
// Unknown extensions return a skipped result, not an error (spec.md §4.4
// "unsupported extensions are skipped, never treated as a failure").
func (v *Validator) Validate(ctx context.Context, path string) Result {
	ctx, cancel := context.WithTimeout(ctx, v.Timeout)
	defer cancel()

	switch ext(path) {
	case ".php":
		return v.runLineChecker(ctx, path, "php", []string{"-l", path}, phpErrorLine)
	case ".js", ".jsx", ".mjs", ".cjs":
		return v.runLineChecker(ctx, path, "node", []string{"--check", path}, nodeErrorLine)
	case ".ts", ".tsx":
		return v.runTypeScript(ctx, path)
	case ".py":
		return v.runLineChecker(ctx, path, "python3", []string{"-m", "py_compile", path}, pyErrorLine)
	case ".json":
		return v.validateJSON(path)
	default:
		return Result{Path: path, Skipped: true, Message: "no syntax validator for this extension"}
	}
}

func ext(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(path[i:])
}

func (v *Validator) runLineChecker(ctx context.Context, path, tool string, args []string, lineRe *regexp.Regexp) Result {
	cmd := exec.CommandContext(ctx, tool, args...)
	out, err := cmd.CombinedOutput()
	res := Result{Path: path, Tool: tool, RawOutput: string(out)}

	if err != nil {
		if isMissingBinary(err) {
			return Result{Path: path, Tool: tool, Skipped: true, Message: fmt.Sprintf("%s not found on PATH", tool)}
		}
		if ctx.Err() == context.DeadlineExceeded {
			res.Message = fmt.Sprintf("%s timed out", tool)
			return res
		}
		res.Valid = false
		res.Message = firstLine(string(out))
		if m := lineRe.FindStringSubmatch(string(out)); len(m) == 2 {
			res.Line, _ = strconv.Atoi(m[1])
		}
		return res
	}

	res.Valid = true
	return res
}

func (v *Validator) runTypeScript(ctx context.Context, path string) Result {
	cmd := exec.CommandContext(ctx, "npx", "tsc", "--noEmit", path)
	out, err := cmd.CombinedOutput()
	res := Result{Path: path, Tool: "tsc", RawOutput: string(out)}

	if err != nil {
		if isMissingBinary(err) {
			return Result{Path: path, Tool: "tsc", Skipped: true, Message: "npx/tsc not found on PATH"}
		}
		if ctx.Err() == context.DeadlineExceeded {
			res.Message = "tsc timed out"
			return res
		}
		res.Valid = false
		res.Message = firstLine(string(out))
		return res
	}

	res.Valid = true
	return res
}

func (v *Validator) validateJSON(path string) Result {
	f, err := os.Open(path)
	if err != nil {
		return Result{Path: path, Tool: "encoding/json", Valid: false, Message: err.Error()}
	}
	defer f.Close()

	dec := json.NewDecoder(bufio.NewReader(f))
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Result{Path: path, Tool: "encoding/json", Valid: false, Message: err.Error()}
	}
	return Result{Path: path, Tool: "encoding/json", Valid: true}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func isMissingBinary(err error) bool {
	var execErr *exec.Error
	return errors.As(err, &execErr)
}
