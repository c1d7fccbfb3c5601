// Package checklist runs a scope's whitelisted shell-command checks
// (spec.md §4.10 "Checklist execution"): each item's Check string is
// tokenized and matched against a command whitelist, never interpreted
// by a shell, then run with a per-item timeout. Items run concurrently
// via golang.org/x/sync/errgroup.
package checklist

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chainguard-dev/chainguard/internal/model"
)

// MaxOutputCapture bounds how much of a command's output is retained.
const MaxOutputCapture = 4 * 1024

// Result is the outcome of one checklist item's Check command.
type Result struct {
	Item     string `json:"item"`
	Check    string `json:"check"`
	Passed   bool   `json:"passed"`
	Rejected bool   `json:"rejected"` // command was not on the whitelist
	Output   string `json:"output,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Runner executes checklist items against a fixed command whitelist.
type Runner struct {
	Whitelist map[string]bool
	Timeout   time.Duration
	WorkDir   string
}

// New creates a Runner. whitelist entries are the bare command names
// (e.g. "php", "grep") permitted as the first token of a Check string.
func New(whitelist []string, timeout time.Duration, workDir string) *Runner {
	set := make(map[string]bool, len(whitelist))
	for _, w := range whitelist {
		set[w] = true
	}
	return &Runner{Whitelist: set, Timeout: timeout, WorkDir: workDir}
}

// tokenize splits a Check string on whitespace without invoking a
// shell — no globbing, no pipes, no redirection (spec.md §7 "checklist
// commands are never shell-interpreted").
func tokenize(check string) []string {
	return strings.Fields(check)
}

// runOne executes a single checklist item, never returning an error
// itself — every failure mode (rejected, timeout, non-zero exit) is
// reported in the Result.
func (r *Runner) runOne(ctx context.Context, item model.ChecklistItem) Result {
	tokens := tokenize(item.Check)
	res := Result{Item: item.Item, Check: item.Check}

	if len(tokens) == 0 {
		res.Rejected = true
		res.Error = "empty check command"
		return res
	}
	if !r.Whitelist[tokens[0]] {
		res.Rejected = true
		res.Error = fmt.Sprintf("command %q is not in the checklist whitelist", tokens[0])
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, tokens[0], tokens[1:]...)
	cmd.Dir = r.WorkDir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	output := buf.String()
	if len(output) > MaxOutputCapture {
		output = output[:MaxOutputCapture]
	}
	res.Output = output

	if ctx.Err() == context.DeadlineExceeded {
		res.Error = "checklist item timed out"
		return res
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.Passed = true
	return res
}

// RunAll runs every item concurrently and returns results in input order.
func (r *Runner) RunAll(ctx context.Context, items []model.ChecklistItem) ([]Result, error) {
	results := make([]Result, len(items))
	g, ctx := errgroup.WithContext(ctx)

	for idx, item := range items {
		idx, item := idx, item
		g.Go(func() error {
			results[idx] = r.runOne(ctx, item)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
