package tools

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/chainguard-dev/chainguard/internal/mcp"
)

func registerContent(reg *mcp.Registry, d *Deps) {
	reg.Register(newTool("word_count",
		"Count words in a file and record the running total for content-mode projects.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"file": {"type": "string"}
			},
			"required": ["file"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				File string `json:"file"`
			}
			a, err := decodeArgs[args](params)
			if err != nil {
				return errResult("%v", err)
			}
			sess, err := acquire(d, a.workingDir)
			if err != nil {
				return errResult("%v", err)
			}
			defer sess.Release()

			n, err := countWords(a.File)
			if err != nil {
				return errResult("reading %s: %v", a.File, err)
			}

			rel := relativeTo(sess.State.ProjectPath, a.File)
			if sess.State.WordCounts == nil {
				sess.State.WordCounts = make(map[string]int)
			}
			sess.State.WordCounts[rel] = n
			sess.State.Touch()
			if err := sess.Save(false); err != nil {
				return errResult("saving word count: %v", err)
			}

			total := 0
			for _, c := range sess.State.WordCounts {
				total += c
			}
			return jsonResult(map[string]any{"file": rel, "words": n, "total_words": total})
		}))

	reg.Register(newTool("track_chapter",
		"Register a chapter or section name against the project's content outline.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"chapter": {"type": "string"}
			},
			"required": ["chapter"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				Chapter string `json:"chapter"`
			}
			a, err := decodeArgs[args](params)
			if err != nil {
				return errResult("%v", err)
			}
			sess, err := acquire(d, a.workingDir)
			if err != nil {
				return errResult("%v", err)
			}
			defer sess.Release()

			for _, c := range sess.State.Chapters {
				if c == a.Chapter {
					return jsonResult(map[string]any{"chapters": sess.State.Chapters, "added": false})
				}
			}
			sess.State.Chapters = append(sess.State.Chapters, a.Chapter)
			sess.State.Touch()
			if err := sess.Save(false); err != nil {
				return errResult("saving chapter: %v", err)
			}
			return jsonResult(map[string]any{"chapters": sess.State.Chapters, "added": true})
		}))
}

func countWords(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(bufio.ScanLines)
	for scanner.Scan() {
		n += len(strings.Fields(scanner.Text()))
	}
	return n, scanner.Err()
}
