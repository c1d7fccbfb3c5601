package tools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/chainguard-dev/chainguard/internal/mcp"
	"github.com/chainguard-dev/chainguard/internal/model"
)

var errNoBoard = errors.New("no kanban board; call kanban_init first")

func registerKanban(reg *mcp.Registry, d *Deps) {
	reg.Register(newTool("kanban_init",
		"Create the project's kanban board with the given columns (or a default todo/doing/done lane set).",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"columns": {"type": "array", "items": {"type": "string"}}
			}
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				Columns []string `json:"columns"`
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

			sess.State.Kanban = model.NewKanbanBoard(a.Columns)
			sess.State.Touch()
			if err := sess.Save(false); err != nil {
				return errResult("saving board: %v", err)
			}
			return jsonResult(sess.State.Kanban)
		}))

	reg.Register(newTool("kanban",
		"Return the project's kanban board.",
		`{"type": "object", "properties": {"working_dir": {"type": "string"}}}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			a, err := decodeArgs[workingDir](params)
			if err != nil {
				return errResult("%v", err)
			}
			sess, err := acquire(d, a)
			if err != nil {
				return errResult("%v", err)
			}
			defer sess.Release()
			if sess.State.Kanban == nil {
				return errResult("no kanban board; call kanban_init first")
			}
			return jsonResult(sess.State.Kanban)
		}))

	reg.Register(newTool("kanban_show",
		"Return the cards in a single kanban column (or all non-archived cards if column is omitted).",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"column": {"type": "string"}
			}
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				Column string `json:"column"`
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

			board, err := requireBoard(sess.State)
			if err != nil {
				return errResult("%v", err)
			}

			var cards []*model.KanbanCard
			for _, c := range board.Cards {
				if c.Archived {
					continue
				}
				if a.Column != "" && c.Column != a.Column {
					continue
				}
				cards = append(cards, c)
			}
			return jsonResult(map[string]any{"cards": cards})
		}))

	reg.Register(newTool("kanban_add",
		"Add a new card to the board's first column.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"title": {"type": "string"},
				"detail": {"type": "string"}
			},
			"required": ["title"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				Title  string `json:"title"`
				Detail string `json:"detail"`
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

			board, err := requireBoard(sess.State)
			if err != nil {
				return errResult("%v", err)
			}

			now := sessNow()
			card := &model.KanbanCard{
				ID:        uuid.NewString(),
				Title:     a.Title,
				Detail:    a.Detail,
				Column:    board.Columns[0],
				CreatedAt: now,
				UpdatedAt: now,
			}
			board.Cards[card.ID] = card
			sess.State.Touch()
			if err := sess.Save(false); err != nil {
				return errResult("saving card: %v", err)
			}
			return jsonResult(card)
		}))

	reg.Register(newTool("kanban_move",
		"Move a card to a different column, recording the transition in its history.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"id": {"type": "string"},
				"column": {"type": "string"}
			},
			"required": ["id", "column"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				ID     string `json:"id"`
				Column string `json:"column"`
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

			board, err := requireBoard(sess.State)
			if err != nil {
				return errResult("%v", err)
			}
			card, ok := board.Cards[a.ID]
			if !ok {
				return errResult("no such card: %s", a.ID)
			}
			if !board.HasColumn(a.Column) {
				return errResult("no such column: %s", a.Column)
			}

			now := sessNow()
			card.History = append(card.History, model.KanbanMove{From: card.Column, To: a.Column, At: now})
			card.Column = a.Column
			card.UpdatedAt = now
			sess.State.Touch()
			if err := sess.Save(false); err != nil {
				return errResult("saving card move: %v", err)
			}
			return jsonResult(card)
		}))

	reg.Register(newTool("kanban_detail",
		"Return one card's full detail, including its move history.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"id": {"type": "string"}
			},
			"required": ["id"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				ID string `json:"id"`
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

			board, err := requireBoard(sess.State)
			if err != nil {
				return errResult("%v", err)
			}
			card, ok := board.Cards[a.ID]
			if !ok {
				return errResult("no such card: %s", a.ID)
			}
			return jsonResult(card)
		}))

	reg.Register(newTool("kanban_update",
		"Update a card's title and/or detail.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"id": {"type": "string"},
				"title": {"type": "string"},
				"detail": {"type": "string"}
			},
			"required": ["id"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				ID     string  `json:"id"`
				Title  *string `json:"title"`
				Detail *string `json:"detail"`
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

			board, err := requireBoard(sess.State)
			if err != nil {
				return errResult("%v", err)
			}
			card, ok := board.Cards[a.ID]
			if !ok {
				return errResult("no such card: %s", a.ID)
			}
			if a.Title != nil {
				card.Title = *a.Title
			}
			if a.Detail != nil {
				card.Detail = *a.Detail
			}
			card.UpdatedAt = sessNow()
			sess.State.Touch()
			if err := sess.Save(false); err != nil {
				return errResult("saving card update: %v", err)
			}
			return jsonResult(card)
		}))

	reg.Register(newTool("kanban_delete",
		"Permanently remove a card from the board.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"id": {"type": "string"}
			},
			"required": ["id"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				ID string `json:"id"`
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

			board, err := requireBoard(sess.State)
			if err != nil {
				return errResult("%v", err)
			}
			if _, ok := board.Cards[a.ID]; !ok {
				return errResult("no such card: %s", a.ID)
			}
			delete(board.Cards, a.ID)
			sess.State.Touch()
			if err := sess.Save(false); err != nil {
				return errResult("saving board: %v", err)
			}
			return jsonResult(map[string]any{"deleted": a.ID})
		}))

	reg.Register(newTool("kanban_archive",
		"Archive a card, hiding it from kanban_show without deleting its history.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"id": {"type": "string"}
			},
			"required": ["id"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				ID string `json:"id"`
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

			board, err := requireBoard(sess.State)
			if err != nil {
				return errResult("%v", err)
			}
			card, ok := board.Cards[a.ID]
			if !ok {
				return errResult("no such card: %s", a.ID)
			}
			card.Archived = true
			card.UpdatedAt = sessNow()
			sess.State.Touch()
			if err := sess.Save(false); err != nil {
				return errResult("saving board: %v", err)
			}
			return jsonResult(card)
		}))

	reg.Register(newTool("kanban_history",
		"Return a card's column-transition history.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"id": {"type": "string"}
			},
			"required": ["id"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				ID string `json:"id"`
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

			board, err := requireBoard(sess.State)
			if err != nil {
				return errResult("%v", err)
			}
			card, ok := board.Cards[a.ID]
			if !ok {
				return errResult("no such card: %s", a.ID)
			}
			return jsonResult(map[string]any{"id": card.ID, "history": card.History})
		}))
}

func requireBoard(ps *model.ProjectState) (*model.KanbanBoard, error) {
	if ps.Kanban == nil {
		return nil, errNoBoard
	}
	return ps.Kanban, nil
}
