package tools

import (
	"encoding/json"
	"testing"

	"github.com/chainguard-dev/chainguard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unmarshalResult(t *testing.T, text string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(text), v))
}

func TestKanbanInitCreatesDefaultColumns(t *testing.T) {
	_, reg, dir := testDeps(t)
	result := callTool(t, reg, "kanban_init", map[string]any{"working_dir": dir})

	var board model.KanbanBoard
	unmarshalResult(t, result.Content[0].Text, &board)
	assert.Equal(t, []string{"todo", "doing", "done"}, board.Columns)
}

func TestKanbanWithoutInitReturnsError(t *testing.T) {
	_, reg, dir := testDeps(t)
	result := callTool(t, reg, "kanban", map[string]any{"working_dir": dir})
	assert.True(t, result.IsError)
}

func TestKanbanAddPlacesCardInFirstColumn(t *testing.T) {
	_, reg, dir := testDeps(t)
	callTool(t, reg, "kanban_init", map[string]any{"working_dir": dir})

	result := callTool(t, reg, "kanban_add", map[string]any{"working_dir": dir, "title": "write tests"})
	var card model.KanbanCard
	unmarshalResult(t, result.Content[0].Text, &card)
	assert.Equal(t, "todo", card.Column)
	assert.Equal(t, "write tests", card.Title)
	assert.NotEmpty(t, card.ID)
}

func TestKanbanMoveRecordsHistory(t *testing.T) {
	_, reg, dir := testDeps(t)
	callTool(t, reg, "kanban_init", map[string]any{"working_dir": dir})
	added := callTool(t, reg, "kanban_add", map[string]any{"working_dir": dir, "title": "ship it"})
	var card model.KanbanCard
	unmarshalResult(t, added.Content[0].Text, &card)

	result := callTool(t, reg, "kanban_move", map[string]any{"working_dir": dir, "id": card.ID, "column": "doing"})
	var moved model.KanbanCard
	unmarshalResult(t, result.Content[0].Text, &moved)
	assert.Equal(t, "doing", moved.Column)
	require.Len(t, moved.History, 1)
	assert.Equal(t, "todo", moved.History[0].From)
	assert.Equal(t, "doing", moved.History[0].To)
}

func TestKanbanMoveRejectsUnknownColumn(t *testing.T) {
	_, reg, dir := testDeps(t)
	callTool(t, reg, "kanban_init", map[string]any{"working_dir": dir})
	added := callTool(t, reg, "kanban_add", map[string]any{"working_dir": dir, "title": "ship it"})
	var card model.KanbanCard
	unmarshalResult(t, added.Content[0].Text, &card)

	result := callTool(t, reg, "kanban_move", map[string]any{"working_dir": dir, "id": card.ID, "column": "nonexistent"})
	assert.True(t, result.IsError)
}

func TestKanbanArchiveHidesCardFromShow(t *testing.T) {
	_, reg, dir := testDeps(t)
	callTool(t, reg, "kanban_init", map[string]any{"working_dir": dir})
	added := callTool(t, reg, "kanban_add", map[string]any{"working_dir": dir, "title": "old task"})
	var card model.KanbanCard
	unmarshalResult(t, added.Content[0].Text, &card)

	callTool(t, reg, "kanban_archive", map[string]any{"working_dir": dir, "id": card.ID})

	result := callTool(t, reg, "kanban_show", map[string]any{"working_dir": dir})
	assert.NotContains(t, result.Content[0].Text, "old task")
}

func TestKanbanDeleteRemovesCard(t *testing.T) {
	_, reg, dir := testDeps(t)
	callTool(t, reg, "kanban_init", map[string]any{"working_dir": dir})
	added := callTool(t, reg, "kanban_add", map[string]any{"working_dir": dir, "title": "temp"})
	var card model.KanbanCard
	unmarshalResult(t, added.Content[0].Text, &card)

	callTool(t, reg, "kanban_delete", map[string]any{"working_dir": dir, "id": card.ID})

	result := callTool(t, reg, "kanban_detail", map[string]any{"working_dir": dir, "id": card.ID})
	assert.True(t, result.IsError)
}

func TestKanbanUpdateChangesTitleAndDetail(t *testing.T) {
	_, reg, dir := testDeps(t)
	callTool(t, reg, "kanban_init", map[string]any{"working_dir": dir})
	added := callTool(t, reg, "kanban_add", map[string]any{"working_dir": dir, "title": "draft"})
	var card model.KanbanCard
	unmarshalResult(t, added.Content[0].Text, &card)

	result := callTool(t, reg, "kanban_update", map[string]any{"working_dir": dir, "id": card.ID, "title": "final"})
	var updated model.KanbanCard
	unmarshalResult(t, result.Content[0].Text, &updated)
	assert.Equal(t, "final", updated.Title)
}
