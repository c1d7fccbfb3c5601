package tools

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedWidgetsDB(t *testing.T, dir string) string {
	t.Helper()
	dbPath := filepath.Join(dir, "app.db")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO widgets (name) VALUES ('gear')`)
	require.NoError(t, err)
	db.Close()
	return dbPath
}

func TestDBConnectThenSchemaFetchesAndSetsFreshness(t *testing.T) {
	d, reg, dir := testDeps(t)
	dbPath := seedWidgetsDB(t, dir)

	callTool(t, reg, "set_scope", map[string]any{
		"working_dir": dir,
		"description": "impl A",
		"modules":     []string{"**"},
	})

	connect := callTool(t, reg, "db_connect", map[string]any{
		"working_dir": dir,
		"engine":      "sqlite",
		"dsn":         dbPath,
	})
	require.False(t, connect.IsError)

	result := callTool(t, reg, "db_schema", map[string]any{"working_dir": dir})
	assert.False(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "widgets")
	assert.Contains(t, result.Content[0].Text, "~1 rows")

	sess, err := d.Manager.Acquire(dir)
	require.NoError(t, err)
	defer sess.Release()
	assert.NotNil(t, sess.State.DBSchemaCheckedAt)
}

func TestDBSchemaWithoutConnectReturnsError(t *testing.T) {
	_, reg, dir := testDeps(t)
	result := callTool(t, reg, "db_schema", map[string]any{"working_dir": dir})
	assert.True(t, result.IsError)
}

func TestDBConnectUnsupportedEngineReturnsError(t *testing.T) {
	_, reg, dir := testDeps(t)
	result := callTool(t, reg, "db_connect", map[string]any{
		"working_dir": dir,
		"engine":      "oracle",
		"dsn":         "whatever",
	})
	assert.True(t, result.IsError)
}

func TestDBTableReturnsColumnsAndSample(t *testing.T) {
	_, reg, dir := testDeps(t)
	dbPath := seedWidgetsDB(t, dir)

	callTool(t, reg, "db_connect", map[string]any{
		"working_dir": dir,
		"engine":      "sqlite",
		"dsn":         dbPath,
	})

	result := callTool(t, reg, "db_table", map[string]any{
		"working_dir": dir,
		"table":       "widgets",
		"sample_rows": 5,
	})
	assert.False(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "gear")
	assert.Contains(t, result.Content[0].Text, "\"primary_key\": true")
}

func TestDBDisconnectClearsStoredConfigAndSchemaCheck(t *testing.T) {
	d, reg, dir := testDeps(t)
	dbPath := seedWidgetsDB(t, dir)

	callTool(t, reg, "db_connect", map[string]any{
		"working_dir": dir,
		"engine":      "sqlite",
		"dsn":         dbPath,
	})
	callTool(t, reg, "db_schema", map[string]any{"working_dir": dir})

	result := callTool(t, reg, "db_disconnect", map[string]any{"working_dir": dir})
	assert.False(t, result.IsError)

	sess, err := d.Manager.Acquire(dir)
	require.NoError(t, err)
	defer sess.Release()
	assert.Nil(t, sess.State.DB)
	assert.Nil(t, sess.State.DBSchemaCheckedAt)

	again := callTool(t, reg, "db_schema", map[string]any{"working_dir": dir})
	assert.True(t, again.IsError, "db_schema must fail again after db_disconnect")
}

func TestDBSchemaForceRefreshBypassesCache(t *testing.T) {
	_, reg, dir := testDeps(t)
	dbPath := seedWidgetsDB(t, dir)

	callTool(t, reg, "db_connect", map[string]any{
		"working_dir": dir,
		"engine":      "sqlite",
		"dsn":         dbPath,
	})
	first := callTool(t, reg, "db_schema", map[string]any{"working_dir": dir})
	assert.False(t, first.IsError)

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE gadgets (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)
	db.Close()

	cached := callTool(t, reg, "db_schema", map[string]any{"working_dir": dir})
	assert.NotContains(t, cached.Content[0].Text, "gadgets")

	refreshed := callTool(t, reg, "db_schema", map[string]any{"working_dir": dir, "force_refresh": true})
	assert.Contains(t, refreshed.Content[0].Text, "gadgets")
}
