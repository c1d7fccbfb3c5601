package tools

import (
	"context"
	"encoding/json"

	"github.com/chainguard-dev/chainguard/internal/dbinspect"
	"github.com/chainguard-dev/chainguard/internal/mcp"
	"github.com/chainguard-dev/chainguard/internal/model"
)

// loadDBConfig resolves the project's stored DBConfig into a
// dbinspect.Config, or an error if db_connect hasn't been called yet.
func loadDBConfig(ps *model.ProjectState) (dbinspect.Config, error) {
	if ps.DB == nil {
		return dbinspect.Config{}, errNoDBConfig
	}
	return dbinspect.Config{Engine: dbinspect.Engine(ps.DB.Engine), DSN: ps.DB.DSN}, nil
}

var errNoDBConfig = &noDBConfigError{}

type noDBConfigError struct{}

func (*noDBConfigError) Error() string { return "no database connected; call db_connect first" }

func registerDB(reg *mcp.Registry, d *Deps) {
	reg.Register(newTool("db_connect",
		"Store the project's database connection (engine, DSN) and verify it is reachable. Subsequent db_schema/db_table calls dial through this stored config.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"engine": {"type": "string", "enum": ["mysql", "postgres", "sqlite"]},
				"dsn": {"type": "string"}
			},
			"required": ["engine", "dsn"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				Engine string `json:"engine"`
				DSN    string `json:"dsn"`
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

			cfg := dbinspect.Config{Engine: dbinspect.Engine(a.Engine), DSN: a.DSN}
			if err := dbinspect.Ping(ctx, cfg); err != nil {
				return errResult("connecting to %s: %v", a.Engine, err)
			}

			sess.State.DB = &model.DBConfig{Engine: a.Engine, DSN: a.DSN}
			d.DB.Invalidate(sess.State.ProjectID)
			sess.State.Touch()
			if err := sess.Save(false); err != nil {
				return errResult("saving db config: %v", err)
			}
			return jsonResult(map[string]any{"connected": true, "engine": a.Engine})
		}))

	reg.Register(newTool("db_schema",
		"Inspect and cache the project's database schema using the connection db_connect stored. Refreshing resets the schema-freshness TTL the chainguard-hook checks before schema-sensitive edits.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"force_refresh": {"type": "boolean"}
			}
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				ForceRefresh bool `json:"force_refresh"`
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

			cfg, err := loadDBConfig(sess.State)
			if err != nil {
				return errResult("%v", err)
			}

			schema, err := d.DB.Fetch(ctx, sess.State.ProjectID, cfg, a.ForceRefresh)
			if err != nil {
				return errResult("fetching schema: %v", err)
			}

			now := sessNow()
			sess.State.DBSchemaCheckedAt = &now
			sess.State.Touch()
			if err := sess.Save(false); err != nil {
				return errResult("saving schema check time: %v", err)
			}

			return jsonResult(map[string]any{
				"schema": schema,
				"tree":   dbinspect.FormatTree(schema),
			})
		}))

	reg.Register(newTool("db_table",
		"Describe a single table in detail — columns, row count, PK/UNIQUE/FK annotations — optionally including a sample of its rows.",
		`{
			"type": "object",
			"properties": {
				"working_dir": {"type": "string"},
				"table": {"type": "string"},
				"sample_rows": {"type": "integer"}
			},
			"required": ["table"]
		}`,
		func(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
			type args struct {
				workingDir
				Table      string `json:"table"`
				SampleRows int    `json:"sample_rows"`
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

			cfg, err := loadDBConfig(sess.State)
			if err != nil {
				return errResult("%v", err)
			}

			table, err := d.DB.FetchTable(ctx, cfg, a.Table, a.SampleRows)
			if err != nil {
				return errResult("describing %s: %v", a.Table, err)
			}

			return jsonResult(map[string]any{"table": table})
		}))

	reg.Register(newTool("db_disconnect",
		"Drop the project's stored database connection and discard its cached schema.",
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

			d.DB.Invalidate(sess.State.ProjectID)
			sess.State.DisconnectDB()
			sess.State.Touch()
			if err := sess.Save(false); err != nil {
				return errResult("saving disconnect: %v", err)
			}
			return jsonResult(map[string]any{"connected": false})
		}))
}
