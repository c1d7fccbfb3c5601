// Package dbinspect connects to a project's configured database and
// reports its schema, TTL-cached to avoid re-querying on every call
// (spec.md §4.9 "Database schema inspection").
package dbinspect

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/chainguard-dev/chainguard/internal/cache"
	"github.com/chainguard-dev/chainguard/internal/chainerr"
)

// Engine identifies a supported database driver.
type Engine string

const (
	MySQL    Engine = "mysql"
	Postgres Engine = "postgres"
	SQLite   Engine = "sqlite"
)

// Config describes how to reach a project's database.
type Config struct {
	Engine Engine `json:"engine"`
	DSN    string `json:"dsn"`
}

// identRe is the safety check applied to every identifier this package
// interpolates into a query — table and column names cannot be bound
// as driver parameters, so they are validated instead (spec.md §4.9
// "identifier safety").
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,127}$`)

func validIdent(s string) bool { return identRe.MatchString(s) }

// quoteIdent applies the engine-specific quoting rule before an
// identifier is interpolated into a query (spec.md §4.9: "backticks for
// MySQL, double-quotes for Postgres"). SQLite accepts the ANSI
// double-quote form too.
func quoteIdent(e Engine, name string) string {
	if e == MySQL {
		return "`" + name + "`"
	}
	return `"` + name + `"`
}

// Column describes one table column, including the constraint
// annotations the tree formatter renders (spec.md §4.9 "PK/UNIQUE/FK
// annotations").
type Column struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primary_key,omitempty"`
	Unique     bool   `json:"unique,omitempty"`
	// References names the foreign table this column points at, in
	// "table.column" form, or "" if it isn't a foreign key.
	References string `json:"references,omitempty"`
}

// Table describes one table's columns, row count, and (optionally) a
// sample of its rows.
type Table struct {
	Name     string           `json:"name"`
	Columns  []Column         `json:"columns"`
	RowCount int64            `json:"row_count"`
	Sample   []map[string]any `json:"sample,omitempty"`
}

// Schema is a snapshot of every table in the configured database.
type Schema struct {
	Engine    Engine    `json:"engine"`
	Tables    []Table   `json:"tables"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Inspector fetches and TTL-caches schema snapshots per project.
type Inspector struct {
	cache *cache.TTLCache[*Schema]
}

// New creates an Inspector with the given schema-cache TTL.
func New(ttl time.Duration) *Inspector {
	return &Inspector{cache: cache.NewTTLCache[*Schema](64, ttl)}
}

// Fetch returns the cached schema for projectID if fresh and
// forceRefresh is false, otherwise connects and re-fetches (spec.md
// §4.9 "get_schema(force_refresh=false)").
func (i *Inspector) Fetch(ctx context.Context, projectID string, cfg Config, forceRefresh bool) (*Schema, error) {
	if !forceRefresh {
		if s, ok := i.cache.Get(projectID); ok {
			return s, nil
		}
	}
	s, err := fetch(ctx, cfg, 0)
	if err != nil {
		return nil, err
	}
	i.cache.Set(projectID, s)
	return s, nil
}

// FetchTable connects and describes a single table, independent of the
// cached full-schema snapshot, optionally including a row sample
// (spec.md §4.9 "db_table").
func (i *Inspector) FetchTable(ctx context.Context, cfg Config, table string, sampleRows int) (*Table, error) {
	if !validIdent(table) {
		return nil, chainerr.New(chainerr.InvalidInput, fmt.Sprintf("invalid identifier %q", table))
	}

	driver, err := driverName(cfg.Engine)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, chainerr.Wrap(chainerr.DBFail, fmt.Sprintf("opening %s connection", cfg.Engine), err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, chainerr.Wrap(chainerr.DBFail, fmt.Sprintf("pinging %s", cfg.Engine), err)
	}

	t, err := describeTable(ctx, db, cfg.Engine, table)
	if err != nil {
		return nil, err
	}
	if sampleRows > 0 {
		sample, err := sampleRowsOf(ctx, db, cfg.Engine, table, sampleRows)
		if err != nil {
			return nil, chainerr.Wrap(chainerr.DBFail, fmt.Sprintf("sampling %s", table), err)
		}
		t.Sample = sample
	}
	return t, nil
}

// Ping verifies cfg is reachable, without fetching a schema. Used by
// db_connect to fail fast on a bad DSN (spec.md §4.9 "Connect stores a
// DBConfig").
func Ping(ctx context.Context, cfg Config) error {
	driver, err := driverName(cfg.Engine)
	if err != nil {
		return err
	}
	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return chainerr.Wrap(chainerr.DBFail, fmt.Sprintf("opening %s connection", cfg.Engine), err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return chainerr.Wrap(chainerr.DBFail, fmt.Sprintf("pinging %s", cfg.Engine), err)
	}
	return nil
}

// Invalidate forces the next Fetch for projectID to re-query.
func (i *Inspector) Invalidate(projectID string) { i.cache.Delete(projectID) }

func driverName(e Engine) (string, error) {
	switch e {
	case MySQL:
		return "mysql", nil
	case Postgres:
		return "postgres", nil
	case SQLite:
		return "sqlite", nil
	default:
		return "", chainerr.New(chainerr.InvalidInput, fmt.Sprintf("unsupported database engine %q", e))
	}
}

func fetch(ctx context.Context, cfg Config, sampleRows int) (*Schema, error) {
	driver, err := driverName(cfg.Engine)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, chainerr.Wrap(chainerr.DBFail, fmt.Sprintf("opening %s connection", cfg.Engine), err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, chainerr.Wrap(chainerr.Timeout, fmt.Sprintf("pinging %s", cfg.Engine), err)
		}
		return nil, chainerr.Wrap(chainerr.DBFail, fmt.Sprintf("pinging %s", cfg.Engine), err)
	}

	names, err := tableNames(ctx, db, cfg.Engine)
	if err != nil {
		return nil, err
	}

	tables := make([]Table, 0, len(names))
	for _, name := range names {
		if !validIdent(name) {
			continue // defensive: a name that couldn't have been interpolated safely is dropped
		}
		t, err := describeTable(ctx, db, cfg.Engine, name)
		if err != nil {
			return nil, chainerr.Wrap(chainerr.DBFail, fmt.Sprintf("describing %s", name), err)
		}
		if sampleRows > 0 {
			sample, err := sampleRowsOf(ctx, db, cfg.Engine, name, sampleRows)
			if err == nil {
				t.Sample = sample
			}
		}
		tables = append(tables, *t)
	}

	return &Schema{Engine: cfg.Engine, Tables: tables, FetchedAt: time.Now().UTC()}, nil
}

// describeTable gathers one table's columns, row count, and constraint
// annotations.
func describeTable(ctx context.Context, db *sql.DB, engine Engine, table string) (*Table, error) {
	cols, err := columns(ctx, db, engine, table)
	if err != nil {
		return nil, fmt.Errorf("reading columns for %s: %w", table, err)
	}
	pk, unique, fk, err := constraints(ctx, db, engine, table)
	if err == nil {
		applyConstraints(cols, pk, unique, fk)
	}
	count, err := rowCount(ctx, db, engine, table)
	if err != nil {
		count = -1 // best-effort: an unreadable count never fails the describe
	}
	return &Table{Name: table, Columns: cols, RowCount: count}, nil
}

func applyConstraints(cols []Column, pk, unique map[string]bool, fk map[string]string) {
	for i := range cols {
		cols[i].PrimaryKey = pk[cols[i].Name]
		cols[i].Unique = unique[cols[i].Name]
		cols[i].References = fk[cols[i].Name]
	}
}

func rowCount(ctx context.Context, db *sql.DB, engine Engine, table string) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(engine, table))
	var n int64
	if err := db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// sampleRowsOf returns up to n rows of table as generic maps, for the
// tree formatter's "sample N rows" block (spec.md §4.9).
func sampleRowsOf(ctx context.Context, db *sql.DB, engine Engine, table string, n int) ([]map[string]any, error) {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", quoteIdent(engine, table), n)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = vals[i]
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func tableNames(ctx context.Context, db *sql.DB, engine Engine) ([]string, error) {
	var query string
	switch engine {
	case MySQL:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE()"
	case Postgres:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = 'public'"
	case SQLite:
		query = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'"
	default:
		return nil, chainerr.New(chainerr.InvalidInput, fmt.Sprintf("unsupported engine %q", engine))
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, chainerr.Wrap(chainerr.DBFail, "listing tables", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	sort.Strings(names)
	return names, rows.Err()
}

func columns(ctx context.Context, db *sql.DB, engine Engine, table string) ([]Column, error) {
	switch engine {
	case MySQL:
		return columnsInformationSchema(ctx, db, "DATABASE()", table)
	case Postgres:
		return columnsInformationSchema(ctx, db, "'public'", table)
	case SQLite:
		return columnsPragma(ctx, db, table)
	default:
		return nil, fmt.Errorf("unsupported engine %q", engine)
	}
}

func columnsInformationSchema(ctx context.Context, db *sql.DB, schemaExpr, table string) ([]Column, error) {
	query := fmt.Sprintf(
		"SELECT column_name, data_type, is_nullable FROM information_schema.columns WHERE table_schema = %s AND table_name = ? ORDER BY ordinal_position",
		schemaExpr,
	)
	rows, err := db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var name, typ, nullable string
		if err := rows.Scan(&name, &typ, &nullable); err != nil {
			return nil, err
		}
		cols = append(cols, Column{Name: name, Type: typ, Nullable: strings.EqualFold(nullable, "YES")})
	}
	return cols, rows.Err()
}

func columnsPragma(ctx context.Context, db *sql.DB, table string) ([]Column, error) {
	// table_info is a pragma, not a query against a normal table, so the
	// table name has to be interpolated; validIdent() has already run by
	// the time we get here.
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var cid int
		var name, typ string
		var notNull int
		var dflt any
		var pk int
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, Column{Name: name, Type: typ, Nullable: notNull == 0, PrimaryKey: pk > 0})
	}
	return cols, rows.Err()
}

// constraints returns, per column name, whether it is a primary key,
// whether it carries a UNIQUE index, and the "table.column" it
// references as a foreign key (spec.md §4.9 "PK/UNIQUE/FK
// annotations"). A failure to read constraints is non-fatal — the
// caller falls back to plain column info.
func constraints(ctx context.Context, db *sql.DB, engine Engine, table string) (pk, unique map[string]bool, fk map[string]string, err error) {
	switch engine {
	case SQLite:
		return constraintsSQLite(ctx, db, table)
	case MySQL:
		return constraintsInformationSchema(ctx, db, "DATABASE()", table)
	case Postgres:
		return constraintsInformationSchema(ctx, db, "'public'", table)
	default:
		return nil, nil, nil, fmt.Errorf("unsupported engine %q", engine)
	}
}

func constraintsSQLite(ctx context.Context, db *sql.DB, table string) (pk, unique map[string]bool, fk map[string]string, err error) {
	pk, unique, fk = map[string]bool{}, map[string]bool{}, map[string]string{}

	pkRows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, nil, nil, err
	}
	defer pkRows.Close()
	for pkRows.Next() {
		var cid int
		var name, typ string
		var notNull, isPK int
		var dflt any
		if err := pkRows.Scan(&cid, &name, &typ, &notNull, &dflt, &isPK); err != nil {
			return nil, nil, nil, err
		}
		if isPK > 0 {
			pk[name] = true
		}
	}

	idxRows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%s)", table))
	if err == nil {
		defer idxRows.Close()
		for idxRows.Next() {
			var seq int
			var name string
			var isUnique int
			var origin, partial any
			if err := idxRows.Scan(&seq, &name, &isUnique, &origin, &partial); err != nil {
				continue
			}
			if isUnique == 0 {
				continue
			}
			infoRows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%s)", quoteIdent(SQLite, name)))
			if err != nil {
				continue
			}
			for infoRows.Next() {
				var seqno, cid int
				var colName string
				if err := infoRows.Scan(&seqno, &cid, &colName); err == nil {
					unique[colName] = true
				}
			}
			infoRows.Close()
		}
	}

	fkRows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", table))
	if err == nil {
		defer fkRows.Close()
		for fkRows.Next() {
			var id, seq int
			var refTable, from, to, onUpdate, onDelete, match string
			if err := fkRows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err == nil {
				fk[from] = refTable + "." + to
			}
		}
	}

	return pk, unique, fk, nil
}

func constraintsInformationSchema(ctx context.Context, db *sql.DB, schemaExpr, table string) (pk, unique map[string]bool, fk map[string]string, err error) {
	pk, unique, fk = map[string]bool{}, map[string]bool{}, map[string]string{}

	query := fmt.Sprintf(`
		SELECT kcu.column_name, tc.constraint_type, ccu.table_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
		LEFT JOIN information_schema.constraint_column_usage ccu
			ON tc.constraint_name = ccu.constraint_name AND tc.constraint_type = 'FOREIGN KEY'
		WHERE tc.table_schema = %s AND tc.table_name = ?`, schemaExpr)

	rows, err := db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, nil, nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var column, kind string
		var refTable, refColumn sql.NullString
		if err := rows.Scan(&column, &kind, &refTable, &refColumn); err != nil {
			return nil, nil, nil, err
		}
		switch kind {
		case "PRIMARY KEY":
			pk[column] = true
		case "UNIQUE":
			unique[column] = true
		case "FOREIGN KEY":
			if refTable.Valid && refColumn.Valid {
				fk[column] = refTable.String + "." + refColumn.String
			}
		}
	}
	return pk, unique, fk, rows.Err()
}

// FormatTree renders a schema as an indented tree, for returning to the
// agent as readable text (spec.md §4.9: "table (N cols, ~R rows)"
// followed by per-column PK/UNIQUE/FK annotations and an optional
// sample-rows block).
func FormatTree(s *Schema) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s schema (%d tables, fetched %s)\n", s.Engine, len(s.Tables), s.FetchedAt.Format(time.RFC3339))
	for _, t := range s.Tables {
		rows := fmt.Sprintf("~%d rows", t.RowCount)
		if t.RowCount < 0 {
			rows = "rows unknown"
		}
		fmt.Fprintf(&sb, "├── %s (%d cols, %s)\n", t.Name, len(t.Columns), rows)
		for j, c := range t.Columns {
			branch := "│   ├──"
			if j == len(t.Columns)-1 && len(t.Sample) == 0 {
				branch = "│   └──"
			}
			var annotations []string
			if c.PrimaryKey {
				annotations = append(annotations, "PK")
			}
			if c.Unique {
				annotations = append(annotations, "UNIQUE")
			}
			if c.References != "" {
				annotations = append(annotations, "FK -> "+c.References)
			}
			null := ""
			if c.Nullable {
				null = " (nullable)"
			}
			suffix := ""
			if len(annotations) > 0 {
				suffix = " [" + strings.Join(annotations, ", ") + "]"
			}
			fmt.Fprintf(&sb, "%s %s: %s%s%s\n", branch, c.Name, c.Type, null, suffix)
		}
		if len(t.Sample) > 0 {
			fmt.Fprintf(&sb, "│   └── sample %d rows:\n", len(t.Sample))
			for _, row := range t.Sample {
				fmt.Fprintf(&sb, "│       %v\n", row)
			}
		}
	}
	return sb.String()
}
