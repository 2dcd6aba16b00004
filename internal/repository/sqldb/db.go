// Package sqldb runs generated read-only queries against the SQL assistant's
// database and describes its tables for the prompt.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // registers "mysql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // registers "sqlite"

	"github.com/kailas-cloud/fewshot/internal/domain"
)

// Drivers accepted by Open; they match the database/sql driver names.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// MaxResultRows caps the rows rendered into a query result.
const MaxResultRows = 50

// Config holds connection settings.
type Config struct {
	Driver       string
	DSN          string
	Tables       []string // empty = every table
	SampleRows   int
	QueryTimeout time.Duration
}

// DB is a database/sql handle scoped to the assistant's tables.
type DB struct {
	db           *sql.DB
	driver       string
	tables       []string
	sampleRows   int
	queryTimeout time.Duration
	logger       *zap.Logger
}

// Open connects and pings the database.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*DB, error) {
	if cfg.Driver != DriverMySQL && cfg.Driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}
	conn, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	if cfg.Driver == DriverSQLite {
		conn.SetMaxOpenConns(1)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	return &DB{
		db:           conn,
		driver:       cfg.Driver,
		tables:       cfg.Tables,
		sampleRows:   cfg.SampleRows,
		queryTimeout: cfg.QueryTimeout,
		logger:       logger,
	}, nil
}

// Close releases the connection pool.
func (d *DB) Close() error {
	return d.db.Close()
}

// TableInfo renders each table's CREATE statement followed by a few sample rows.
func (d *DB) TableInfo(ctx context.Context) (string, error) {
	tables := d.tables
	if len(tables) == 0 {
		var err error
		if tables, err = d.listTables(ctx); err != nil {
			return "", err
		}
	}

	var b strings.Builder
	for i, t := range tables {
		ddl, err := d.createStatement(ctx, t)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strings.TrimSpace(ddl))

		if d.sampleRows <= 0 {
			continue
		}
		rows, err := d.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", d.quote(t), d.sampleRows))
		if err != nil {
			return "", fmt.Errorf("sample rows of %s: %w", t, err)
		}
		sample, err := renderRows(rows, d.sampleRows)
		if err != nil {
			return "", fmt.Errorf("sample rows of %s: %w", t, err)
		}
		fmt.Fprintf(&b, "\n\n/*\n%d rows from %s table:\n%s\n*/", d.sampleRows, t, sample)
	}
	return b.String(), nil
}

// Query runs a single read-only statement and renders the result as
// tab-separated lines with a header row.
func (d *DB) Query(ctx context.Context, query string) (string, error) {
	query, err := readOnlyStatement(query)
	if err != nil {
		return "", err
	}
	if d.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.queryTimeout)
		defer cancel()
	}

	start := time.Now()
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return "", fmt.Errorf("%w: query failed: %v", domain.ErrInvalidInput, err)
	}
	out, err := renderRows(rows, MaxResultRows)
	if err != nil {
		return "", fmt.Errorf("read query result: %w", err)
	}
	d.logger.Debug("SQL query executed",
		zap.String("driver", d.driver),
		zap.Duration("duration", time.Since(start)),
	)
	return out, nil
}

func (d *DB) listTables(ctx context.Context) ([]string, error) {
	q := "SHOW TABLES"
	if d.driver == DriverSQLite {
		q = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	}
	rows, err := d.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list tables: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

func (d *DB) createStatement(ctx context.Context, table string) (string, error) {
	var ddl string
	var err error
	if d.driver == DriverSQLite {
		err = d.db.QueryRowContext(ctx,
			"SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&ddl)
	} else {
		var name string
		err = d.db.QueryRowContext(ctx, "SHOW CREATE TABLE "+d.quote(table)).Scan(&name, &ddl)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("table %s: %w", table, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("describe table %s: %w", table, err)
	}
	return ddl, nil
}

func (d *DB) quote(ident string) string {
	if d.driver == DriverMySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

var readOnlyVerbs = []string{"SELECT", "WITH", "SHOW", "DESCRIBE", "DESC", "EXPLAIN"}

// readOnlyStatement trims a trailing semicolon and rejects anything but a
// single read statement.
func readOnlyStatement(query string) (string, error) {
	q := strings.TrimSpace(query)
	q = strings.TrimSpace(strings.TrimSuffix(q, ";"))
	if q == "" {
		return "", fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if strings.Contains(q, ";") {
		return "", fmt.Errorf("%w: multiple statements are not allowed", domain.ErrInvalidInput)
	}
	verb := strings.ToUpper(strings.Fields(q)[0])
	for _, v := range readOnlyVerbs {
		if verb == v {
			return q, nil
		}
	}
	return "", fmt.Errorf("%w: only read queries are allowed, got %s", domain.ErrInvalidInput, verb)
}

func renderRows(rows *sql.Rows, limit int) (string, error) {
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(strings.Join(cols, "\t"))

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	cells := make([]string, len(cols))

	n := 0
	for rows.Next() {
		if n == limit {
			b.WriteString("\n...")
			break
		}
		if err := rows.Scan(ptrs...); err != nil {
			return "", err
		}
		for i, v := range values {
			cells[i] = formatValue(v)
		}
		b.WriteByte('\n')
		b.WriteString(strings.Join(cells, "\t"))
		n++
	}
	return b.String(), rows.Err()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.DateTime)
	default:
		return fmt.Sprint(x)
	}
}
