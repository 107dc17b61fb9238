// Package storage owns the SQLite session: one exclusive connection per
// run, statements issued sequentially.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pdw/internal/core"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database and applies the
// static-schema migrations.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB exposes the underlying handle for transactional batch work.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Exec runs one statement.
func (s *Store) Exec(ctx context.Context, query string, args ...any) error {
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("exec %q: %w", statementHead(query), err)
	}
	return nil
}

// Query runs a statement and materializes the full typed result set.
func (s *Store) Query(ctx context.Context, query string) (core.ResultSet, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return core.ResultSet{}, fmt.Errorf("query %q: %w", statementHead(query), err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return core.ResultSet{}, fmt.Errorf("query %q: columns: %w", statementHead(query), err)
	}

	result := core.ResultSet{Columns: columns}
	for rows.Next() {
		scanned := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range scanned {
			targets[i] = &scanned[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return core.ResultSet{}, fmt.Errorf("query %q: scan: %w", statementHead(query), err)
		}
		row := make([]core.Value, len(columns))
		for i, v := range scanned {
			row[i] = core.ValueOf(v)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return core.ResultSet{}, fmt.Errorf("query %q: %w", statementHead(query), err)
	}
	return result, nil
}

// DropTable drops a table when present.
func (s *Store) DropTable(ctx context.Context, name string) error {
	return s.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS [%s]", SanitizeIdentifier(name)))
}

// SanitizeIdentifier strips the characters that would break out of a
// bracket-quoted SQL identifier. Discovered names (sheet names, category
// labels) originate from user-controlled spreadsheet data and must pass
// through here before being interpolated into generated statements.
func SanitizeIdentifier(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', '\'', '"', '`', ';':
			return -1
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
}

// statementHead trims a statement for error messages.
func statementHead(query string) string {
	query = strings.Join(strings.Fields(query), " ")
	if len(query) > 60 {
		return query[:60] + "..."
	}
	return query
}
