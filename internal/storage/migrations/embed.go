// Package migrations embeds and applies the SQL schema.
//
// Files are applied in lexical order on every start, one statement at a
// time, so every statement must be idempotent (IF NOT EXISTS).
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed postgres/*.sql clickhouse/*.sql
var files embed.FS

// Migration is one embedded SQL file split into statements.
type Migration struct {
	Name       string
	Statements []string
}

// Load returns the migrations for dialect ("postgres" or "clickhouse").
func Load(dialect string) ([]Migration, error) {
	entries, err := fs.ReadDir(files, dialect)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s migrations: %w", dialect, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(files, path.Join(dialect, name))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		stmts, err := splitStatements(string(data))
		if err != nil {
			return nil, fmt.Errorf("parse migration %s: %w", name, err)
		}
		if len(stmts) > 0 {
			migrations = append(migrations, Migration{Name: name, Statements: stmts})
		}
	}
	return migrations, nil
}

// splitStatements splits SQL on semicolons outside quoted strings and drops
// -- line comments. ClickHouse's Exec takes one statement per call.
func splitStatements(input string) ([]string, error) {
	var (
		stmts []string
		cur   strings.Builder
		quote byte
	)
	flush := func() {
		if stmt := strings.TrimSpace(cur.String()); stmt != "" {
			stmts = append(stmts, stmt)
		}
		cur.Reset()
	}

	for i := 0; i < len(input); i++ {
		ch := input[i]
		switch {
		case quote != 0:
			cur.WriteByte(ch)
			if ch == quote {
				// '' and "" are escaped quotes
				if i+1 < len(input) && input[i+1] == quote {
					cur.WriteByte(input[i+1])
					i++
					continue
				}
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
			cur.WriteByte(ch)
		case ch == '-' && i+1 < len(input) && input[i+1] == '-':
			for i < len(input) && input[i] != '\n' {
				i++
			}
			cur.WriteByte('\n')
		case ch == ';':
			flush()
		default:
			cur.WriteByte(ch)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	flush()
	return stmts, nil
}
