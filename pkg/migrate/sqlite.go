package migrate

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

//go:embed sqlite_schema.sql
var sqliteSchema string

// ApplySQLiteSchema creates every table on a SQLite connection. It mirrors the
// goose migrations without the Postgres-only pieces (extensions, jsonb, plpgsql).
func ApplySQLiteSchema(ctx context.Context, conn *gorm.DB) error {
	for _, stmt := range sqliteStatements() {
		if err := conn.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply schema statement %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// sqliteStatements splits the schema on blank-line-terminated statements so
// trigger bodies keep their inner semicolons.
func sqliteStatements() []string {
	var stmts []string
	for _, chunk := range strings.Split(sqliteSchema, ";\n\n") {
		stmt := strings.TrimSpace(chunk)
		if stmt == "" {
			continue
		}
		stmts = append(stmts, stmt)
	}
	return stmts
}

func firstLine(stmt string) string {
	if idx := strings.IndexByte(stmt, '\n'); idx >= 0 {
		return stmt[:idx]
	}
	return stmt
}
