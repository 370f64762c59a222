package database

import (
    "context"
    "database/sql"
    _ "embed"
    "fmt"
    "strings"
)

//go:embed schema.sql
var schema string

// Statements splits the embedded schema into executable statements,
// dropping comment lines.
func Statements() []string {
    var out []string
    for _, chunk := range strings.Split(schema, ";") {
        var lines []string
        for _, line := range strings.Split(chunk, "\n") {
            if strings.HasPrefix(strings.TrimSpace(line), "--") {
                continue
            }
            lines = append(lines, line)
        }
        if stmt := strings.TrimSpace(strings.Join(lines, "\n")); stmt != "" {
            out = append(out, stmt)
        }
    }
    return out
}

// Migrate creates any missing table. It never alters existing ones.
func Migrate(ctx context.Context, db *sql.DB) error {
    for _, stmt := range Statements() {
        if _, err := db.ExecContext(ctx, stmt); err != nil {
            return fmt.Errorf("migrate: %w", err)
        }
    }
    return nil
}
