// Package migrations embeds the schema applied by the migrate command.
package migrations

import (
	"embed"
	"strings"
)

//go:embed mysql/*.sql clickhouse/*.sql
var FS embed.FS

// Statements splits a migration file on semicolons and drops comment-only chunks.
func Statements(sql string) []string {
	var out []string
	for _, chunk := range strings.Split(sql, ";") {
		var b strings.Builder
		for _, line := range strings.Split(chunk, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		if stmt := strings.TrimSpace(b.String()); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
