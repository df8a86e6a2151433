// Package migrations содержит goose-миграции схемы read-моделей.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
