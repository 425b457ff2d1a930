// Package postgres embeds the PostgreSQL migrations.
package postgres

import "embed"

// FS contiene las migraciones de bloques.
//
//go:embed blocks/*.sql
var FS embed.FS

// Dir es el directorio dentro de FS donde viven las migraciones.
const Dir = "blocks"
