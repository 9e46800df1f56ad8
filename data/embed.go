package data

import (
	"embed"
)

// Schemas holds the JSON schemas records are written against.
// Top level files are record schemas keyed by $id, files in refs/ are shared definitions.
//
//go:embed schemas/*.json schemas/refs/*.json
var Schemas embed.FS

// SchemasDir is the directory inside Schemas holding the record schemas
const SchemasDir = "schemas"
