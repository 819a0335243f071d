package catalog

import (
	"context"
	"path/filepath"
	"strings"
)

// SourceBuiltin names the catalog compiled into the binary.
const SourceBuiltin = "builtin"

// Open returns the catalog named by source: "" or "builtin" for the compiled
// catalog, a path ending in .db, .sqlite or .sqlite3 (or prefixed "sqlite:")
// for an SQLite store, and any other path for a YAML/JSON file.
func Open(ctx context.Context, source string) (*Memory, error) {
	source = strings.TrimSpace(source)
	if source == "" || source == SourceBuiltin {
		return Builtin(), nil
	}

	if path, ok := strings.CutPrefix(source, "sqlite:"); ok {
		return OpenSQLite(ctx, path)
	}

	switch strings.ToLower(filepath.Ext(source)) {
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLite(ctx, source)
	default:
		return LoadFile(ctx, source)
	}
}
