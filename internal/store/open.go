package store

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Backend kinds accepted by Open.
const (
	KindAuto   = "auto"
	KindJSON   = "json"
	KindSQLite = "sqlite"
)

// Kinds lists the accepted backend kinds.
var Kinds = []string{KindAuto, KindJSON, KindSQLite}

// ResolveKind maps "auto" (or empty) to a concrete kind from the file
// extension: .db, .sqlite and .sqlite3 select SQLite, anything else JSON.
func ResolveKind(path, kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindAuto:
		switch strings.ToLower(filepath.Ext(path)) {
		case ".db", ".sqlite", ".sqlite3":
			return KindSQLite, nil
		}
		return KindJSON, nil
	case KindJSON:
		return KindJSON, nil
	case KindSQLite:
		return KindSQLite, nil
	default:
		return "", fmt.Errorf("unknown backend %q: must be one of %s", kind, strings.Join(Kinds, ", "))
	}
}

// Open returns a store for path using the requested backend kind.
func Open(path, kind string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("data file path is required")
	}
	resolved, err := ResolveKind(path, kind)
	if err != nil {
		return nil, err
	}
	switch resolved {
	case KindSQLite:
		b, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return New(b), nil
	default:
		return New(NewFileBackend(path)), nil
	}
}
