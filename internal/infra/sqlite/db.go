// Package sqlite holds the audit database: a pure-Go SQLite connection
// (modernc.org/sqlite, no CGO) and the embedded schema migrations.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// pragmas are applied on every new connection through the DSN.
// WAL lets resources/read list records while the subscriber appends.
var pragmas = []string{
	"journal_mode(WAL)",
	"foreign_keys(ON)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
}

// NewDB opens the audit database at path, or an in-memory one for ":memory:".
// The parent directory must exist; it is not created.
func NewDB(path string) (*sql.DB, error) {
	inMemory := path == memoryPath
	if !inMemory {
		if dir := filepath.Dir(path); !dirExists(dir) {
			return nil, fmt.Errorf("sqlite: audit directory %q does not exist", dir)
		}
	}

	dsn := path
	for i, p := range pragmas {
		sep := "&"
		if i == 0 {
			sep = "?"
		}
		dsn += sep + "_pragma=" + p
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// Each connection to ":memory:" is its own database.
	if inMemory {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping %q: %w", path, err)
	}
	return db, nil
}

func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
