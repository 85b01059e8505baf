// Package rdb is a GORM-backed, write-only sink for run history. Evaluation
// never reads these tables; they exist purely for audit.
package rdb

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenFromURL opens a GORM DB based on a simple history-db URL string.
// Supported:
//   - sqlite:<dsn>   e.g., sqlite:./nightshift-history.db or sqlite::memory:
//   - sqlite3:<dsn>  alias of sqlite
func OpenFromURL(dbURL string) (*gorm.DB, error) {
	switch {
	case strings.HasPrefix(dbURL, "sqlite:"):
		return open(strings.TrimPrefix(dbURL, "sqlite:"))
	case strings.HasPrefix(dbURL, "sqlite3:"):
		return open(strings.TrimPrefix(dbURL, "sqlite3:"))
	default:
		return nil, fmt.Errorf("unsupported history db scheme: %s", dbURL)
	}
}

func open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "./nightshift-history.db"
	}
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
}

// AutoMigrate applies schema migrations for all history models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&RunRecord{}, &StopRecord{})
}
