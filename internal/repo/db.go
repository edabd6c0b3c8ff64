// Package repo implements the data persistence layer for the forms domain,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver) and schema migrations.
package repo

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/studsovet/go-forms-backend/internal/domain"
)

// OpenSQLite opens (or creates) a SQLite database with the PRAGMAs the
// submission path depends on active on every pooled connection.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(PragmaDSN(path)), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// PragmaDSN appends the PRAGMAs to the DSN so the driver replays them on
// every new connection. PRAGMAs are connection-scoped: a plain Exec after
// open reaches only the one pooled connection it happens to run on, and a
// writer racing on any other connection then fails immediately with
// SQLITE_BUSY instead of waiting out busy_timeout for the unique-index
// verdict. WAL keeps concurrent submissions from different responders
// readable while a commit is in flight.
func PragmaDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep +
		"_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)"
}

// AutoMigrate creates or updates the forms schema, including the unique
// (form_id, responder_id) index that backstops duplicate submissions.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Form{},
		&domain.FormField{},
		&domain.Response{},
		&domain.ResponseField{},
	)
}
