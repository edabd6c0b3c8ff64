package repo

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func TestPragmaDSN(t *testing.T) {
	got := PragmaDSN("forms.db")
	want := "forms.db?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if got != want {
		t.Fatalf("PragmaDSN = %q, want %q", got, want)
	}

	// A DSN that already carries options gets appended, not clobbered.
	got = PragmaDSN("file:forms.db?mode=rwc")
	if got != "file:forms.db?mode=rwc&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)" {
		t.Fatalf("PragmaDSN with query = %q", got)
	}
}

// PRAGMAs are connection-scoped in SQLite, so they must hold on every
// connection the pool hands out, not just the one that ran a setup Exec.
func TestOpenSQLite_PragmasOnEveryPooledConnection(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "pool.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()

	// Holding several connections at once forces the pool to dial fresh
	// ones rather than reusing a single PRAGMA-blessed connection.
	conns := make([]*sql.Conn, 0, 3)
	t.Cleanup(func() {
		for _, c := range conns {
			_ = c.Close()
		}
	})
	for i := 0; i < 3; i++ {
		conn, err := sqlDB.Conn(ctx)
		if err != nil {
			t.Fatalf("conn %d: %v", i, err)
		}
		conns = append(conns, conn)
	}

	for i, conn := range conns {
		var busy int
		if err := conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&busy); err != nil {
			t.Fatalf("conn %d busy_timeout: %v", i, err)
		}
		if busy != 5000 {
			t.Fatalf("conn %d: busy_timeout = %d, want 5000", i, busy)
		}

		var fk int
		if err := conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
			t.Fatalf("conn %d foreign_keys: %v", i, err)
		}
		if fk != 1 {
			t.Fatalf("conn %d: foreign_keys = %d, want on", i, fk)
		}

		var mode string
		if err := conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
			t.Fatalf("conn %d journal_mode: %v", i, err)
		}
		if mode != "wal" {
			t.Fatalf("conn %d: journal_mode = %q, want wal", i, mode)
		}
	}
}
