package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/inheritance/internal/port"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/inheritance?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	return db
}

func newMySQLAdapter(t *testing.T) (*MySQLAdapter, *sql.DB) {
	db := getMySQLDB(t)
	t.Cleanup(func() { db.Close() })

	adapter := NewMySQLAdapter(db)
	require.NoError(t, adapter.Migrate(context.Background()))
	return adapter, db
}

func TestMySQLAdapter(t *testing.T) {
	adapter, db := newMySQLAdapter(t)
	testRepository(t, adapter)

	db.ExecContext(context.Background(), `DELETE FROM ledger_events WHERE actor = ?`, testOwner.Hex())
}

func TestMySQLAdapter_UpdateMissingLedger(t *testing.T) {
	adapter, _ := newMySQLAdapter(t)

	l, ev := newTestLedger(t)
	l.Version = 2
	ev.Seq = 2
	require.ErrorIs(t, adapter.Update(context.Background(), l, ev), port.ErrOptimisticLock)
}

func TestMySQLAdapter_DuplicateEventRollsBack(t *testing.T) {
	adapter, db := newMySQLAdapter(t)
	ctx := context.Background()

	l, ev := newTestLedger(t)
	require.NoError(t, adapter.Create(ctx, l, ev))

	// Reusing seq 1 violates the events primary key, so the ledger row must
	// stay at version 1.
	next := *l.Clone()
	next.Version = 2
	require.Error(t, adapter.Update(ctx, next, ev))

	var version int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT version FROM ledgers WHERE id = ?`, l.ID).Scan(&version))
	require.Equal(t, 1, version)
}
