package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/rl1809/inheritance/internal/core/domain"
	"github.com/rl1809/inheritance/internal/port"
)

var schema = []string{`
	CREATE TABLE IF NOT EXISTS ledgers (
		id                VARCHAR(36) NOT NULL PRIMARY KEY,
		owner             CHAR(42)    NOT NULL,
		heir              CHAR(42)    NOT NULL,
		last_withdrawn_at BIGINT      NOT NULL,
		balance           VARCHAR(78) NOT NULL,
		version           INT         NOT NULL,
		created_at        DATETIME(6) NOT NULL,
		updated_at        DATETIME(6) NOT NULL
	)`, `
	CREATE TABLE IF NOT EXISTS ledger_events (
		ledger_id    VARCHAR(36) NOT NULL,
		seq          INT         NOT NULL,
		kind         VARCHAR(16) NOT NULL,
		actor        CHAR(42)    NOT NULL,
		counterparty CHAR(42)    NOT NULL,
		amount       VARCHAR(78) NOT NULL,
		occurred_at  DATETIME(6) NOT NULL,
		PRIMARY KEY (ledger_id, seq)
	)`,
}

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// Migrate creates the ledger tables if they are missing.
func (m *MySQLAdapter) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (m *MySQLAdapter) Create(ctx context.Context, l domain.Ledger, ev domain.Event) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ledgers (id, owner, heir, last_withdrawn_at, balance, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Owner.Hex(), l.Heir.Hex(), l.LastWithdrawnTime, l.Balance.Dec(), l.Version,
		l.CreatedAt.UTC(), l.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert ledger: %w", err)
	}

	if err := insertEvent(ctx, tx, ev); err != nil {
		return err
	}

	return tx.Commit()
}

func (m *MySQLAdapter) Get(ctx context.Context, id string) (*domain.Ledger, error) {
	var (
		l           domain.Ledger
		owner, heir string
		balance     string
	)
	err := m.db.QueryRowContext(ctx, `
		SELECT id, owner, heir, last_withdrawn_at, balance, version, created_at, updated_at
		FROM ledgers WHERE id = ?`, id,
	).Scan(&l.ID, &owner, &heir, &l.LastWithdrawnTime, &balance, &l.Version, &l.CreatedAt, &l.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}

	l.Owner = common.HexToAddress(owner)
	l.Heir = common.HexToAddress(heir)
	if l.Balance, err = uint256.FromDecimal(balance); err != nil {
		return nil, fmt.Errorf("parse balance of %s: %w", id, err)
	}
	return &l, nil
}

func (m *MySQLAdapter) Update(ctx context.Context, l domain.Ledger, ev domain.Event) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE ledgers
		SET owner = ?, heir = ?, last_withdrawn_at = ?, balance = ?, version = ?, updated_at = ?
		WHERE id = ? AND version = ?`,
		l.Owner.Hex(), l.Heir.Hex(), l.LastWithdrawnTime, l.Balance.Dec(), l.Version, l.UpdatedAt.UTC(),
		l.ID, l.Version-1,
	)
	if err != nil {
		return fmt.Errorf("update ledger: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return port.ErrOptimisticLock
	}

	if err := insertEvent(ctx, tx, ev); err != nil {
		return err
	}

	return tx.Commit()
}

func (m *MySQLAdapter) ListEvents(ctx context.Context, id string) ([]domain.Event, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT ledger_id, seq, kind, actor, counterparty, amount, occurred_at
		FROM ledger_events WHERE ledger_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var (
			ev                  domain.Event
			kind                string
			actor, counterparty string
			amount              string
			occurredAt          time.Time
		)
		if err := rows.Scan(&ev.LedgerID, &ev.Seq, &kind, &actor, &counterparty, &amount, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Kind = domain.EventKind(kind)
		ev.Actor = common.HexToAddress(actor)
		ev.Counterparty = common.HexToAddress(counterparty)
		ev.Time = occurredAt
		if ev.Amount, err = uint256.FromDecimal(amount); err != nil {
			return nil, fmt.Errorf("parse event amount: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func insertEvent(ctx context.Context, tx *sql.Tx, ev domain.Event) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO ledger_events (ledger_id, seq, kind, actor, counterparty, amount, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.LedgerID, ev.Seq, string(ev.Kind), ev.Actor.Hex(), ev.Counterparty.Hex(), ev.Amount.Dec(), ev.Time.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}
