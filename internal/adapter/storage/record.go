package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/rl1809/inheritance/internal/core/domain"
)

// ledgerRecord is the serialized form of a ledger in bolt and redis.
type ledgerRecord struct {
	ID                string         `json:"id"`
	Owner             common.Address `json:"owner"`
	Heir              common.Address `json:"heir"`
	LastWithdrawnTime int64          `json:"lastWithdrawnTime"`
	Balance           string         `json:"balance"`
	Version           int            `json:"version"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

type eventRecord struct {
	LedgerID     string           `json:"ledgerId"`
	Seq          int              `json:"seq"`
	Kind         domain.EventKind `json:"kind"`
	Actor        common.Address   `json:"actor"`
	Counterparty common.Address   `json:"counterparty"`
	Amount       string           `json:"amount"`
	Time         time.Time        `json:"time"`
}

func encodeLedger(l domain.Ledger) ([]byte, error) {
	return json.Marshal(ledgerRecord{
		ID:                l.ID,
		Owner:             l.Owner,
		Heir:              l.Heir,
		LastWithdrawnTime: l.LastWithdrawnTime,
		Balance:           l.Balance.Dec(),
		Version:           l.Version,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	})
}

func decodeLedger(data []byte) (*domain.Ledger, error) {
	var rec ledgerRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode ledger: %w", err)
	}
	balance, err := uint256.FromDecimal(rec.Balance)
	if err != nil {
		return nil, fmt.Errorf("decode ledger %s balance: %w", rec.ID, err)
	}
	return &domain.Ledger{
		ID:                rec.ID,
		Owner:             rec.Owner,
		Heir:              rec.Heir,
		LastWithdrawnTime: rec.LastWithdrawnTime,
		Balance:           balance,
		Version:           rec.Version,
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         rec.UpdatedAt,
	}, nil
}

func encodeEvent(ev domain.Event) ([]byte, error) {
	return json.Marshal(eventRecord{
		LedgerID:     ev.LedgerID,
		Seq:          ev.Seq,
		Kind:         ev.Kind,
		Actor:        ev.Actor,
		Counterparty: ev.Counterparty,
		Amount:       ev.Amount.Dec(),
		Time:         ev.Time,
	})
}

func decodeEvent(data []byte) (domain.Event, error) {
	var rec eventRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Event{}, fmt.Errorf("decode event: %w", err)
	}
	amount, err := uint256.FromDecimal(rec.Amount)
	if err != nil {
		return domain.Event{}, fmt.Errorf("decode event %s/%d amount: %w", rec.LedgerID, rec.Seq, err)
	}
	return domain.Event{
		LedgerID:     rec.LedgerID,
		Seq:          rec.Seq,
		Kind:         rec.Kind,
		Actor:        rec.Actor,
		Counterparty: rec.Counterparty,
		Amount:       amount,
		Time:         rec.Time,
	}, nil
}
