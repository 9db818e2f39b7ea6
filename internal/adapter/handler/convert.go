package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rl1809/inheritance/internal/core/domain"
)

var errInvalidAddress = errors.New("invalid address")

func parseAddress(field, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w for %s: %q", errInvalidAddress, field, s)
	}
	return common.HexToAddress(s), nil
}

// LedgerView is the external representation of a ledger.
type LedgerView struct {
	ID                string `json:"id"`
	Owner             string `json:"owner"`
	Heir              string `json:"heir"`
	LastWithdrawnTime int64  `json:"last_withdrawn_time"`
	Balance           string `json:"balance"`
	State             string `json:"state"`
	InheritableAt     int64  `json:"inheritable_at"`
	Version           int    `json:"version"`
}

type EventView struct {
	Seq          int    `json:"seq"`
	Kind         string `json:"kind"`
	Actor        string `json:"actor"`
	Counterparty string `json:"counterparty,omitempty"`
	Amount       string `json:"amount"`
	Time         int64  `json:"time"`
}

func newLedgerView(l *domain.Ledger, now time.Time) LedgerView {
	return LedgerView{
		ID:                l.ID,
		Owner:             l.Owner.Hex(),
		Heir:              l.Heir.Hex(),
		LastWithdrawnTime: l.LastWithdrawnTime,
		Balance:           l.Balance.Dec(),
		State:             string(l.State(now)),
		InheritableAt:     l.InheritableAt().Unix(),
		Version:           l.Version,
	}
}

func newEventView(ev domain.Event) EventView {
	v := EventView{
		Seq:    ev.Seq,
		Kind:   string(ev.Kind),
		Actor:  ev.Actor.Hex(),
		Amount: ev.Amount.Dec(),
		Time:   ev.Time.Unix(),
	}
	if ev.Counterparty != (common.Address{}) {
		v.Counterparty = ev.Counterparty.Hex()
	}
	return v
}
