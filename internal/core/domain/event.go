package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type EventKind string

const (
	EventDeployed  EventKind = "deployed"
	EventDeposited EventKind = "deposited"
	EventWithdrawn EventKind = "withdrawn"
	EventInherited EventKind = "inherited"
)

// Event is a journal entry for a successful ledger change. Seq equals the
// ledger version the change produced.
type Event struct {
	LedgerID     string
	Seq          int
	Kind         EventKind
	Actor        common.Address
	Counterparty common.Address // payee of a withdrawal, new heir of an inheritance
	Amount       *uint256.Int
	Time         time.Time
}
