package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// InactivityPeriod is how long, in seconds, the owner has to stay away from
// Withdraw before the heir may take the ledger over.
const InactivityPeriod int64 = 2678400

type State string

const (
	StateActive   State = "active"
	StateInactive State = "inactive"
)

// Ledger is an inheritance wallet: the owner withdraws, the heir takes over
// once the owner has been inactive for longer than InactivityPeriod.
type Ledger struct {
	ID                string
	Owner             common.Address
	Heir              common.Address
	LastWithdrawnTime int64 // unix seconds
	Balance           *uint256.Int
	Version           int // optimistic locking
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewLedger creates a ledger with an empty balance whose inactivity clock
// starts at now.
func NewLedger(id string, owner, heir common.Address, now time.Time) (*Ledger, error) {
	if owner == (common.Address{}) {
		return nil, ErrInvalidOwner
	}
	if heir == (common.Address{}) || heir == owner {
		return nil, ErrInvalidHeir
	}
	return &Ledger{
		ID:                id,
		Owner:             owner,
		Heir:              heir,
		LastWithdrawnTime: now.Unix(),
		Balance:           new(uint256.Int),
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// Deposit credits amount to the ledger. Anyone may deposit.
func (l *Ledger) Deposit(from common.Address, amount *uint256.Int, now time.Time) (Event, error) {
	if amount == nil {
		return Event{}, ErrInvalidAmount
	}
	sum, overflow := new(uint256.Int).AddOverflow(l.Balance, amount)
	if overflow {
		return Event{}, ErrBalanceOverflow
	}
	l.Balance = sum
	l.UpdatedAt = now
	return l.event(EventDeposited, from, common.Address{}, amount, now), nil
}

// Withdraw pays amount out to the owner and restarts the inactivity clock,
// also when amount is zero.
func (l *Ledger) Withdraw(caller common.Address, amount *uint256.Int, now time.Time) (Event, error) {
	if caller != l.Owner {
		return Event{}, ErrNotOwner
	}
	if amount == nil {
		return Event{}, ErrInvalidAmount
	}
	if amount.Gt(l.Balance) {
		return Event{}, ErrInsufficientFunds
	}
	l.Balance = new(uint256.Int).Sub(l.Balance, amount)
	l.touch(now)
	return l.event(EventWithdrawn, caller, l.Owner, amount, now), nil
}

// Inherit makes the heir the new owner and newHeir the new heir. It is only
// allowed once the owner is inactive.
func (l *Ledger) Inherit(caller, newHeir common.Address, now time.Time) (Event, error) {
	if caller != l.Heir {
		return Event{}, ErrNotHeir
	}
	if newHeir == (common.Address{}) || newHeir == caller {
		return Event{}, ErrInvalidHeir
	}
	if l.State(now) != StateInactive {
		return Event{}, ErrOwnerStillActive
	}
	l.Owner, l.Heir = l.Heir, newHeir
	// The new owner gets a full period before newHeir can take over.
	l.touch(now)
	return l.event(EventInherited, caller, newHeir, new(uint256.Int), now), nil
}

// State reports whether the owner is still considered active at now.
func (l *Ledger) State(now time.Time) State {
	if now.Unix()-l.LastWithdrawnTime > InactivityPeriod {
		return StateInactive
	}
	return StateActive
}

// InheritableAt returns the first moment at which Inherit can succeed.
func (l *Ledger) InheritableAt() time.Time {
	return time.Unix(l.LastWithdrawnTime+InactivityPeriod+1, 0)
}

func (l *Ledger) Clone() *Ledger {
	c := *l
	c.Balance = new(uint256.Int).Set(l.Balance)
	return &c
}

func (l *Ledger) touch(now time.Time) {
	if ts := now.Unix(); ts > l.LastWithdrawnTime {
		l.LastWithdrawnTime = ts
	}
	l.UpdatedAt = now
}

func (l *Ledger) event(kind EventKind, actor, counterparty common.Address, amount *uint256.Int, now time.Time) Event {
	return Event{
		LedgerID:     l.ID,
		Kind:         kind,
		Actor:        actor,
		Counterparty: counterparty,
		Amount:       new(uint256.Int).Set(amount),
		Time:         now,
	}
}
