package storage

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/inheritance/internal/core/domain"
	"github.com/rl1809/inheritance/internal/port"
)

var (
	testOwner = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	testHeir  = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

// newTestLedger returns a deployed ledger at version 1 and its deployment event.
func newTestLedger(t *testing.T) (domain.Ledger, domain.Event) {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	l, err := domain.NewLedger(uuid.NewString(), testOwner, testHeir, now)
	require.NoError(t, err)
	l.Version = 1
	ev := domain.Event{
		LedgerID:     l.ID,
		Seq:          1,
		Kind:         domain.EventDeployed,
		Actor:        testOwner,
		Counterparty: testHeir,
		Amount:       new(uint256.Int),
		Time:         now,
	}
	return *l, ev
}

// testRepository runs the LedgerRepository contract against repo.
func testRepository(t *testing.T, repo port.LedgerRepository) {
	ctx := context.Background()
	l, ev := newTestLedger(t)

	require.NoError(t, repo.Create(ctx, l, ev))

	got, err := repo.Get(ctx, l.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, testOwner, got.Owner)
	assert.Equal(t, testHeir, got.Heir)
	assert.Equal(t, l.LastWithdrawnTime, got.LastWithdrawnTime)
	assert.True(t, got.Balance.IsZero())
	assert.Equal(t, 1, got.Version)

	deposit, err := got.Deposit(testOwner, domain.MustParseEther("1"), l.CreatedAt)
	require.NoError(t, err)
	got.Version++
	deposit.Seq = got.Version
	require.NoError(t, repo.Update(ctx, *got, deposit))

	// Same version again is stale.
	require.ErrorIs(t, repo.Update(ctx, *got, deposit), port.ErrOptimisticLock)

	stored, err := repo.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MustParseEther("1"), stored.Balance)
	assert.Equal(t, 2, stored.Version)

	events, err := repo.ListEvents(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventDeployed, events[0].Kind)
	assert.Equal(t, domain.EventDeposited, events[1].Kind)
	assert.Equal(t, 2, events[1].Seq)
	assert.Equal(t, domain.MustParseEther("1"), events[1].Amount)

	missing, err := repo.Get(ctx, "nonexistent-ledger")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryAdapter(t *testing.T) {
	testRepository(t, NewMemoryAdapter())
}

func TestBoltAdapter(t *testing.T) {
	repo, err := NewBoltAdapter(t.TempDir() + "/ledger.db")
	require.NoError(t, err)
	defer repo.Close()

	testRepository(t, repo)
}

func TestBoltAdapter_Reopen(t *testing.T) {
	path := t.TempDir() + "/ledger.db"
	repo, err := NewBoltAdapter(path)
	require.NoError(t, err)

	l, ev := newTestLedger(t)
	require.NoError(t, repo.Create(context.Background(), l, ev))
	require.NoError(t, repo.Close())

	repo, err = NewBoltAdapter(path)
	require.NoError(t, err)
	defer repo.Close()

	got, err := repo.Get(context.Background(), l.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, l.Owner, got.Owner)
}

func TestLocalCache_Idempotency(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(time.Minute)

	ok, err := c.SetIdempotency(ctx, "withdraw:l:req-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.SetIdempotency(ctx, "withdraw:l:req-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.ReleaseIdempotency(ctx, "withdraw:l:req-1"))
	ok, err = c.SetIdempotency(ctx, "withdraw:l:req-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalCache_SnapshotVersions(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(time.Minute)
	l, _ := newTestLedger(t)

	miss, err := c.GetLedger(ctx, l.ID)
	require.NoError(t, err)
	assert.Nil(t, miss)

	newer := *l.Clone()
	newer.Version = 2
	newer.Balance = uint256.NewInt(7)
	require.NoError(t, c.SetLedger(ctx, newer))
	require.NoError(t, c.SetLedger(ctx, l))

	got, err := c.GetLedger(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, uint256.NewInt(7), got.Balance)
}

func TestLocalCache_Publish(t *testing.T) {
	c := NewLocalCache(time.Minute)
	l, ev := newTestLedger(t)
	events := c.Subscribe(l.ID, 1)

	require.NoError(t, c.Publish(context.Background(), ev))
	select {
	case got := <-events:
		assert.Equal(t, domain.EventDeployed, got.Kind)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestRecordRoundTrip(t *testing.T) {
	l, ev := newTestLedger(t)
	l.Balance = new(uint256.Int).SetAllOne()

	data, err := encodeLedger(l)
	require.NoError(t, err)
	got, err := decodeLedger(data)
	require.NoError(t, err)
	assert.Equal(t, l.Balance, got.Balance)
	assert.Equal(t, l.Owner, got.Owner)
	assert.True(t, l.CreatedAt.Equal(got.CreatedAt))

	evData, err := encodeEvent(ev)
	require.NoError(t, err)
	gotEv, err := decodeEvent(evData)
	require.NoError(t, err)
	assert.Equal(t, ev.Counterparty, gotEv.Counterparty)
	assert.Equal(t, ev.Seq, gotEv.Seq)
}
