package service_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/ethereum/go-ethereum/common"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rl1809/inheritance/internal/adapter/storage"
	"github.com/rl1809/inheritance/internal/core/domain"
	"github.com/rl1809/inheritance/internal/core/service"
)

type testEnv struct {
	redis   *redis.Client
	mysql   *sql.DB
	cache   *storage.RedisAdapter
	db      *storage.MySQLAdapter
	cleanup func()
}

func setupTestEnv(t *testing.T) *testEnv {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "root:root@tcp(localhost:3306)/inheritance?parseTime=true"
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	adapter := storage.NewMySQLAdapter(db)
	require.NoError(t, adapter.Migrate(context.Background()))

	return &testEnv{
		redis: rdb,
		mysql: db,
		cache: storage.NewRedisAdapter(rdb, time.Minute),
		db:    adapter,
		cleanup: func() {
			rdb.Close()
			db.Close()
		},
	}
}

var (
	owner   = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	heir    = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	nextOne = common.HexToAddress("0x00000000000000000000000000000000000000c3")
)

func TestIntegration_ConcurrentWithdrawNeverOverdraws(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	svc := service.NewLedgerService(env.db, env.cache, clock.New(), zaptest.NewLogger(t), 100)
	svc.StartWorkers(3, env.cache)

	one := domain.MustParseEther("1")
	l, err := svc.Deploy(ctx, owner, heir)
	require.NoError(t, err)
	_, err = svc.Deposit(ctx, l.ID, heir, new(uint256.Int).Mul(one, uint256.NewInt(10)))
	require.NoError(t, err)

	var successCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Withdraw(ctx, uuid.NewString(), l.ID, owner, one); err == nil {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()
	svc.Close()

	assert.Equal(t, int32(10), successCount.Load())

	stored, err := env.db.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.IsZero())
	assert.Equal(t, 12, stored.Version)

	events, err := env.db.ListEvents(ctx, l.ID)
	require.NoError(t, err)
	assert.Len(t, events, 12)

	cached, err := env.cache.GetLedger(ctx, l.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, stored.Version, cached.Version)
}

func TestIntegration_InheritAcrossInactivity(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	clk := clock.NewMock()
	clk.Set(time.Now())
	svc := service.NewLedgerService(env.db, env.cache, clk, zaptest.NewLogger(t), 10)
	defer svc.Close()

	l, err := svc.Deploy(ctx, owner, heir)
	require.NoError(t, err)

	_, err = svc.Inherit(ctx, uuid.NewString(), l.ID, heir, nextOne)
	require.ErrorIs(t, err, domain.ErrOwnerStillActive)

	clk.Add(time.Duration(domain.InactivityPeriod+1) * time.Second)
	got, err := svc.Inherit(ctx, uuid.NewString(), l.ID, heir, nextOne)
	require.NoError(t, err)
	assert.Equal(t, heir, got.Owner)
	assert.Equal(t, nextOne, got.Heir)

	stored, err := env.db.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, heir, stored.Owner)
	assert.Equal(t, clk.Now().Unix(), stored.LastWithdrawnTime)
}

func TestIntegration_IdempotencyPreventsDoubleWithdraw(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	svc := service.NewLedgerService(env.db, env.cache, clock.New(), zaptest.NewLogger(t), 10)
	defer svc.Close()

	l, err := svc.Deploy(ctx, owner, heir)
	require.NoError(t, err)
	_, err = svc.Deposit(ctx, l.ID, heir, domain.MustParseEther("2"))
	require.NoError(t, err)

	requestID := "same-request-id-" + uuid.NewString()
	_, err = svc.Withdraw(ctx, requestID, l.ID, owner, domain.MustParseEther("1"))
	require.NoError(t, err)

	_, err = svc.Withdraw(ctx, requestID, l.ID, owner, domain.MustParseEther("1"))
	if !errors.Is(err, service.ErrDuplicateRequest) {
		t.Errorf("expected ErrDuplicateRequest, got: %v", err)
	}

	stored, err := env.db.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MustParseEther("1"), stored.Balance)
}
