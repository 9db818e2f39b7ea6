package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rl1809/inheritance/internal/adapter/storage"
	"github.com/rl1809/inheritance/internal/core/domain"
	"github.com/rl1809/inheritance/internal/core/service"
	"github.com/rl1809/inheritance/internal/port"
)

const (
	fundedWithdrawals = 20
	totalRequests     = 50
	queueSize         = 100
	cacheTTL          = 30 * time.Second
)

var (
	owner = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	heir  = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "redis address, empty for the in-process cache")
	flag.Parse()

	ctx := context.Background()

	var cache port.CacheRepository = storage.NewLocalCache(cacheTTL)
	if *redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("redis unavailable, using in-process cache: %v", err)
		} else {
			defer rdb.Close()
			cache = storage.NewRedisAdapter(rdb, cacheTTL)
		}
	}

	ledgerService := service.NewLedgerService(storage.NewMemoryAdapter(), cache, clock.New(), zap.NewNop(), queueSize)
	defer ledgerService.Close()

	// Drain the event queue in background
	go func() {
		for range ledgerService.GetEventQueue() {
		}
	}()

	one := domain.MustParseEther("1")
	l, err := ledgerService.Deploy(ctx, owner, heir)
	if err != nil {
		log.Fatalf("failed to deploy ledger: %v", err)
	}
	funding := new(uint256.Int).Mul(one, uint256.NewInt(fundedWithdrawals))
	if _, err := ledgerService.Deposit(ctx, l.ID, heir, funding); err != nil {
		log.Fatalf("failed to fund ledger: %v", err)
	}

	// Counters
	var successCount atomic.Int32
	var failCount atomic.Int32

	// Spawn concurrent withdrawals
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := ledgerService.Withdraw(ctx, uuid.NewString(), l.ID, owner, one)
			if err == nil {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Balance:  %s ether\n", domain.FormatEther(funding))
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if success == fundedWithdrawals && fail == totalRequests-fundedWithdrawals {
		fmt.Printf("PASS: Exactly %d withdrawals succeeded, %d failed\n", fundedWithdrawals, totalRequests-fundedWithdrawals)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d fail, got %d/%d\n",
			fundedWithdrawals, totalRequests-fundedWithdrawals, success, fail)
	}

	// Verify final balance
	final, err := ledgerService.Get(ctx, l.ID)
	if err != nil {
		log.Fatalf("failed to read ledger: %v", err)
	}
	fmt.Printf("Final Balance:    %s wei\n", final.Balance.Dec())

	if final.Balance.IsZero() {
		fmt.Println("PASS: Balance drained to 0")
	} else {
		fmt.Printf("FAIL: Expected balance 0, got %s\n", final.Balance.Dec())
	}
}
