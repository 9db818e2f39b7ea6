package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/benbjohnson/clock"
	"github.com/cespare/xxhash/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"

	"github.com/rl1809/inheritance/internal/core/domain"
	"github.com/rl1809/inheritance/internal/metrics"
	"github.com/rl1809/inheritance/internal/port"
)

var (
	ErrLedgerNotFound   = errorsmod.RegisterWithGRPCCode(domain.ModuleName, 10, codes.NotFound, "ledger not found")
	ErrDuplicateRequest = errorsmod.RegisterWithGRPCCode(domain.ModuleName, 11, codes.AlreadyExists, "duplicate request")
)

const (
	opDeploy   = "deploy"
	opDeposit  = "deposit"
	opWithdraw = "withdraw"
	opInherit  = "inherit"

	// maxUpdateAttempts bounds retries on optimistic lock conflicts with
	// other processes sharing the repository.
	maxUpdateAttempts = 3
	lockStripes       = 64
)

type mutation func(l *domain.Ledger, now time.Time) (domain.Event, error)

// LedgerService runs ledger operations one at a time per ledger and
// publishes the resulting events asynchronously.
type LedgerService struct {
	repo       port.LedgerRepository
	cache      port.CacheRepository
	clock      clock.Clock
	log        *zap.Logger
	eventQueue chan domain.Event
	locks      [lockStripes]sync.Mutex
	workers    sync.WaitGroup
	closeMu    sync.RWMutex
	closed     bool
}

func NewLedgerService(repo port.LedgerRepository, cache port.CacheRepository, clk clock.Clock, log *zap.Logger, queueSize int) *LedgerService {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LedgerService{
		repo:       repo,
		cache:      cache,
		clock:      clk,
		log:        log,
		eventQueue: make(chan domain.Event, queueSize),
	}
}

// Deploy creates a ledger controlled by owner with heir as successor.
func (s *LedgerService) Deploy(ctx context.Context, owner, heir common.Address) (_ *domain.Ledger, err error) {
	start := time.Now()
	defer func() { observe(opDeploy, err, start) }()

	l, err := domain.NewLedger(uuid.NewString(), owner, heir, s.clock.Now())
	if err != nil {
		return nil, err
	}
	l.Version = 1
	ev := domain.Event{
		LedgerID:     l.ID,
		Seq:          l.Version,
		Kind:         domain.EventDeployed,
		Actor:        owner,
		Counterparty: heir,
		Amount:       new(uint256.Int),
		Time:         l.CreatedAt,
	}
	mu := s.lockFor(l.ID)
	mu.Lock()
	defer mu.Unlock()

	if err = s.repo.Create(ctx, *l, ev); err != nil {
		return nil, fmt.Errorf("create ledger: %w", err)
	}
	s.refreshCache(ctx, l)
	s.enqueue(ev)

	s.log.Info("ledger deployed",
		zap.String("ledger", l.ID),
		zap.Stringer("owner", owner),
		zap.Stringer("heir", heir))
	return l, nil
}

// Deposit credits amount sent by from. Anyone may fund a ledger.
func (s *LedgerService) Deposit(ctx context.Context, ledgerID string, from common.Address, amount *uint256.Int) (*domain.Ledger, error) {
	return s.apply(ctx, opDeposit, "", ledgerID, func(l *domain.Ledger, now time.Time) (domain.Event, error) {
		return l.Deposit(from, amount, now)
	})
}

// Withdraw pays amount out to the owner. A zero amount only resets the
// inactivity clock.
func (s *LedgerService) Withdraw(ctx context.Context, requestID, ledgerID string, caller common.Address, amount *uint256.Int) (*domain.Ledger, error) {
	return s.apply(ctx, opWithdraw, requestID, ledgerID, func(l *domain.Ledger, now time.Time) (domain.Event, error) {
		return l.Withdraw(caller, amount, now)
	})
}

// Inherit hands the ledger over to its heir once the owner is inactive.
func (s *LedgerService) Inherit(ctx context.Context, requestID, ledgerID string, caller, newHeir common.Address) (*domain.Ledger, error) {
	return s.apply(ctx, opInherit, requestID, ledgerID, func(l *domain.Ledger, now time.Time) (domain.Event, error) {
		return l.Inherit(caller, newHeir, now)
	})
}

// Get returns the current ledger state, served from cache when possible.
func (s *LedgerService) Get(ctx context.Context, ledgerID string) (*domain.Ledger, error) {
	cached, err := s.cache.GetLedger(ctx, ledgerID)
	if err != nil {
		s.log.Warn("cache read failed", zap.String("ledger", ledgerID), zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	l, err := s.load(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	s.refreshCache(ctx, l)
	return l, nil
}

// Events returns the journal of a ledger.
func (s *LedgerService) Events(ctx context.Context, ledgerID string) ([]domain.Event, error) {
	if _, err := s.load(ctx, ledgerID); err != nil {
		return nil, err
	}
	events, err := s.repo.ListEvents(ctx, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// Now returns the service clock reading used for ledger operations.
func (s *LedgerService) Now() time.Time {
	return s.clock.Now()
}

func (s *LedgerService) apply(ctx context.Context, op, requestID, ledgerID string, fn mutation) (_ *domain.Ledger, err error) {
	start := time.Now()
	defer func() { observe(op, err, start) }()

	if requestID != "" {
		key := fmt.Sprintf("%s:%s:%s", op, ledgerID, requestID)
		ok, claimErr := s.cache.SetIdempotency(ctx, key)
		if claimErr != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", claimErr)
		}
		if !ok {
			return nil, ErrDuplicateRequest
		}
		defer func() {
			if err == nil {
				return
			}
			if relErr := s.cache.ReleaseIdempotency(context.WithoutCancel(ctx), key); relErr != nil {
				s.log.Warn("failed to release idempotency key",
					zap.String("request", requestID), zap.Error(relErr))
			}
		}()
	}

	mu := s.lockFor(ledgerID)
	mu.Lock()
	defer mu.Unlock()

	for attempt := 1; ; attempt++ {
		l, loadErr := s.load(ctx, ledgerID)
		if loadErr != nil {
			return nil, loadErr
		}

		ev, opErr := fn(l, s.clock.Now())
		if opErr != nil {
			return nil, opErr
		}
		l.Version++
		ev.Seq = l.Version

		updErr := s.repo.Update(ctx, *l, ev)
		if errors.Is(updErr, port.ErrOptimisticLock) && attempt < maxUpdateAttempts {
			s.log.Debug("ledger changed concurrently, retrying",
				zap.String("ledger", ledgerID), zap.Int("attempt", attempt))
			continue
		}
		if updErr != nil {
			return nil, fmt.Errorf("update ledger: %w", updErr)
		}

		s.refreshCache(ctx, l)
		s.enqueue(ev)
		s.log.Info("ledger updated",
			zap.String("ledger", ledgerID),
			zap.String("op", op),
			zap.Int("version", l.Version))
		return l, nil
	}
}

func (s *LedgerService) load(ctx context.Context, ledgerID string) (*domain.Ledger, error) {
	l, err := s.repo.Get(ctx, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("get ledger: %w", err)
	}
	if l == nil {
		return nil, ErrLedgerNotFound
	}
	return l, nil
}

func (s *LedgerService) refreshCache(ctx context.Context, l *domain.Ledger) {
	if err := s.cache.SetLedger(ctx, *l); err != nil {
		s.log.Warn("cache write failed", zap.String("ledger", l.ID), zap.Error(err))
	}
}

func (s *LedgerService) lockFor(ledgerID string) *sync.Mutex {
	return &s.locks[xxhash.Sum64String(ledgerID)%lockStripes]
}

func observe(op string, err error, start time.Time) {
	result := "ok"
	if err != nil {
		var coded *errorsmod.Error
		if errors.As(err, &coded) {
			result = coded.Error()
		} else {
			result = "error"
		}
	}
	metrics.ObserveOperation(op, result, time.Since(start))
}
