package service

import (
	"context"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/rl1809/inheritance/internal/core/domain"
	"github.com/rl1809/inheritance/internal/metrics"
	"github.com/rl1809/inheritance/internal/port"
)

const publishTimeout = 5 * time.Second

// StartWorkers launches count goroutines publishing queued events. Events of
// one ledger always go to the same worker, so they are published in Seq order.
// Workers exit once Close is called and the queue is drained.
func (s *LedgerService) StartWorkers(count int, publisher port.EventPublisher) {
	if count <= 0 {
		count = 1
	}
	shards := make([]chan domain.Event, count)
	for i := range shards {
		shards[i] = make(chan domain.Event, cap(s.eventQueue)/count+1)
		s.workers.Add(1)
		go func(id int) {
			defer s.workers.Done()
			s.workerLoop(id, shards[id], publisher)
		}(i)
	}

	s.workers.Add(1)
	go func() {
		defer s.workers.Done()
		s.dispatch(shards)
	}()
	s.log.Info("started event workers", zap.Int("count", count))
}

func (s *LedgerService) dispatch(shards []chan domain.Event) {
	defer func() {
		for _, ch := range shards {
			close(ch)
		}
	}()
	for ev := range s.eventQueue {
		metrics.SetEventQueueDepth(len(s.eventQueue))
		shards[xxhash.Sum64String(ev.LedgerID)%uint64(len(shards))] <- ev
	}
}

// GetEventQueue exposes the queue for callers that consume events themselves
// instead of starting workers.
func (s *LedgerService) GetEventQueue() <-chan domain.Event {
	return s.eventQueue
}

// Close stops accepting events and waits for the workers to drain the queue.
func (s *LedgerService) Close() {
	s.closeMu.Lock()
	if !s.closed {
		s.closed = true
		close(s.eventQueue)
	}
	s.closeMu.Unlock()
	s.workers.Wait()
}

func (s *LedgerService) enqueue(ev domain.Event) {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed {
		s.log.Warn("service closed, event not published",
			zap.String("ledger", ev.LedgerID), zap.Int("seq", ev.Seq))
		return
	}
	select {
	case s.eventQueue <- ev:
		metrics.SetEventQueueDepth(len(s.eventQueue))
	default:
		metrics.IncPublishFailures()
		s.log.Error("event queue full, dropping event",
			zap.String("ledger", ev.LedgerID),
			zap.Int("seq", ev.Seq),
			zap.String("kind", string(ev.Kind)))
	}
}

func (s *LedgerService) workerLoop(id int, queue <-chan domain.Event, publisher port.EventPublisher) {
	for ev := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)

		if err := publisher.Publish(ctx, ev); err != nil {
			metrics.IncPublishFailures()
			s.log.Error("failed to publish event",
				zap.Int("worker", id),
				zap.String("ledger", ev.LedgerID),
				zap.Int("seq", ev.Seq),
				zap.Error(err))
		} else {
			s.log.Debug("published event",
				zap.Int("worker", id),
				zap.String("ledger", ev.LedgerID),
				zap.Int("seq", ev.Seq))
		}

		cancel()
	}
}
