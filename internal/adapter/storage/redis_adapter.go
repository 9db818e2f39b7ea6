package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/inheritance/internal/core/domain"
)

const (
	ledgerKeyPrefix     = "ledger:"
	eventChannelPrefix  = "ledger-events:"
	idempotencyKeyTTL   = 24 * time.Hour
	idempotencyKeyValue = 1
	defaultLedgerTTL    = 30 * time.Second
)

// setLedgerScript stores a snapshot unless the cached one is at the same or
// a newer version, so a slow reader cannot overwrite a fresher write.
var setLedgerScript = redis.NewScript(`
local key = KEYS[1]
local version = tonumber(ARGV[1])

local current = redis.call('HGET', key, 'version')
if current and tonumber(current) >= version then
	return 0
end

redis.call('HSET', key, 'version', version, 'data', ARGV[2])
redis.call('PEXPIRE', key, ARGV[3])
return 1
`)

type RedisAdapter struct {
	client    *redis.Client
	ledgerTTL time.Duration
}

func NewRedisAdapter(client *redis.Client, ledgerTTL time.Duration) *RedisAdapter {
	if ledgerTTL <= 0 {
		ledgerTTL = defaultLedgerTTL
	}
	return &RedisAdapter{client: client, ledgerTTL: ledgerTTL}
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, idempotencyKeyValue, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisAdapter) GetLedger(ctx context.Context, id string) (*domain.Ledger, error) {
	data, err := r.client.HGet(ctx, ledgerKeyPrefix+id, "data").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeLedger(data)
}

func (r *RedisAdapter) SetLedger(ctx context.Context, l domain.Ledger) error {
	data, err := encodeLedger(l)
	if err != nil {
		return err
	}
	key := ledgerKeyPrefix + l.ID
	return setLedgerScript.Run(ctx, r.client, []string{key}, l.Version, data, r.ledgerTTL.Milliseconds()).Err()
}

// Publish sends the event to the ledger's pub/sub channel.
func (r *RedisAdapter) Publish(ctx context.Context, ev domain.Event) error {
	data, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, EventChannel(ev.LedgerID), data).Err()
}

// Subscribe listens to the events of one ledger.
func (r *RedisAdapter) Subscribe(ctx context.Context, ledgerID string) *redis.PubSub {
	return r.client.Subscribe(ctx, EventChannel(ledgerID))
}

// DecodeEvent parses a message received from an event channel.
func DecodeEvent(payload string) (domain.Event, error) {
	return decodeEvent([]byte(payload))
}

func EventChannel(ledgerID string) string {
	return eventChannelPrefix + ledgerID
}
