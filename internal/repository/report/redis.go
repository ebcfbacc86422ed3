package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/fedexist/empatica-challenge/internal/config"
	"github.com/fedexist/empatica-challenge/internal/domain/health"
)

// DayKeyPrefix prefixes the per-day report hash keys in Redis.
const DayKeyPrefix = "device-reports:"

// hashClient is the slice of the go-redis API the store needs.
// Abstracting it keeps the store unit-testable without a server.
type hashClient interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisStore mirrors device reports into a per-day Redis hash, one field per
// device, for dashboard tooling.
type RedisStore struct {
	// client talks to the Redis server.
	client hashClient
	// ttl expires a day's hash after the given duration. Zero keeps it forever.
	ttl time.Duration
}

// NewRedisClient builds a go-redis client from the reports settings.
func NewRedisClient(cfg *config.RedisReports) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedisStore creates a store over an established client.
func NewRedisStore(client hashClient, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

// DayKey returns the Redis key holding the report hash for a day.
func DayKey(day string) string {
	return DayKeyPrefix + day
}

// SaveScanReport writes every device report into the day's hash in one
// round trip and refreshes the TTL.
func (s *RedisStore) SaveScanReport(ctx context.Context, report *health.ScanReport) error {
	if err := checkReport(report); err != nil {
		return err
	}

	if len(report.Devices) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(report.Devices)*2)

	for i := range report.Devices {
		device := &report.Devices[i]

		data, err := json.Marshal(device)
		if err != nil {
			return fmt.Errorf("encode report for %s: %w", device.Device, err)
		}

		values = append(values, device.Device, string(data))
	}

	key := DayKey(report.Day)

	if err := s.client.HSet(ctx, key, values...).Err(); err != nil {
		return fmt.Errorf("store reports for %s: %w", report.Day, err)
	}

	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("set report TTL for %s: %w", report.Day, err)
		}
	}

	return nil
}
