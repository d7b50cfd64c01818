package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/glucolab/glucometer/internal/logger"
)

// sessionTTL auto-expires stale session state.
const sessionTTL = 24 * time.Hour

// RedisManager persists session state in Redis so it survives across CLI
// invocations. Read errors fall back to "not set" rather than failing the
// command; session state is a convenience, not a source of truth.
type RedisManager struct {
	client *redis.Client
}

// NewRedisManager creates a Redis-backed session manager and verifies the
// connection.
func NewRedisManager(redisHost, redisPort string) (*RedisManager, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", redisHost, redisPort),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisManager{client: client}, nil
}

const (
	keyActivePatient = "session:active_patient"
	keyWindowDays    = "session:window_days"
)

func keyClearedAt(patientID uint) string {
	return fmt.Sprintf("session:patient:%d:cleared_at", patientID)
}

// SetActivePatient sets the patient subsequent commands operate on.
func (m *RedisManager) SetActivePatient(patientID uint) {
	ctx := context.Background()
	if err := m.client.Set(ctx, keyActivePatient, patientID, sessionTTL).Err(); err != nil {
		logger.Warn("Failed to store active patient in Redis", "error", err)
	}
}

// ActivePatient returns the active patient, if one is set.
func (m *RedisManager) ActivePatient() (uint, bool) {
	ctx := context.Background()
	val, err := m.client.Get(ctx, keyActivePatient).Result()
	if err == redis.Nil {
		return 0, false
	}
	if err != nil {
		logger.Warn("Failed to read active patient from Redis", "error", err)
		return 0, false
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// ClearActivePatient unsets the active patient.
func (m *RedisManager) ClearActivePatient() {
	ctx := context.Background()
	if err := m.client.Del(ctx, keyActivePatient).Err(); err != nil {
		logger.Warn("Failed to clear active patient in Redis", "error", err)
	}
}

// SetWindowDays overrides the statistics window for this session.
func (m *RedisManager) SetWindowDays(days int) {
	ctx := context.Background()
	if err := m.client.Set(ctx, keyWindowDays, days, sessionTTL).Err(); err != nil {
		logger.Warn("Failed to store window days in Redis", "error", err)
	}
}

// WindowDays returns the session's window override, if one is set.
func (m *RedisManager) WindowDays() (int, bool) {
	ctx := context.Background()
	val, err := m.client.Get(ctx, keyWindowDays).Result()
	if err == redis.Nil {
		return 0, false
	}
	if err != nil {
		logger.Warn("Failed to read window days from Redis", "error", err)
		return 0, false
	}
	days, err := strconv.Atoi(val)
	if err != nil || days <= 0 {
		return 0, false
	}
	return days, true
}

// MarkHistoryCleared hides readings at or before the given instant from the
// display for one patient.
func (m *RedisManager) MarkHistoryCleared(patientID uint, at time.Time) {
	ctx := context.Background()
	if err := m.client.Set(ctx, keyClearedAt(patientID), at.UnixNano(), sessionTTL).Err(); err != nil {
		logger.Warn("Failed to store history-clear marker in Redis", "error", err)
	}
}

// HistoryClearedAt returns the patient's display-clear marker, if any.
func (m *RedisManager) HistoryClearedAt(patientID uint) (time.Time, bool) {
	ctx := context.Background()
	val, err := m.client.Get(ctx, keyClearedAt(patientID)).Result()
	if err == redis.Nil {
		return time.Time{}, false
	}
	if err != nil {
		logger.Warn("Failed to read history-clear marker from Redis", "error", err)
		return time.Time{}, false
	}
	nanos, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(0, nanos), true
}

// Close releases the Redis connection.
func (m *RedisManager) Close() error {
	return m.client.Close()
}
