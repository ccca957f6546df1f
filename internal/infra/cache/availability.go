// Package cache кеш результатов расчета доступности поверх Redis
//
// Кеш используется только на путях чтения: путь записи (создание, отмена,
// перенос бронирования) всегда перепроверяет занятость по живому хранилищу
// и синхронно инвалидирует кеш затронутой даты перед возвратом результата
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spaflow/booking-engine/internal/domain"
)

const keyPrefix = "availability:"

// MetricsRecorder записывает метрики операций кеша (hit/miss/error)
type MetricsRecorder interface {
	IncCacheOperation(operation, result string)
}

// noopMetrics используется, когда метрики выключены
type noopMetrics struct{}

func (noopMetrics) IncCacheOperation(string, string) {}

// NewRedisClient создает клиент Redis для кеша доступности
func NewRedisClient(addr, password string, db, poolSize int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: poolSize,
	})
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("cache: failed to ping redis: %w", err)
	}
	return nil
}

// AvailabilityCache read-through кеш сводок доступности и слотов
//
// Каждый ключ регистрируется в индексном множестве каждой даты, которую он
// затрагивает: Invalidate(date) удаляет все ключи, зависящие от даты, включая
// сводки диапазонов, покрывающих её
type AvailabilityCache struct {
	client     *redis.Client
	summaryTTL time.Duration
	slotTTL    time.Duration
	metrics    MetricsRecorder
}

// New создает кеш доступности
// metrics может быть nil - тогда метрики не записываются
func New(client *redis.Client, summaryTTL, slotTTL time.Duration, metrics MetricsRecorder) *AvailabilityCache {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &AvailabilityCache{
		client:     client,
		summaryTTL: summaryTTL,
		slotTTL:    slotTTL,
		metrics:    metrics,
	}
}

// Close закрывает соединение с Redis
func (c *AvailabilityCache) Close() error {
	return c.client.Close()
}

// SlotQuery параметры запроса слотов, образующие ключ кеша
type SlotQuery struct {
	Date      time.Time
	ServiceID *int64
	StaffID   *int64
	RoomID    *int64
}

func (q SlotQuery) key() string {
	return fmt.Sprintf("%sslots:%s:svc=%s:staff=%s:room=%s",
		keyPrefix,
		q.Date.Format(domain.DateFormat),
		formatID(q.ServiceID),
		formatID(q.StaffID),
		formatID(q.RoomID),
	)
}

func formatID(id *int64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *id)
}

func summaryKey(startDate time.Time, days int) string {
	return fmt.Sprintf("%ssummary:%s:%d", keyPrefix, startDate.Format(domain.DateFormat), days)
}

func indexKey(date time.Time) string {
	return fmt.Sprintf("%sindex:%s", keyPrefix, date.Format(domain.DateFormat))
}

// GetDateSummaries возвращает закешированные сводки по датам
// (nil, nil) означает промах кеша
func (c *AvailabilityCache) GetDateSummaries(ctx context.Context, startDate time.Time, days int) ([]domain.DateAvailabilitySummary, error) {
	var summaries []domain.DateAvailabilitySummary
	ok, err := c.get(ctx, summaryKey(startDate, days), &summaries)
	if err != nil {
		c.metrics.IncCacheOperation("summary_get", "error")
		return nil, err
	}
	if !ok {
		c.metrics.IncCacheOperation("summary_get", "miss")
		return nil, nil
	}
	c.metrics.IncCacheOperation("summary_get", "hit")
	return summaries, nil
}

// SetDateSummaries кеширует сводки по датам
// Ключ регистрируется в индексе каждой даты диапазона
func (c *AvailabilityCache) SetDateSummaries(ctx context.Context, startDate time.Time, days int, summaries []domain.DateAvailabilitySummary) error {
	key := summaryKey(startDate, days)

	dates := make([]time.Time, 0, days)
	for i := 0; i < days; i++ {
		dates = append(dates, startDate.AddDate(0, 0, i))
	}

	return c.set(ctx, key, summaries, c.summaryTTL, dates)
}

// GetTimeSlots возвращает закешированные слоты на дату
// (nil, nil) означает промах кеша
func (c *AvailabilityCache) GetTimeSlots(ctx context.Context, query SlotQuery) ([]domain.TimeSlot, error) {
	var slots []domain.TimeSlot
	ok, err := c.get(ctx, query.key(), &slots)
	if err != nil {
		c.metrics.IncCacheOperation("slots_get", "error")
		return nil, err
	}
	if !ok {
		c.metrics.IncCacheOperation("slots_get", "miss")
		return nil, nil
	}
	c.metrics.IncCacheOperation("slots_get", "hit")
	return slots, nil
}

// SetTimeSlots кеширует слоты на дату
func (c *AvailabilityCache) SetTimeSlots(ctx context.Context, query SlotQuery, slots []domain.TimeSlot) error {
	return c.set(ctx, query.key(), slots, c.slotTTL, []time.Time{query.Date})
}

// Invalidate удаляет все записи кеша, затрагивающие дату
// Вызывается синхронно после каждой мутации бронирований этой даты
func (c *AvailabilityCache) Invalidate(ctx context.Context, date time.Time) error {
	idx := indexKey(date)

	keys, err := c.client.SMembers(ctx, idx).Result()
	if err != nil {
		c.metrics.IncCacheOperation("invalidate", "error")
		return fmt.Errorf("cache: failed to read index for %s: %w", date.Format(domain.DateFormat), err)
	}

	keys = append(keys, idx)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.metrics.IncCacheOperation("invalidate", "error")
		return fmt.Errorf("cache: failed to invalidate %s: %w", date.Format(domain.DateFormat), err)
	}

	c.metrics.IncCacheOperation("invalidate", "ok")
	return nil
}

// InvalidateAll удаляет все записи кеша доступности
func (c *AvailabilityCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()

	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.metrics.IncCacheOperation("invalidate_all", "error")
		return fmt.Errorf("cache: failed to scan keys: %w", err)
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			c.metrics.IncCacheOperation("invalidate_all", "error")
			return fmt.Errorf("cache: failed to delete keys: %w", err)
		}
	}

	c.metrics.IncCacheOperation("invalidate_all", "ok")
	return nil
}

func (c *AvailabilityCache) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: failed to get %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, fmt.Errorf("cache: failed to unmarshal %s: %w", key, err)
	}

	return true, nil
}

// set пишет значение и регистрирует ключ в индексах затронутых дат
// Индекс живет дольше самой записи, чтобы пережить её TTL
func (c *AvailabilityCache) set(ctx context.Context, key string, value interface{}, ttl time.Duration, dates []time.Time) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: failed to marshal %s: %w", key, err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, data, ttl)
	for _, date := range dates {
		idx := indexKey(date)
		pipe.SAdd(ctx, idx, key)
		pipe.Expire(ctx, idx, ttl*2)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache: failed to set %s: %w", key, err)
	}

	return nil
}
