package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cinema-kiosk/model"
)

const defaultKeyPrefix = "kiosk:"

// RedisStore keeps each snapshot as a hash of seat id to status and the
// recent orders as a capped list of JSON documents.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

// DialRedis connects to addr and checks the server answers a ping.
func DialRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func (s *RedisStore) snapshotKey(key string) (string, error) {
	key = sanitizeKey(key)
	if key == "" {
		return "", ErrEmptyKey
	}
	return s.keyPrefix + "seats:" + key, nil
}

func (s *RedisStore) ordersKey() string {
	return s.keyPrefix + "orders"
}

func (s *RedisStore) LoadSnapshot(ctx context.Context, key string) (map[string]model.SeatStatus, error) {
	redisKey, err := s.snapshotKey(key)
	if err != nil {
		return nil, err
	}
	fields, err := s.client.HGetAll(ctx, redisKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", key, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	snapshot := make(map[string]model.SeatStatus, len(fields))
	for id, status := range fields {
		snapshot[id] = model.SeatStatus(status)
	}
	return snapshot, nil
}

func (s *RedisStore) SaveSnapshot(ctx context.Context, key string, snapshot map[string]model.SeatStatus) error {
	redisKey, err := s.snapshotKey(key)
	if err != nil {
		return err
	}
	values := make(map[string]any, len(snapshot))
	for id, status := range snapshot {
		values[id] = string(status)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, redisKey)
		if len(values) > 0 {
			pipe.HSet(ctx, redisKey, values)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) RememberOrder(ctx context.Context, order model.Order) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to serialize order: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, s.ordersKey(), payload)
		pipe.LTrim(ctx, s.ordersKey(), 0, maxRecentOrders-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("remember order %s: %w", order.ID, err)
	}
	return nil
}

func (s *RedisStore) RecentOrders(ctx context.Context) ([]model.Order, error) {
	items, err := s.client.LRange(ctx, s.ordersKey(), 0, maxRecentOrders-1).Result()
	if err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}
	orders := make([]model.Order, 0, len(items))
	for _, item := range items {
		var order model.Order
		if err := json.Unmarshal([]byte(item), &order); err != nil {
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}
