package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/go-redis/redis/v8"
)

// ErrKeyNotFound is returned by a KV when the key holds no value.
var ErrKeyNotFound = errors.New("draft: key not found")

// KV is the durable key-value surface drafts are persisted on. Writes are
// best-effort; the authoritative order always lives server-side once
// submitted.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, key string) error
}

// RedisKV adapts a redis client to the KV surface.
type RedisKV struct {
	client *redis.Client
}

func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrKeyNotFound
	}
	return value, err
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *RedisKV) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Store persists drafts and the per-restaurant preferred display
// currency. Storage failures are logged and swallowed: draft persistence
// is a convenience and must never block placing or viewing an order.
type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

func (s *Store) Save(ctx context.Context, key Key, d Draft) {
	data, err := json.Marshal(d)
	if err != nil {
		log.Printf("draft: failed to marshal draft %s: %v", key, err)
		return
	}
	if err := s.kv.Set(ctx, key.String(), string(data)); err != nil {
		log.Printf("draft: failed to save draft %s: %v", key, err)
	}
}

// Load returns the stored draft, or an empty draft when nothing usable is
// stored. Malformed data is treated the same as absent data.
func (s *Store) Load(ctx context.Context, key Key) Draft {
	value, err := s.kv.Get(ctx, key.String())
	if err != nil {
		if err != ErrKeyNotFound {
			log.Printf("draft: failed to load draft %s: %v", key, err)
		}
		return Draft{}
	}

	var d Draft
	if err := json.Unmarshal([]byte(value), &d); err != nil {
		log.Printf("draft: malformed draft %s, treating as empty: %v", key, err)
		return Draft{}
	}
	return d
}

func (s *Store) Clear(ctx context.Context, key Key) {
	if err := s.kv.Del(ctx, key.String()); err != nil {
		log.Printf("draft: failed to clear draft %s: %v", key, err)
	}
}

func currencyKey(restaurantID string) string {
	return fmt.Sprintf("currency:%s", restaurantID)
}

func (s *Store) SavePreferredCurrency(ctx context.Context, restaurantID, code string) {
	if err := s.kv.Set(ctx, currencyKey(restaurantID), code); err != nil {
		log.Printf("draft: failed to save preferred currency for %s: %v", restaurantID, err)
	}
}

// PreferredCurrency returns the stored display currency, or "" when none
// is stored (callers fall back to the restaurant's base currency).
func (s *Store) PreferredCurrency(ctx context.Context, restaurantID string) string {
	value, err := s.kv.Get(ctx, currencyKey(restaurantID))
	if err != nil {
		if err != ErrKeyNotFound {
			log.Printf("draft: failed to load preferred currency for %s: %v", restaurantID, err)
		}
		return ""
	}
	return value
}

func (s *Store) ClearPreferredCurrency(ctx context.Context, restaurantID string) {
	if err := s.kv.Del(ctx, currencyKey(restaurantID)); err != nil {
		log.Printf("draft: failed to clear preferred currency for %s: %v", restaurantID, err)
	}
}
