package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const pendingMarker = "pending"

// Redis is a Store shared by every replica, built on SET NX with expiry.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// OpenRedis connects to url and verifies the connection.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func (r *Redis) Begin(ctx context.Context, key string) (Result, error) {
	// A key that expires between SETNX and GET is reserved again.
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := r.client.SetNX(ctx, key, pendingMarker, r.ttl).Result()
		if err != nil {
			return Result{}, err
		}
		if ok {
			return Result{Status: StatusNew}, nil
		}
		val, err := r.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return Result{}, err
		}
		if val == pendingMarker {
			return Result{Status: StatusPending}, nil
		}
		id, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return Result{}, fmt.Errorf("corrupt idempotency value for %s: %w", key, err)
		}
		return Result{Status: StatusDone, OrderID: id}, nil
	}
	return Result{Status: StatusPending}, nil
}

func (r *Redis) Complete(ctx context.Context, key string, orderID int64) error {
	return r.client.Set(ctx, key, strconv.FormatInt(orderID, 10), r.ttl).Err()
}

func (r *Redis) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
