// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kanrihq/kanri/internal/platform/constants"
)

// LoginLimiter bounds failed login attempts per client address using Redis
// fixed-window counters.
//
// # Semantics
//
// A client may fail [constants.MaxLoginAttempts] times within
// [constants.LoginAttemptWindow]; further attempts from the same address are
// rejected until the window expires. A successful login clears the counter.
type LoginLimiter struct {
	redis    redis.UniversalClient
	attempts int
	window   time.Duration
}

// NewLoginLimiter creates a [LoginLimiter] with the platform defaults.
func NewLoginLimiter(redisClient redis.UniversalClient) *LoginLimiter {
	return &LoginLimiter{
		redis:    redisClient,
		attempts: constants.MaxLoginAttempts,
		window:   constants.LoginAttemptWindow,
	}
}

// Check reports whether the client address is still within its attempt budget.
// Returns false when the budget is exhausted.
//
// A Redis outage degrades to allowing the attempt: login availability is
// preferred over strict throttling when the counter store is down.
func (limiter *LoginLimiter) Check(ctx context.Context, clientIP string) (bool, error) {
	count, err := limiter.redis.Get(ctx, limiter.key(clientIP)).Int64()
	if err != nil {
		if err == redis.Nil {
			return true, nil
		}
		return true, fmt.Errorf("auth: login limiter check failed: %w", err)
	}

	return count < int64(limiter.attempts), nil
}

// RecordFailure counts a failed attempt against the client address. The
// window's TTL starts at the first failure.
func (limiter *LoginLimiter) RecordFailure(ctx context.Context, clientIP string) error {
	key := limiter.key(clientIP)

	count, err := limiter.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("auth: login limiter increment failed: %w", err)
	}

	// Stamp the TTL only on the first failure so the window is fixed, not sliding.
	if count == 1 {
		if err := limiter.redis.Expire(ctx, key, limiter.window).Err(); err != nil {
			return fmt.Errorf("auth: login limiter expire failed: %w", err)
		}
	}

	return nil
}

// Reset clears the failure counter for the client address. Called after a
// successful login.
func (limiter *LoginLimiter) Reset(ctx context.Context, clientIP string) error {
	if err := limiter.redis.Del(ctx, limiter.key(clientIP)).Err(); err != nil {
		return fmt.Errorf("auth: login limiter reset failed: %w", err)
	}
	return nil
}

func (limiter *LoginLimiter) key(clientIP string) string {
	return constants.RedisPrefixLoginAttempts + clientIP
}
