// Package auth resolves a connection's session token to an authenticated
// identity. The coordinator only consumes this; issuing and expiring sessions
// is the authentication subsystem's job.
package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

var (
	ErrNoToken        = errors.New("no session token presented")
	ErrSessionExpired = errors.New("session not found or expired")
)

// Resolver maps a session token to the identity it was issued for.
type Resolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// RedisResolver reads sessions written by the authentication service. Each
// session is a plain string value at <prefix><token> holding the identity.
type RedisResolver struct {
	client *redis.Client
	prefix string
}

func NewRedisResolver(client *redis.Client, prefix string) *RedisResolver {
	return &RedisResolver{client: client, prefix: prefix}
}

func (r *RedisResolver) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNoToken
	}

	identity, err := r.client.Get(ctx, r.prefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionExpired
		}
		return "", err
	}
	return identity, nil
}

// MemoryResolver is an in-process session store for tests.
type MemoryResolver struct {
	mu       sync.RWMutex
	sessions map[string]string
}

func NewMemoryResolver() *MemoryResolver {
	return &MemoryResolver{sessions: make(map[string]string)}
}

func (r *MemoryResolver) Put(token, identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[token] = identity
}

func (r *MemoryResolver) Resolve(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNoToken
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.sessions[token]
	if !ok {
		return "", ErrSessionExpired
	}
	return identity, nil
}
