package tokens

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/folio/portfolio/backend/go-services/pkg/middleware"
	"github.com/redis/go-redis/v9"
)

// ErrRevoked is returned by RevocableVerifier for a logged-out token.
var ErrRevoked = errors.New("token has been revoked")

// DefaultRevokeTTL is used when a token carries no exp claim.
const DefaultRevokeTTL = 24 * time.Hour

// Revocations remembers logged-out bearer tokens until they would expire anyway.
type Revocations interface {
	Revoke(ctx context.Context, raw string, ttl time.Duration) error
	IsRevoked(ctx context.Context, raw string) (bool, error)
}

func revocationKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return "revoked:admin:" + hex.EncodeToString(sum[:])
}

// RedisRevocations keeps revoked tokens in Redis with a TTL. A nil client
// makes every call a no-op.
type RedisRevocations struct {
	client *redis.Client
}

func NewRedisRevocations(c *redis.Client) *RedisRevocations {
	return &RedisRevocations{client: c}
}

func (r *RedisRevocations) Revoke(ctx context.Context, raw string, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}
	return r.client.Set(ctx, revocationKey(raw), "1", ttl).Err()
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, raw string) (bool, error) {
	if r.client == nil {
		return false, nil
	}
	n, err := r.client.Exists(ctx, revocationKey(raw)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryRevocations is the single-process fallback when Redis is absent.
type MemoryRevocations struct {
	mu      sync.Mutex
	now     func() time.Time
	expires map[string]time.Time
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{now: time.Now, expires: make(map[string]time.Time)}
}

func (m *MemoryRevocations) Revoke(ctx context.Context, raw string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, exp := range m.expires {
		if !now.Before(exp) {
			delete(m.expires, k)
		}
	}
	m.expires[revocationKey(raw)] = now.Add(ttl)
	return nil
}

func (m *MemoryRevocations) IsRevoked(ctx context.Context, raw string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.expires[revocationKey(raw)]
	return ok && m.now().Before(exp), nil
}

// RevocableVerifier rejects revoked tokens before delegating to Verifier.
type RevocableVerifier struct {
	Verifier middleware.Verifier
	Store    Revocations
}

func (v RevocableVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	if v.Store != nil {
		revoked, err := v.Store.IsRevoked(ctx, raw)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrRevoked
		}
	}
	return v.Verifier.Verify(ctx, raw)
}

// RemainingLifetime is how long a token with the given claims stays valid.
// Tokens without a usable exp claim get DefaultRevokeTTL.
func RemainingLifetime(claims map[string]interface{}, now time.Time) time.Duration {
	var exp int64
	switch v := claims["exp"].(type) {
	case float64:
		exp = int64(v)
	case int64:
		exp = v
	default:
		return DefaultRevokeTTL
	}
	d := time.Unix(exp, 0).Sub(now)
	if d <= 0 {
		return time.Second
	}
	return d
}
