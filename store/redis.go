package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements CredentialStore using Redis. Suitable for sharing
// credentials between replicas of a service that embeds the SDK.
//
// Like the other persistent backends it never surfaces storage errors:
// unavailability and corruption collapse into absence, corrupted or expired
// entries are deleted on read.
type RedisStore struct {
	client *redis.Client
	prefix string // Optional prefix for keys
	now    func() time.Time
}

// NewRedisStore creates a new RedisStore. The prefix scopes all keys, so
// several SDK instances can share one Redis database.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "tower"
	}
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

func (r *RedisStore) userKey(tenantID string) string {
	return fmt.Sprintf("%s:user_token:%s", r.prefix, tenantID)
}

func (r *RedisStore) clientKey(tenantID string) string {
	return fmt.Sprintf("%s:client_token:%s", r.prefix, tenantID)
}

func (r *RedisStore) currentTenantKey() string {
	return fmt.Sprintf("%s:current_tenant", r.prefix)
}

// GetUserToken implements CredentialStore.
func (r *RedisStore) GetUserToken(ctx context.Context, tenantID string) (*UserToken, error) {
	key := r.userKey(tenantID)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, nil
	}

	var token UserToken
	if err := json.Unmarshal(data, &token); err != nil {
		r.client.Del(ctx, key)
		return nil, nil
	}
	if token.Expired(r.now()) {
		r.client.Del(ctx, key)
		return nil, nil
	}
	return &token, nil
}

// SetUserToken implements CredentialStore.
func (r *RedisStore) SetUserToken(ctx context.Context, tenantID string, token *UserToken) error {
	data, err := json.Marshal(token)
	if err != nil {
		return nil
	}
	r.client.Set(ctx, r.userKey(tenantID), data, 0)
	return nil
}

// RemoveUserToken implements CredentialStore.
func (r *RedisStore) RemoveUserToken(ctx context.Context, tenantID string) error {
	r.client.Del(ctx, r.userKey(tenantID))
	return nil
}

// GetClientToken implements CredentialStore.
func (r *RedisStore) GetClientToken(ctx context.Context, tenantID string) (*ClientToken, error) {
	key := r.clientKey(tenantID)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, nil
	}

	var token ClientToken
	if err := json.Unmarshal(data, &token); err != nil {
		r.client.Del(ctx, key)
		return nil, nil
	}
	if token.Expired(r.now()) {
		r.client.Del(ctx, key)
		return nil, nil
	}
	return &token, nil
}

// SetClientToken implements CredentialStore.
func (r *RedisStore) SetClientToken(ctx context.Context, tenantID string, token *ClientToken) error {
	data, err := json.Marshal(token)
	if err != nil {
		return nil
	}
	r.client.Set(ctx, r.clientKey(tenantID), data, 0)
	return nil
}

// RemoveClientToken implements CredentialStore.
func (r *RedisStore) RemoveClientToken(ctx context.Context, tenantID string) error {
	r.client.Del(ctx, r.clientKey(tenantID))
	return nil
}

// CurrentTenantID implements CredentialStore.
func (r *RedisStore) CurrentTenantID(ctx context.Context) (string, error) {
	tenant, err := r.client.Get(ctx, r.currentTenantKey()).Result()
	if err != nil {
		return "", nil
	}
	return tenant, nil
}

// SetCurrentTenantID implements CredentialStore.
func (r *RedisStore) SetCurrentTenantID(ctx context.Context, tenantID string) error {
	r.client.Set(ctx, r.currentTenantKey(), tenantID, 0)
	return nil
}

// RemoveCurrentTenantID implements CredentialStore.
func (r *RedisStore) RemoveCurrentTenantID(ctx context.Context) error {
	r.client.Del(ctx, r.currentTenantKey())
	return nil
}

// Clear implements CredentialStore.
func (r *RedisStore) Clear(ctx context.Context) error {
	pattern := fmt.Sprintf("%s:*", r.prefix)
	var cursor uint64

	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil
		}
		if len(keys) > 0 {
			r.client.Del(ctx, keys...)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return nil
}

// ListTenants implements CredentialStore.
func (r *RedisStore) ListTenants(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})

	for _, pattern := range []string{r.userKey("*"), r.clientKey("*")} {
		prefixLen := len(pattern) - 1 // strip the trailing wildcard
		var cursor uint64
		for {
			keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
			if err != nil {
				break
			}
			for _, key := range keys {
				if len(key) > prefixLen {
					seen[key[prefixLen:]] = struct{}{}
				}
			}
			cursor = next
			if cursor == 0 {
				break
			}
		}
	}

	tenants := make([]string, 0, len(seen))
	for tenant := range seen {
		tenants = append(tenants, tenant)
	}
	return tenants, nil
}

var _ CredentialStore = (*RedisStore)(nil)
