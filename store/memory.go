package store

import (
	"context"
	"sync"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryStore implements CredentialStore in process memory. Suitable for
// server-side use where credentials live for the process lifetime.
//
// Records are kept until removed or overwritten; expiry decisions belong to
// the token manager, which needs the refresh material of an already expired
// user token to recover it.
type MemoryStore struct {
	user   *ttlcache.Cache[string, *UserToken]
	client *ttlcache.Cache[string, *ClientToken]

	mu            sync.RWMutex
	currentTenant string
}

// NewMemoryStore creates a new in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		user: ttlcache.New(
			ttlcache.WithTTL[string, *UserToken](ttlcache.NoTTL),
			ttlcache.WithDisableTouchOnHit[string, *UserToken](),
		),
		client: ttlcache.New(
			ttlcache.WithTTL[string, *ClientToken](ttlcache.NoTTL),
			ttlcache.WithDisableTouchOnHit[string, *ClientToken](),
		),
	}
}

// GetUserToken implements CredentialStore.
func (s *MemoryStore) GetUserToken(_ context.Context, tenantID string) (*UserToken, error) {
	item := s.user.Get(tenantID)
	if item == nil {
		return nil, nil
	}
	return item.Value().Clone(), nil
}

// SetUserToken implements CredentialStore.
func (s *MemoryStore) SetUserToken(_ context.Context, tenantID string, token *UserToken) error {
	s.user.Set(tenantID, token.Clone(), ttlcache.NoTTL)
	return nil
}

// RemoveUserToken implements CredentialStore.
func (s *MemoryStore) RemoveUserToken(_ context.Context, tenantID string) error {
	s.user.Delete(tenantID)
	return nil
}

// GetClientToken implements CredentialStore.
func (s *MemoryStore) GetClientToken(_ context.Context, tenantID string) (*ClientToken, error) {
	item := s.client.Get(tenantID)
	if item == nil {
		return nil, nil
	}
	return item.Value().Clone(), nil
}

// SetClientToken implements CredentialStore.
func (s *MemoryStore) SetClientToken(_ context.Context, tenantID string, token *ClientToken) error {
	s.client.Set(tenantID, token.Clone(), ttlcache.NoTTL)
	return nil
}

// RemoveClientToken implements CredentialStore.
func (s *MemoryStore) RemoveClientToken(_ context.Context, tenantID string) error {
	s.client.Delete(tenantID)
	return nil
}

// CurrentTenantID implements CredentialStore.
func (s *MemoryStore) CurrentTenantID(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentTenant, nil
}

// SetCurrentTenantID implements CredentialStore.
func (s *MemoryStore) SetCurrentTenantID(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentTenant = tenantID
	return nil
}

// RemoveCurrentTenantID implements CredentialStore.
func (s *MemoryStore) RemoveCurrentTenantID(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentTenant = ""
	return nil
}

// Clear implements CredentialStore.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.user.DeleteAll()
	s.client.DeleteAll()
	return nil
}

// ListTenants implements CredentialStore.
func (s *MemoryStore) ListTenants(_ context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	for _, key := range s.user.Keys() {
		seen[key] = struct{}{}
	}
	for _, key := range s.client.Keys() {
		seen[key] = struct{}{}
	}

	tenants := make([]string, 0, len(seen))
	for tenant := range seen {
		tenants = append(tenants, tenant)
	}
	return tenants, nil
}

var _ CredentialStore = (*MemoryStore)(nil)
