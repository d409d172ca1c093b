package store

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	userTokenPrefix   = "user_token_"
	clientTokenPrefix = "client_token_"
	currentTenantFile = "current_tenant"
	fileExt           = ".json"
)

// FileStore implements CredentialStore on top of a directory of JSON files,
// one file per (kind, tenant) record. It is the persistent backend for CLI
// and desktop use, the moral equivalent of an origin-scoped key-value store.
//
// All operations degrade silently: if the directory is missing, unwritable
// or an entry is unreadable, reads report absence and writes become no-ops.
// Expired records are evicted lazily on read; there is no background sweep.
// Corrupted entries are deleted on first read.
type FileStore struct {
	dir string
	now func() time.Time
}

// NewFileStore creates a file-backed credential store rooted at dir. The
// directory is created on first use if possible.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, now: time.Now}
}

func (s *FileStore) path(prefix, tenantID string) string {
	return filepath.Join(s.dir, prefix+url.PathEscape(tenantID)+fileExt)
}

func (s *FileStore) write(name string, data []byte) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return
	}
	_ = os.WriteFile(name, data, 0o600)
}

// GetUserToken implements CredentialStore.
func (s *FileStore) GetUserToken(_ context.Context, tenantID string) (*UserToken, error) {
	name := s.path(userTokenPrefix, tenantID)
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, nil
	}

	var token UserToken
	if err := json.Unmarshal(data, &token); err != nil {
		_ = os.Remove(name)
		return nil, nil
	}
	if token.Expired(s.now()) {
		_ = os.Remove(name)
		return nil, nil
	}
	return &token, nil
}

// SetUserToken implements CredentialStore.
func (s *FileStore) SetUserToken(_ context.Context, tenantID string, token *UserToken) error {
	data, err := json.Marshal(token)
	if err != nil {
		return nil
	}
	s.write(s.path(userTokenPrefix, tenantID), data)
	return nil
}

// RemoveUserToken implements CredentialStore.
func (s *FileStore) RemoveUserToken(_ context.Context, tenantID string) error {
	_ = os.Remove(s.path(userTokenPrefix, tenantID))
	return nil
}

// GetClientToken implements CredentialStore.
func (s *FileStore) GetClientToken(_ context.Context, tenantID string) (*ClientToken, error) {
	name := s.path(clientTokenPrefix, tenantID)
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, nil
	}

	var token ClientToken
	if err := json.Unmarshal(data, &token); err != nil {
		_ = os.Remove(name)
		return nil, nil
	}
	if token.Expired(s.now()) {
		_ = os.Remove(name)
		return nil, nil
	}
	return &token, nil
}

// SetClientToken implements CredentialStore.
func (s *FileStore) SetClientToken(_ context.Context, tenantID string, token *ClientToken) error {
	data, err := json.Marshal(token)
	if err != nil {
		return nil
	}
	s.write(s.path(clientTokenPrefix, tenantID), data)
	return nil
}

// RemoveClientToken implements CredentialStore.
func (s *FileStore) RemoveClientToken(_ context.Context, tenantID string) error {
	_ = os.Remove(s.path(clientTokenPrefix, tenantID))
	return nil
}

// CurrentTenantID implements CredentialStore.
func (s *FileStore) CurrentTenantID(_ context.Context) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, currentTenantFile))
	if err != nil {
		return "", nil
	}
	return strings.TrimSpace(string(data)), nil
}

// SetCurrentTenantID implements CredentialStore.
func (s *FileStore) SetCurrentTenantID(_ context.Context, tenantID string) error {
	s.write(filepath.Join(s.dir, currentTenantFile), []byte(tenantID))
	return nil
}

// RemoveCurrentTenantID implements CredentialStore.
func (s *FileStore) RemoveCurrentTenantID(_ context.Context) error {
	_ = os.Remove(filepath.Join(s.dir, currentTenantFile))
	return nil
}

// Clear implements CredentialStore.
func (s *FileStore) Clear(_ context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, userTokenPrefix) ||
			strings.HasPrefix(name, clientTokenPrefix) ||
			name == currentTenantFile {
			_ = os.Remove(filepath.Join(s.dir, name))
		}
	}
	return nil
}

// ListTenants implements CredentialStore.
func (s *FileStore) ListTenants(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, nil
	}

	seen := make(map[string]struct{})
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), fileExt)
		var escaped string
		switch {
		case strings.HasPrefix(name, userTokenPrefix):
			escaped = strings.TrimPrefix(name, userTokenPrefix)
		case strings.HasPrefix(name, clientTokenPrefix):
			escaped = strings.TrimPrefix(name, clientTokenPrefix)
		default:
			continue
		}
		tenant, err := url.PathUnescape(escaped)
		if err != nil {
			continue
		}
		seen[tenant] = struct{}{}
	}

	tenants := make([]string, 0, len(seen))
	for tenant := range seen {
		tenants = append(tenants, tenant)
	}
	return tenants, nil
}

var _ CredentialStore = (*FileStore)(nil)
