package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir())
	token := testUserToken(time.Now().Add(time.Hour).Truncate(time.Second).UTC())

	require.NoError(t, s.SetUserToken(ctx, "t1", token))

	got, err := s.GetUserToken(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, token.AccessToken, got.AccessToken)
	assert.Equal(t, token.RefreshToken, got.RefreshToken)
	assert.Equal(t, token.TokenType, got.TokenType)
	assert.Equal(t, token.ExpiresIn, got.ExpiresIn)
	assert.True(t, token.ExpiresAt.Equal(got.ExpiresAt))
	assert.Equal(t, token.User, got.User)
}

func TestFileStoreLazyEviction(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewFileStore(dir)

	// Plant an already-expired record directly in the underlying storage.
	expired := testUserToken(time.Now().Add(-time.Minute))
	data, err := json.Marshal(expired)
	require.NoError(t, err)
	name := filepath.Join(dir, "user_token_t1.json")
	require.NoError(t, os.WriteFile(name, data, 0o600))

	got, err := s.GetUserToken(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, statErr := os.Stat(name)
	assert.True(t, os.IsNotExist(statErr), "expired entry should be removed")
}

func TestFileStoreCorruptedEntryDeleted(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewFileStore(dir)

	name := filepath.Join(dir, "client_token_t1.json")
	require.NoError(t, os.WriteFile(name, []byte("{not json"), 0o600))

	got, err := s.GetClientToken(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, statErr := os.Stat(name)
	assert.True(t, os.IsNotExist(statErr), "corrupted entry should be removed")
}

func TestFileStoreUnavailableDirectory(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "does", "not", "exist"))

	got, err := s.GetUserToken(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, s.RemoveUserToken(ctx, "t1"))
	assert.NoError(t, s.Clear(ctx))

	tenants, err := s.ListTenants(ctx)
	require.NoError(t, err)
	assert.Empty(t, tenants)
}

func TestFileStoreTenantEscaping(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir())
	tenant := "acme/eu-west"

	require.NoError(t, s.SetClientToken(ctx, tenant, testClientToken(time.Now().Add(time.Hour))))

	got, err := s.GetClientToken(ctx, tenant)
	require.NoError(t, err)
	require.NotNil(t, got)

	tenants, err := s.ListTenants(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{tenant}, tenants)
}

func TestFileStoreCurrentTenantPersistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s := NewFileStore(dir)
	require.NoError(t, s.SetCurrentTenantID(ctx, "t9"))

	// A fresh store over the same directory still sees the pointer.
	reopened := NewFileStore(dir)
	tenant, err := reopened.CurrentTenantID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t9", tenant)
}

func TestFileStoreClear(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir())

	require.NoError(t, s.SetUserToken(ctx, "t1", testUserToken(time.Now().Add(time.Hour))))
	require.NoError(t, s.SetClientToken(ctx, "t2", testClientToken(time.Now().Add(time.Hour))))
	require.NoError(t, s.SetCurrentTenantID(ctx, "t1"))

	require.NoError(t, s.Clear(ctx))

	tenants, err := s.ListTenants(ctx)
	require.NoError(t, err)
	assert.Empty(t, tenants)

	tenant, err := s.CurrentTenantID(ctx)
	require.NoError(t, err)
	assert.Empty(t, tenant)
}
