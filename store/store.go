package store

import (
	"context"
	"time"
)

// Identity is the account embedded in a user token at exchange time.
type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Provider  string `json:"provider,omitempty"`
	RoleID    string `json:"role_id,omitempty"`
	TenantID  string `json:"tenant_id,omitempty"`
}

// UserToken is the credential obtained from the OAuth exchange or refresh
// flow. ExpiresAt is computed once at storage time and never recomputed
// except on refresh.
type UserToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *Identity `json:"user,omitempty"`
}

// Expired reports whether the token is hard-expired at the given instant.
func (t *UserToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Clone returns a deep copy of the token.
func (t *UserToken) Clone() *UserToken {
	cp := *t
	if t.User != nil {
		user := *t.User
		cp.User = &user
	}
	return &cp
}

// ClientToken is the credential obtained through the client-credentials
// grant. It carries no identity and no refresh material.
type ClientToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the token is hard-expired at the given instant.
func (t *ClientToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Clone returns a copy of the token.
func (t *ClientToken) Clone() *ClientToken {
	cp := *t
	return &cp
}

// CredentialStore is the persistence contract for per-tenant token records.
// At most one UserToken and one ClientToken exist per tenant id; Set
// overwrites. Reads return (nil, nil) for absence; backends swallow
// availability and corruption problems into absence rather than errors, so
// authentication-state queries can be polled without error handling.
type CredentialStore interface {
	GetUserToken(ctx context.Context, tenantID string) (*UserToken, error)
	SetUserToken(ctx context.Context, tenantID string, token *UserToken) error
	RemoveUserToken(ctx context.Context, tenantID string) error

	GetClientToken(ctx context.Context, tenantID string) (*ClientToken, error)
	SetClientToken(ctx context.Context, tenantID string, token *ClientToken) error
	RemoveClientToken(ctx context.Context, tenantID string) error

	// CurrentTenantID returns the persisted tenant pointer, or "" when the
	// backend has none. The authoritative value lives in the token manager;
	// storage is consulted only at construction time.
	CurrentTenantID(ctx context.Context) (string, error)
	SetCurrentTenantID(ctx context.Context, tenantID string) error
	RemoveCurrentTenantID(ctx context.Context) error

	// Clear removes all records of all kinds for all tenants.
	Clear(ctx context.Context) error

	// ListTenants returns the union of tenants present in either token map.
	ListTenants(ctx context.Context) ([]string, error)
}
