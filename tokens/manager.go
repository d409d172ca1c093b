// Package tokens owns the tenant-aware access-token lifecycle: storage
// delegation, expiry policy, proactive refresh with de-duplication, and
// tenant switching.
package tokens

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"go.pilab.hu/tower/config"
	"go.pilab.hu/tower/log"
	"go.pilab.hu/tower/store"
)

// TokenResponse is the body returned by the exchange, refresh and
// client-credentials endpoints.
type TokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int64           `json:"expires_in"`
	User         *store.Identity `json:"user,omitempty"`
}

// Options carries the collaborators of a Manager. Zero values select
// defaults: an in-memory store, http.DefaultClient, a no-op logger and the
// wall clock.
type Options struct {
	Store      store.CredentialStore
	HTTPClient *http.Client
	Logger     log.Logger

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Manager coordinates token storage and refresh across tenant contexts.
// It is safe for concurrent use; refreshes for the same (kind, tenant) pair
// are collapsed into a single network call.
type Manager struct {
	store  store.CredentialStore
	client *http.Client
	logger log.Logger
	now    func() time.Time

	baseURL          string
	pathPrefix       string
	clientID         string
	clientSecret     string
	initialTenantID  string
	autoRefresh      bool
	refreshThreshold time.Duration

	mu              sync.RWMutex
	currentTenantID string

	refreshGroup singleflight.Group
}

// NewManager creates a Manager for the tenant named in cfg. The current
// tenant pointer is seeded from the store if the backend persisted one,
// otherwise from cfg.TenantID.
func NewManager(cfg config.Config, opts Options) *Manager {
	cfg.Normalize()

	m := &Manager{
		store:            opts.Store,
		client:           opts.HTTPClient,
		logger:           opts.Logger,
		now:              opts.Now,
		baseURL:          cfg.BaseURL,
		pathPrefix:       cfg.PathPrefix,
		clientID:         cfg.ClientID,
		clientSecret:     cfg.ClientSecret,
		initialTenantID:  cfg.TenantID,
		autoRefresh:      !cfg.DisableAutoRefresh,
		refreshThreshold: time.Duration(cfg.RefreshThreshold) * time.Second,
		currentTenantID:  cfg.TenantID,
	}
	if m.store == nil {
		m.store = store.NewMemoryStore()
	}
	if m.client == nil {
		m.client = http.DefaultClient
	}
	if m.logger == nil {
		m.logger = log.NewNop()
	}
	if m.now == nil {
		m.now = time.Now
	}

	if persisted, err := m.store.CurrentTenantID(context.Background()); err == nil && persisted != "" {
		m.currentTenantID = persisted
	}

	return m
}

// InitialTenantID returns the tenant the manager was constructed for.
func (m *Manager) InitialTenantID() string {
	return m.initialTenantID
}

// CurrentTenantID returns the current tenant pointer.
func (m *Manager) CurrentTenantID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentTenantID
}

// SwitchTenant switches the current tenant context. It does not verify the
// tenant exists or that credentials for it are present; a subsequent
// ValidToken call discovers that. The pointer is written through to the
// store best-effort for continuity across restarts.
func (m *Manager) SwitchTenant(ctx context.Context, tenantID string) {
	m.mu.Lock()
	m.currentTenantID = tenantID
	m.mu.Unlock()

	if err := m.store.SetCurrentTenantID(ctx, tenantID); err != nil {
		m.logger.Warn(ctx, "failed to persist current tenant", map[string]interface{}{"tenant_id": tenantID})
	}
}

// resolveTenant pins token decisions to the initial tenant unless the caller
// overrides explicitly.
func (m *Manager) resolveTenant(tenantID string) string {
	if tenantID != "" {
		return tenantID
	}
	return m.initialTenantID
}

// StoreUserToken computes the absolute expiry instant and writes the user
// token through to the store, overwriting any previous record.
func (m *Manager) StoreUserToken(ctx context.Context, tenantID string, resp *TokenResponse) error {
	token := &store.UserToken{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		ExpiresIn:    resp.ExpiresIn,
		ExpiresAt:    m.now().Add(time.Duration(resp.ExpiresIn) * time.Second),
		User:         resp.User,
	}
	return m.store.SetUserToken(ctx, tenantID, token)
}

// StoreClientToken computes the absolute expiry instant and writes the
// client-credentials token through to the store.
func (m *Manager) StoreClientToken(ctx context.Context, tenantID string, resp *TokenResponse) error {
	tokenType := resp.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	token := &store.ClientToken{
		AccessToken: resp.AccessToken,
		TokenType:   tokenType,
		ExpiresIn:   resp.ExpiresIn,
		ExpiresAt:   m.now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}
	return m.store.SetClientToken(ctx, tenantID, token)
}

// ValidToken returns a non-expired access token for the tenant, refreshing
// proactively when the stored token is inside the refresh threshold. User
// tokens take priority over client tokens whenever both exist. An empty
// tenantID resolves to the initial tenant.
//
// Refresh failures are never surfaced; absence of a token is the only
// failure signal.
func (m *Manager) ValidToken(ctx context.Context, tenantID string) (string, bool) {
	target := m.resolveTenant(tenantID)

	userToken, _ := m.store.GetUserToken(ctx, target)
	if userToken != nil {
		if m.expiringSoon(userToken.ExpiresAt) && m.autoRefresh && userToken.RefreshToken != "" {
			// Re-read regardless of outcome: on success the record rotated,
			// on rejection it was deleted and absence must propagate.
			m.refreshUserToken(ctx, target, userToken.RefreshToken)
			userToken, _ = m.store.GetUserToken(ctx, target)
		}
		if userToken != nil && !userToken.Expired(m.now()) {
			return userToken.AccessToken, true
		}
	}

	clientToken, _ := m.store.GetClientToken(ctx, target)
	if clientToken != nil {
		if m.expiringSoon(clientToken.ExpiresAt) && m.autoRefresh {
			m.refreshClientToken(ctx, target)
			clientToken, _ = m.store.GetClientToken(ctx, target)
		}
		if clientToken != nil && !clientToken.Expired(m.now()) {
			return clientToken.AccessToken, true
		}
	}

	return "", false
}

// IsAuthenticated reports whether ValidToken yields a token for the tenant.
func (m *Manager) IsAuthenticated(ctx context.Context, tenantID string) bool {
	_, ok := m.ValidToken(ctx, tenantID)
	return ok
}

// UserToken returns the stored user token record for the tenant, or nil.
// It never triggers a refresh.
func (m *Manager) UserToken(ctx context.Context, tenantID string) *store.UserToken {
	token, _ := m.store.GetUserToken(ctx, m.resolveTenant(tenantID))
	return token
}

// CurrentUser returns the identity embedded in the stored user token, or
// nil. It never triggers a refresh.
func (m *Manager) CurrentUser(ctx context.Context, tenantID string) *store.Identity {
	token := m.UserToken(ctx, tenantID)
	if token == nil {
		return nil
	}
	return token.User
}

// ClearTenantTokens removes both the user and the client record for the
// tenant (logout).
func (m *Manager) ClearTenantTokens(ctx context.Context, tenantID string) {
	target := m.resolveTenant(tenantID)
	_ = m.store.RemoveUserToken(ctx, target)
	_ = m.store.RemoveClientToken(ctx, target)
}

// ClearAllTokens removes every record in the store.
func (m *Manager) ClearAllTokens(ctx context.Context) {
	_ = m.store.Clear(ctx)
}

// Store exposes the underlying credential store.
func (m *Manager) Store() store.CredentialStore {
	return m.store
}

// ForceRefresh attempts one refresh for the tenant outside the expiry
// policy: user refresh when refresh material is stored, client-credentials
// otherwise. Used by the request dispatcher after an unauthorized response.
func (m *Manager) ForceRefresh(ctx context.Context, tenantID string) bool {
	target := m.resolveTenant(tenantID)

	if userToken, _ := m.store.GetUserToken(ctx, target); userToken != nil && userToken.RefreshToken != "" {
		if m.refreshUserToken(ctx, target, userToken.RefreshToken) {
			return true
		}
	}
	return m.refreshClientToken(ctx, target)
}

func (m *Manager) expiringSoon(expiresAt time.Time) bool {
	return expiresAt.Sub(m.now()) <= m.refreshThreshold
}

// refreshUserToken redeems the refresh token, collapsing concurrent calls
// for the same tenant into one network request. A refresh token must never
// be redeemed twice concurrently; most servers reject or rotate
// destructively on the second redemption.
func (m *Manager) refreshUserToken(ctx context.Context, tenantID, refreshToken string) bool {
	// The outcome is shared by every waiter, so the network call must not
	// die with the first caller's context.
	refreshCtx := context.WithoutCancel(ctx)
	result, _, _ := m.refreshGroup.Do("user:"+tenantID, func() (interface{}, error) {
		return m.performUserRefresh(refreshCtx, tenantID, refreshToken), nil
	})
	ok, _ := result.(bool)
	return ok
}

func (m *Manager) refreshClientToken(ctx context.Context, tenantID string) bool {
	refreshCtx := context.WithoutCancel(ctx)
	result, _, _ := m.refreshGroup.Do("client:"+tenantID, func() (interface{}, error) {
		return m.performClientRefresh(refreshCtx, tenantID), nil
	})
	ok, _ := result.(bool)
	return ok
}

func (m *Manager) endpoint(path string) string {
	return strings.TrimSuffix(m.baseURL, "/") + m.pathPrefix + path
}

func (m *Manager) postJSON(ctx context.Context, url, tenantID string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID)
	req.Header.Set("X-Client-ID", m.clientID)

	return m.client.Do(req)
}

// performUserRefresh calls the refresh endpoint. Rejection is terminal: the
// stored user token is deleted and no retry is attempted.
func (m *Manager) performUserRefresh(ctx context.Context, tenantID, refreshToken string) bool {
	resp, err := m.postJSON(ctx, m.endpoint("auth/refresh"), tenantID, map[string]string{
		"refresh_token": refreshToken,
	})
	if err != nil {
		m.logger.Error(ctx, "user token refresh failed", err, map[string]interface{}{"tenant_id": tenantID})
		_ = m.store.RemoveUserToken(ctx, tenantID)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		m.logger.Warn(ctx, "user token refresh rejected", map[string]interface{}{
			"tenant_id": tenantID,
			"status":    resp.StatusCode,
		})
		_ = m.store.RemoveUserToken(ctx, tenantID)
		return false
	}

	var tokenResponse TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		m.logger.Error(ctx, "user token refresh response undecodable", err, map[string]interface{}{"tenant_id": tenantID})
		_ = m.store.RemoveUserToken(ctx, tenantID)
		return false
	}

	if err := m.StoreUserToken(ctx, tenantID, &tokenResponse); err != nil {
		return false
	}
	m.logger.Debug(ctx, "user token refreshed", map[string]interface{}{"tenant_id": tenantID})
	return true
}

// performClientRefresh redeems the configured client credentials. Without
// both id and secret it short-circuits to failure with no network call.
func (m *Manager) performClientRefresh(ctx context.Context, tenantID string) bool {
	if m.clientID == "" || m.clientSecret == "" {
		return false
	}

	resp, err := m.postJSON(ctx, m.endpoint("auth/token"), tenantID, map[string]string{
		"client_id":     m.clientID,
		"client_secret": m.clientSecret,
		"grant_type":    "client_credentials",
		"tenant_id":     tenantID,
	})
	if err != nil {
		m.logger.Error(ctx, "client token refresh failed", err, map[string]interface{}{"tenant_id": tenantID})
		_ = m.store.RemoveClientToken(ctx, tenantID)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		m.logger.Warn(ctx, "client token refresh rejected", map[string]interface{}{
			"tenant_id": tenantID,
			"status":    resp.StatusCode,
		})
		_ = m.store.RemoveClientToken(ctx, tenantID)
		return false
	}

	var tokenResponse TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		m.logger.Error(ctx, "client token refresh response undecodable", err, map[string]interface{}{"tenant_id": tenantID})
		_ = m.store.RemoveClientToken(ctx, tenantID)
		return false
	}

	if err := m.StoreClientToken(ctx, tenantID, &tokenResponse); err != nil {
		return false
	}
	m.logger.Debug(ctx, "client token refreshed", map[string]interface{}{"tenant_id": tenantID})
	return true
}
