package tower

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.pilab.hu/tower/config"
	"go.pilab.hu/tower/store"
	"go.pilab.hu/tower/tokens"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(config.Config{
		BaseURL:          server.URL,
		TenantID:         "acme",
		ClientID:         "client-1",
		RefreshThreshold: 300,
	}, Options{Store: store.NewMemoryStore()})
	require.NoError(t, err)
	return client
}

func seedUserToken(t *testing.T, client *Client, access, refresh string) {
	t.Helper()
	require.NoError(t, client.Tokens.StoreUserToken(context.Background(), "acme", &tokens.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    7200,
	}))
}

func TestTenantScopedPathAndHeaders(t *testing.T) {
	var captured *http.Request
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(r.Context())
		_ = json.NewEncoder(w).Encode(PaginatedResponse{})
	})

	client := newTestClient(t, handler)
	seedUserToken(t, client, "access-1", "refresh-1")

	_, err := client.Permissions.List(context.Background(), nil)
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "/api/v1/tenants/acme/permissions", captured.URL.Path)
	assert.Empty(t, captured.URL.RawQuery)
	assert.Equal(t, "acme", captured.Header.Get("X-Tenant-ID"))
	assert.Equal(t, "client-1", captured.Header.Get("X-Client-ID"))
	assert.Equal(t, "Bearer access-1", captured.Header.Get("Authorization"))
	assert.Equal(t, "application/json", captured.Header.Get("Content-Type"))

	_, err = uuid.Parse(captured.Header.Get("X-Request-ID"))
	assert.NoError(t, err, "request id must be a uuid")
}

func TestTenantIndependentPathUnchanged(t *testing.T) {
	var gotPath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(PaginatedResponse{})
	})

	client := newTestClient(t, handler)
	seedUserToken(t, client, "access-1", "refresh-1")

	_, err := client.Tenants.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/tenants", gotPath)
}

func TestExplicitTenantScopesThePath(t *testing.T) {
	var gotPath, gotTenant string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTenant = r.Header.Get("X-Tenant-ID")
		_ = json.NewEncoder(w).Encode(ProvidersResponse{})
	})

	client := newTestClient(t, handler)
	seedUserToken(t, client, "access-1", "refresh-1")

	_, err := client.IDProviders.Active(context.Background(), "globex")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/tenants/globex/active-id-providers", gotPath)
	assert.Equal(t, "globex", gotTenant)
}

func TestPaginationQueryParameters(t *testing.T) {
	var gotQuery map[string][]string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(PaginatedResponse{})
	})

	client := newTestClient(t, handler)
	seedUserToken(t, client, "access-1", "refresh-1")

	_, err := client.Permissions.List(context.Background(), &Page{Limit: 25, Offset: 50, Query: "admin"})
	require.NoError(t, err)
	assert.Equal(t, []string{"25"}, gotQuery["limit"])
	assert.Equal(t, []string{"50"}, gotQuery["offset"])
	assert.Equal(t, []string{"admin"}, gotQuery["query"])
}

func TestUnauthorizedRefreshAndRetry(t *testing.T) {
	var permCalls, refreshCalls int64
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&refreshCalls, 1)
		_ = json.NewEncoder(w).Encode(tokens.TokenResponse{
			AccessToken:  "access-new",
			RefreshToken: "refresh-new",
			TokenType:    "Bearer",
			ExpiresIn:    3600,
		})
	})
	mux.HandleFunc("/api/v1/tenants/acme/permissions", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&permCalls, 1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "Bearer access-new", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(PaginatedResponse{Total: 1})
	})

	client := newTestClient(t, mux)
	seedUserToken(t, client, "access-revoked", "refresh-1")

	resp, err := client.Permissions.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	assert.EqualValues(t, 2, atomic.LoadInt64(&permCalls))
	assert.EqualValues(t, 1, atomic.LoadInt64(&refreshCalls))
}

func TestUnauthorizedRetryFailsWithSecondResponse(t *testing.T) {
	var permCalls int64
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(tokens.TokenResponse{
			AccessToken: "access-new", RefreshToken: "refresh-new", ExpiresIn: 3600,
		})
	})
	mux.HandleFunc("/api/v1/tenants/acme/permissions", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&permCalls, 1)
		http.Error(w, "still no", http.StatusUnauthorized)
	})

	client := newTestClient(t, mux)
	seedUserToken(t, client, "access-revoked", "refresh-1")

	_, err := client.Permissions.List(context.Background(), nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.True(t, apiErr.IsUnauthorized())
	assert.EqualValues(t, 2, atomic.LoadInt64(&permCalls), "exactly one retry")
}

func TestUnauthorizedWithoutRefreshMaterialNoRetry(t *testing.T) {
	var permCalls int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&permCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	client := newTestClient(t, handler)
	seedUserToken(t, client, "access-revoked", "")

	_, err := client.Permissions.List(context.Background(), nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.EqualValues(t, 1, atomic.LoadInt64(&permCalls))
}

func TestErrorResponseCarriesBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"permission not found"}`, http.StatusNotFound)
	})

	client := newTestClient(t, handler)
	seedUserToken(t, client, "access-1", "refresh-1")

	_, err := client.Permissions.Get(context.Background(), "p-missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "permission not found")
	assert.False(t, apiErr.IsUnauthorized())
}

func TestResponseDecoding(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Permission{ID: "p1", Name: "users:read"})
	})

	client := newTestClient(t, handler)
	seedUserToken(t, client, "access-1", "refresh-1")

	permission, err := client.Permissions.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "users:read", permission.Name)
}

func TestExchangeStoresUserToken(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/exchange", r.URL.Path)
		_ = json.NewEncoder(w).Encode(tokens.TokenResponse{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			TokenType:    "Bearer",
			ExpiresIn:    3600,
			User:         &store.Identity{ID: "u1", Email: "jane@example.com"},
		})
	})

	client := newTestClient(t, handler)
	ctx := context.Background()

	resp, err := client.Auth.Exchange(ctx, ExchangeRequest{State: "state-1"})
	require.NoError(t, err)
	assert.Equal(t, "access-1", resp.AccessToken)

	assert.True(t, client.Tokens.IsAuthenticated(ctx, ""))
	user := client.Tokens.CurrentUser(ctx, "")
	require.NotNil(t, user)
	assert.Equal(t, "jane@example.com", user.Email)
}

func TestLogoutClearsTokens(t *testing.T) {
	var sentBody LogoutRequest
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/logout", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&sentBody)
		_ = json.NewEncoder(w).Encode(LogoutResponse{Message: "bye"})
	})

	client := newTestClient(t, handler)
	ctx := context.Background()
	seedUserToken(t, client, "access-1", "refresh-1")

	_, err := client.Auth.Logout(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", sentBody.RefreshToken, "stored refresh token is sent for blacklisting")
	assert.False(t, client.Tokens.IsAuthenticated(ctx, ""))
}
