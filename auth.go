package tower

import (
	"context"
	"net/http"

	"go.pilab.hu/tower/config"
	"go.pilab.hu/tower/tokens"
)

// AuthService exposes the OAuth-style authentication flows. All auth
// endpoints are tenant-independent: they cannot be nested under a tenant
// that may not yet be resolvable.
type AuthService struct {
	d      *dispatcher
	tokens *tokens.Manager
	cfg    config.Config
}

// InitiateOAuth starts a hosted OAuth flow and returns the provider URL to
// redirect the user to. The tenant in the request defaults to the SDK's
// configured tenant.
func (s *AuthService) InitiateOAuth(ctx context.Context, req InitiateOAuthRequest) (*InitiateOAuthResponse, error) {
	if req.TenantID == "" {
		req.TenantID = s.tokens.InitialTenantID()
	}

	var resp InitiateOAuthResponse
	err := s.d.do(ctx, "auth/oauth/initiate", requestOptions{
		method:            http.MethodPost,
		body:              req,
		tenantIndependent: true,
		out:               &resp,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Exchange redeems the OAuth callback state for tokens. The resulting user
// token is stored for the configured tenant.
func (s *AuthService) Exchange(ctx context.Context, req ExchangeRequest) (*tokens.TokenResponse, error) {
	var resp tokens.TokenResponse
	err := s.d.do(ctx, "auth/exchange", requestOptions{
		method:            http.MethodPost,
		body:              req,
		tenantIndependent: true,
		out:               &resp,
	})
	if err != nil {
		return nil, err
	}

	if err := s.tokens.StoreUserToken(ctx, s.tokens.InitialTenantID(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh redeems a refresh token for a new token pair and stores it.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*tokens.TokenResponse, error) {
	var resp tokens.TokenResponse
	err := s.d.do(ctx, "auth/refresh", requestOptions{
		method:            http.MethodPost,
		body:              req,
		tenantIndependent: true,
		out:               &resp,
	})
	if err != nil {
		return nil, err
	}

	if err := s.tokens.StoreUserToken(ctx, s.tokens.InitialTenantID(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout invalidates the session server-side and clears the stored tokens
// for the configured tenant. When req is nil the stored refresh token is
// sent for blacklisting, if one exists.
func (s *AuthService) Logout(ctx context.Context, req *LogoutRequest) (*LogoutResponse, error) {
	if req == nil || req.RefreshToken == "" {
		if userToken := s.tokens.UserToken(ctx, ""); userToken != nil && userToken.RefreshToken != "" {
			req = &LogoutRequest{RefreshToken: userToken.RefreshToken}
		}
	}
	if req == nil {
		req = &LogoutRequest{}
	}

	var resp LogoutResponse
	err := s.d.do(ctx, "auth/logout", requestOptions{
		method:            http.MethodPost,
		body:              req,
		tenantIndependent: true,
		out:               &resp,
	})
	if err != nil {
		return nil, err
	}

	s.tokens.ClearTenantTokens(ctx, "")
	return &resp, nil
}

// ClientCredentialsToken obtains a service token with the configured client
// id and secret and stores it for the configured tenant.
func (s *AuthService) ClientCredentialsToken(ctx context.Context) (*tokens.TokenResponse, error) {
	var resp tokens.TokenResponse
	err := s.d.do(ctx, "auth/token", requestOptions{
		method:            http.MethodPost,
		tenantIndependent: true,
		body: map[string]string{
			"client_id":     s.cfg.ClientID,
			"client_secret": s.cfg.ClientSecret,
			"grant_type":    "client_credentials",
			"tenant_id":     s.tokens.InitialTenantID(),
		},
		out: &resp,
	})
	if err != nil {
		return nil, err
	}

	if err := s.tokens.StoreClientToken(ctx, s.tokens.InitialTenantID(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
