// Package tower is the Go client SDK for the Auth Tower multi-tenant
// identity and authorization service. A single Client owns the token
// lifecycle and a set of resource services sharing one request dispatcher.
package tower

import (
	"net/http"

	"go.pilab.hu/tower/config"
	"go.pilab.hu/tower/log"
	"go.pilab.hu/tower/store"
	"go.pilab.hu/tower/tokens"
)

// Options carries the optional collaborators of a Client. Zero values
// select defaults: in-memory credential storage, http.DefaultClient and a
// no-op logger.
type Options struct {
	Store      store.CredentialStore
	HTTPClient *http.Client
	Logger     log.Logger
}

// Client is the SDK entry point.
type Client struct {
	Tokens *tokens.Manager

	Auth         *AuthService
	Tenants      *TenantService
	Permissions  *PermissionService
	Roles        *RoleService
	Accounts     *AccountService
	Access       *AccessService
	AuthMethods  *AuthMethodService
	IDProviders  *IDProviderService
	RedirectURIs *RedirectURIService

	cfg      config.Config
	dispatch *dispatcher
}

// New creates a Client for the tenant named in cfg. It fails synchronously,
// before any network activity, when required identifiers are missing.
func New(cfg config.Config, opts Options) (*Client, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	manager := tokens.NewManager(cfg, tokens.Options{
		Store:      opts.Store,
		HTTPClient: httpClient,
		Logger:     logger,
	})

	d := &dispatcher{
		client:     httpClient,
		baseURL:    cfg.BaseURL,
		pathPrefix: cfg.PathPrefix,
		clientID:   cfg.ClientID,
		tokens:     manager,
		logger:     logger,
	}

	c := &Client{
		Tokens:   manager,
		cfg:      cfg,
		dispatch: d,
	}
	c.Auth = &AuthService{d: d, tokens: manager, cfg: cfg}
	c.Tenants = &TenantService{d: d}
	c.Permissions = &PermissionService{d: d}
	c.Roles = &RoleService{d: d}
	c.Accounts = &AccountService{d: d}
	c.Access = &AccessService{d: d}
	c.AuthMethods = &AuthMethodService{d: d}
	c.IDProviders = &IDProviderService{d: d}
	c.RedirectURIs = &RedirectURIService{d: d}

	return c, nil
}

// Config returns the configuration the client was constructed with.
func (c *Client) Config() config.Config {
	return c.cfg
}
