package tower

// InitiateOAuthRequest starts a hosted OAuth flow. TenantID defaults to the
// SDK's configured tenant when empty.
type InitiateOAuthRequest struct {
	TenantID    string `json:"tenant_id,omitempty"`
	RedirectURI string `json:"redirect_uri"`
	Provider    string `json:"provider"`
}

// InitiateOAuthResponse carries the provider URL to redirect the user to.
type InitiateOAuthResponse struct {
	AuthURL string `json:"auth_url"`
}

// ExchangeRequest redeems the state id received on the OAuth callback for
// tokens.
type ExchangeRequest struct {
	State string `json:"state"`
}

// RefreshRequest redeems a refresh token for a new token pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest optionally names the refresh token to blacklist.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// LogoutResponse confirms a logout.
type LogoutResponse struct {
	Message string `json:"message,omitempty"`
}

// Tenant is an isolated customer namespace within the service.
type Tenant struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	AuthProviders []string `json:"auth_providers,omitempty"`
	RedirectURIs  []string `json:"redirect_uris,omitempty"`
}

// CreateTenantRequest creates a new tenant.
type CreateTenantRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	AuthProviders []string `json:"auth_providers"`
	RedirectURIs  []string `json:"redirect_uris"`
}

// Permission is a named capability grantable through roles.
type Permission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CreatePermissionRequest creates or updates a permission.
type CreatePermissionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Role bundles permissions for assignment to accounts.
type Role struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	PermissionIDs []string `json:"permission_ids,omitempty"`
}

// CreateRoleRequest creates or updates a role.
type CreateRoleRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	PermissionIDs []string `json:"permission_ids"`
}

// Account is a principal within a tenant.
type Account struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Email       string `json:"email,omitempty"`
}

// CreateAccountRequest creates an account.
type CreateAccountRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AccessRequest names the object, account and access type of a grant.
type AccessRequest struct {
	ObjectID   string `json:"object_id"`
	AccountID  string `json:"account_id"`
	AccessType string `json:"access_type"`
}

// GrantAccessRequest grants an account a role on an object.
type GrantAccessRequest struct {
	AccessRequest AccessRequest `json:"access_request"`
	RoleID        string        `json:"role_id"`
}

// AddResourceRequest registers a resource for access control.
type AddResourceRequest struct {
	IsPublic bool `json:"is_public"`
}

// AuthMethodsResponse lists authentication methods or identity providers.
type AuthMethodsResponse struct {
	Methods []string `json:"methods"`
}

// ProvidersResponse lists identity providers.
type ProvidersResponse struct {
	Providers []string `json:"providers"`
}

// RedirectURI is a registered OAuth callback target.
type RedirectURI struct {
	ID  string `json:"id"`
	URI string `json:"uri"`
}

// AddRedirectURIRequest registers a callback target.
type AddRedirectURIRequest struct {
	URI string `json:"uri"`
}
