package tower

import (
	"context"
	"net/http"
)

// TenantService manages tenants. Tenant operations are tenant-independent:
// listing and creating tenants cannot be nested under one.
type TenantService struct {
	d *dispatcher
}

// List returns a page of tenants.
func (s *TenantService) List(ctx context.Context, page *Page) (*PaginatedResponse, error) {
	var resp PaginatedResponse
	err := s.d.do(ctx, "tenants", requestOptions{
		page:              page,
		tenantIndependent: true,
		out:               &resp,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get returns a single tenant by id.
func (s *TenantService) Get(ctx context.Context, tenantID string) (*Tenant, error) {
	var tenant Tenant
	err := s.d.do(ctx, "tenants/"+tenantID, requestOptions{
		tenantIndependent: true,
		out:               &tenant,
	})
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// Create registers a new tenant.
func (s *TenantService) Create(ctx context.Context, req CreateTenantRequest) (*Tenant, error) {
	var tenant Tenant
	err := s.d.do(ctx, "tenants", requestOptions{
		method:            http.MethodPost,
		body:              req,
		tenantIndependent: true,
		out:               &tenant,
	})
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}
