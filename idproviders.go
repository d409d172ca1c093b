package tower

import (
	"context"
	"net/http"
)

// IDProviderService manages identity providers for a tenant.
type IDProviderService struct {
	d *dispatcher
}

// Active returns the providers enabled for a tenant. An empty tenantID uses
// the current tenant.
func (s *IDProviderService) Active(ctx context.Context, tenantID string) (*ProvidersResponse, error) {
	var resp ProvidersResponse
	err := s.d.do(ctx, "active-id-providers", requestOptions{
		tenantID: tenantID,
		out:      &resp,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Available returns every provider the service supports.
func (s *IDProviderService) Available(ctx context.Context) (*ProvidersResponse, error) {
	var resp ProvidersResponse
	err := s.d.do(ctx, "available-id-providers", requestOptions{
		tenantIndependent: true,
		out:               &resp,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Update enables or disables a provider for the current tenant.
func (s *IDProviderService) Update(ctx context.Context, providerName string, active bool) error {
	return s.d.do(ctx, "id-providers/"+providerName, requestOptions{
		method: http.MethodPut,
		body:   map[string]bool{"active": active},
	})
}
