package tower

import "context"

// AuthMethodService reads the authentication methods of a tenant.
type AuthMethodService struct {
	d *dispatcher
}

// Active returns the methods enabled for the current tenant.
func (s *AuthMethodService) Active(ctx context.Context) (*AuthMethodsResponse, error) {
	var resp AuthMethodsResponse
	err := s.d.do(ctx, "auth-methods/", requestOptions{out: &resp})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Available returns the methods the service supports, independent of any
// tenant.
func (s *AuthMethodService) Available(ctx context.Context) (*AuthMethodsResponse, error) {
	var resp AuthMethodsResponse
	err := s.d.do(ctx, "auth-methods/", requestOptions{
		tenantIndependent: true,
		out:               &resp,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
