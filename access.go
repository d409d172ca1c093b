package tower

import (
	"context"
	"net/http"
)

// AccessService grants access and registers resources within the current
// tenant.
type AccessService struct {
	d *dispatcher
}

// Grant gives an account a role on an object.
func (s *AccessService) Grant(ctx context.Context, req GrantAccessRequest) error {
	return s.d.do(ctx, "access/", requestOptions{
		method: http.MethodPost,
		body:   req,
	})
}

// AddResource registers a resource for access control.
func (s *AccessService) AddResource(ctx context.Context, req AddResourceRequest) error {
	return s.d.do(ctx, "resources/", requestOptions{
		method: http.MethodPost,
		body:   req,
	})
}
