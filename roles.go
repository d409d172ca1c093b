package tower

import (
	"context"
	"net/http"
)

// RoleService manages the roles of the current tenant.
type RoleService struct {
	d *dispatcher
}

// List returns a page of roles.
func (s *RoleService) List(ctx context.Context, page *Page) (*PaginatedResponse, error) {
	var resp PaginatedResponse
	err := s.d.do(ctx, "roles", requestOptions{page: page, out: &resp})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Create registers a new role.
func (s *RoleService) Create(ctx context.Context, req CreateRoleRequest) (*Role, error) {
	var role Role
	err := s.d.do(ctx, "roles", requestOptions{
		method: http.MethodPost,
		body:   req,
		out:    &role,
	})
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// Update replaces a role definition.
func (s *RoleService) Update(ctx context.Context, roleID string, req CreateRoleRequest) (*Role, error) {
	var role Role
	err := s.d.do(ctx, "roles/"+roleID, requestOptions{
		method: http.MethodPut,
		body:   req,
		out:    &role,
	})
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// Delete removes a role.
func (s *RoleService) Delete(ctx context.Context, roleID string) error {
	return s.d.do(ctx, "roles/"+roleID, requestOptions{method: http.MethodDelete})
}
