package tower

import (
	"context"
	"net/http"
)

// PermissionService manages the permissions of the current tenant.
type PermissionService struct {
	d *dispatcher
}

// List returns a page of permissions.
func (s *PermissionService) List(ctx context.Context, page *Page) (*PaginatedResponse, error) {
	var resp PaginatedResponse
	err := s.d.do(ctx, "permissions", requestOptions{page: page, out: &resp})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get returns a single permission by id.
func (s *PermissionService) Get(ctx context.Context, permissionID string) (*Permission, error) {
	var permission Permission
	err := s.d.do(ctx, "permissions/"+permissionID, requestOptions{out: &permission})
	if err != nil {
		return nil, err
	}
	return &permission, nil
}

// Create registers a new permission.
func (s *PermissionService) Create(ctx context.Context, req CreatePermissionRequest) (*Permission, error) {
	var permission Permission
	err := s.d.do(ctx, "permissions", requestOptions{
		method: http.MethodPost,
		body:   req,
		out:    &permission,
	})
	if err != nil {
		return nil, err
	}
	return &permission, nil
}

// Update replaces a permission's name and description.
func (s *PermissionService) Update(ctx context.Context, permissionID string, req CreatePermissionRequest) (*Permission, error) {
	var permission Permission
	err := s.d.do(ctx, "permissions/"+permissionID, requestOptions{
		method: http.MethodPut,
		body:   req,
		out:    &permission,
	})
	if err != nil {
		return nil, err
	}
	return &permission, nil
}

// Delete removes a permission.
func (s *PermissionService) Delete(ctx context.Context, permissionID string) error {
	return s.d.do(ctx, "permissions/"+permissionID, requestOptions{method: http.MethodDelete})
}
