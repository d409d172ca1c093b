package tower

import (
	"context"
	"net/http"
)

// AccountService manages the accounts of the current tenant.
type AccountService struct {
	d *dispatcher
}

// List returns a page of accounts.
func (s *AccountService) List(ctx context.Context, page *Page) (*PaginatedResponse, error) {
	var resp PaginatedResponse
	err := s.d.do(ctx, "accounts", requestOptions{page: page, out: &resp})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Create registers a new account.
func (s *AccountService) Create(ctx context.Context, req CreateAccountRequest) (*Account, error) {
	var account Account
	err := s.d.do(ctx, "accounts", requestOptions{
		method: http.MethodPost,
		body:   req,
		out:    &account,
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}
