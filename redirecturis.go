package tower

import (
	"context"
	"net/http"
)

// RedirectURIService manages the registered OAuth callback targets of the
// current tenant.
type RedirectURIService struct {
	d *dispatcher
}

// List returns a page of redirect URIs.
func (s *RedirectURIService) List(ctx context.Context, page *Page) (*PaginatedResponse, error) {
	var resp PaginatedResponse
	err := s.d.do(ctx, "redirect-uris", requestOptions{page: page, out: &resp})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Add registers a callback target.
func (s *RedirectURIService) Add(ctx context.Context, req AddRedirectURIRequest) (*RedirectURI, error) {
	var uri RedirectURI
	err := s.d.do(ctx, "redirect-uris", requestOptions{
		method: http.MethodPost,
		body:   req,
		out:    &uri,
	})
	if err != nil {
		return nil, err
	}
	return &uri, nil
}

// Delete removes a callback target.
func (s *RedirectURIService) Delete(ctx context.Context, id string) error {
	return s.d.do(ctx, "redirect-uris/"+id, requestOptions{method: http.MethodDelete})
}
