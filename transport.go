package tower

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"go.pilab.hu/tower/log"
	"go.pilab.hu/tower/tokens"
)

// requestOptions describes one API call made through the dispatcher.
type requestOptions struct {
	method string
	body   any
	page   *Page

	// tenantIndependent bypasses tenant-scoped path resolution. Used for
	// tenant listing/creation and the auth endpoints themselves, which
	// cannot be nested under a tenant that may not yet be resolvable.
	tenantIndependent bool

	// tenantID overrides the current tenant for this call.
	tenantID string

	// out receives the decoded JSON response body when non-nil.
	out any
}

// dispatcher is the shared request-sending primitive behind every resource
// service. It attaches auth and tenant headers, resolves tenant-scoped
// paths, and performs one transparent refresh-and-retry on an unauthorized
// response.
type dispatcher struct {
	client     *http.Client
	baseURL    string
	pathPrefix string
	clientID   string
	tokens     *tokens.Manager
	logger     log.Logger
}

func (d *dispatcher) resolveURL(path, tenantID string, opts requestOptions) string {
	finalPath := path
	if !opts.tenantIndependent {
		finalPath = "tenants/" + tenantID + "/" + path
	}

	u := strings.TrimSuffix(d.baseURL, "/") + d.pathPrefix + finalPath

	if opts.page != nil {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(opts.page.Limit))
		params.Set("offset", strconv.Itoa(opts.page.Offset))
		if opts.page.Query != "" {
			params.Set("query", opts.page.Query)
		}
		u += "?" + params.Encode()
	}
	return u
}

// do executes one API call. On success the JSON body is decoded into
// opts.out; on a non-success status it returns an *APIError. A 401 response
// triggers exactly one token refresh and retry; the error of a failed retry
// reflects the second response.
func (d *dispatcher) do(ctx context.Context, path string, opts requestOptions) error {
	method := opts.method
	if method == "" {
		method = http.MethodGet
	}

	tenantID := opts.tenantID
	if tenantID == "" {
		tenantID = d.tokens.CurrentTenantID()
	}

	var payload []byte
	if opts.body != nil {
		var err error
		payload, err = json.Marshal(opts.body)
		if err != nil {
			return fmt.Errorf("tower: encode request body: %w", err)
		}
	}

	requestID := uuid.NewString()
	targetURL := d.resolveURL(path, tenantID, opts)

	send := func(token string) (int, string, []byte, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, targetURL, reader)
		if err != nil {
			return 0, "", nil, err
		}
		req.Header.Set("X-Tenant-ID", tenantID)
		req.Header.Set("X-Client-ID", d.clientID)
		req.Header.Set("X-Request-ID", requestID)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := d.client.Do(req)
		if err != nil {
			return 0, "", nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return 0, "", nil, err
		}
		return resp.StatusCode, resp.Status, body, nil
	}

	token, _ := d.tokens.ValidToken(ctx, opts.tenantID)

	d.logger.Debug(ctx, "dispatching request", map[string]interface{}{
		"method":     method,
		"url":        targetURL,
		"tenant_id":  tenantID,
		"request_id": requestID,
	})

	status, statusText, body, err := send(token)
	if err != nil {
		return fmt.Errorf("tower: request failed: %w", err)
	}

	if status == http.StatusUnauthorized {
		if d.tokens.ForceRefresh(ctx, opts.tenantID) {
			if newToken, ok := d.tokens.ValidToken(ctx, opts.tenantID); ok {
				d.logger.Debug(ctx, "retrying after token refresh", map[string]interface{}{
					"request_id": requestID,
				})
				status, statusText, body, err = send(newToken)
				if err != nil {
					return fmt.Errorf("tower: retry failed: %w", err)
				}
			}
		}
	}

	if status < 200 || status >= 300 {
		return &APIError{StatusCode: status, Status: statusText, Body: string(body)}
	}

	if opts.out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, opts.out); err != nil {
			return fmt.Errorf("tower: decode response body: %w", err)
		}
	}
	return nil
}
