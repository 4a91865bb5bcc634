package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/auth"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/config"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/errors"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/logging"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/metrics"
)

// validatable is implemented by every decoded backend entity.
type validatable interface {
	Validate() error
}

// restClient performs one JSON call against a backend. Calls are never
// retried; every failure is returned to the caller as is.
type restClient struct {
	service    string
	baseURL    string
	httpClient *http.Client
	apiKey     string
	logger     *logging.LoggerV2
}

func newRESTClient(service string, cfg config.ServiceConfig, logger *logging.LoggerV2) *restClient {
	return &restClient{
		service: service,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey: cfg.APIKey,
		logger: logger,
	}
}

// do sends body (if non-nil) as JSON and decodes a 2xx response into out
// (if non-nil). A 204 or empty body leaves out untouched.
func (c *restClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	c.setHeaders(ctx, req)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveBackend(c.service, method, 0, started)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Error("Backend unreachable", logging.Fields{
			"service": c.service,
			"method":  method,
			"path":    path,
			"error":   err.Error(),
		})
		return &errors.ConnectivityError{Service: c.service, Err: err}
	}
	defer resp.Body.Close()
	metrics.ObserveBackend(c.service, method, resp.StatusCode, started)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &errors.HTTPError{
			Service:    c.service,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp),
		}
		c.logger.Debug("Backend returned error", logging.Fields{
			"service":     c.service,
			"method":      method,
			"path":        path,
			"status_code": resp.StatusCode,
			"message":     httpErr.Message,
		})
		return httpErr
	}

	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errors.ConnectivityError{Service: c.service, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &errors.DecodeError{Service: c.service, Err: err}
	}
	if err := validateDecoded(out); err != nil {
		return &errors.DecodeError{Service: c.service, Err: err}
	}
	return nil
}

// errorMessage prefers a JSON message/error field, then raw text, then
// "HTTP <status>". A JSON body that fails to parse keeps the fallback.
func errorMessage(resp *http.Response) string {
	message := errors.StatusMessage(resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return message
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var payload map[string]interface{}
		if err := json.Unmarshal(data, &payload); err != nil {
			return message
		}
		if m, ok := payload["message"].(string); ok {
			return m
		}
		if m, ok := payload["error"].(string); ok {
			return m
		}
		return message
	}

	if text := string(data); text != "" {
		return text
	}
	return message
}

func validateDecoded(out interface{}) error {
	if v, ok := out.(validatable); ok {
		return v.Validate()
	}
	return nil
}

// getList fetches a JSON array and validates every element. A null body
// yields an empty list.
func getList[T any, PT interface {
	*T
	validatable
}](ctx context.Context, c *restClient, path string) ([]T, error) {
	var items []T
	if err := c.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	for i := range items {
		if err := PT(&items[i]).Validate(); err != nil {
			return nil, &errors.DecodeError{Service: c.service, Err: fmt.Errorf("element %d: %w", i, err)}
		}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *restClient) setHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if token, ok := auth.TokenFromContext(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	} else if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	if requestID, ok := auth.RequestIDFromContext(ctx); ok {
		req.Header.Set(auth.HeaderRequestID, requestID)
	}
}
