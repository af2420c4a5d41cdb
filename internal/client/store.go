// Package client provides the HTTP implementations of the remote
// collaborator contracts: the product store (list/create/update/delete)
// and the import job endpoint (submit/status).
//
// Both clients translate transport failures and non-2xx responses into
// the core's error taxonomy; nothing here retries automatically.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/catalogkit/skuadmin/internal/catalog"
	"github.com/go-resty/resty/v2"
)

// Store talks to the remote product store's REST endpoints.
type Store struct {
	http *resty.Client
}

// NewStore creates a store client for the given base URL.
func NewStore(baseURL string, timeout time.Duration) *Store {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Store{http: c}
}

// recordPayload is the wire shape of one product record.
type recordPayload struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

func (p recordPayload) record() catalog.Record {
	return catalog.Record{Key: p.ID, Fields: p.Fields}
}

// errorBody is the wire shape of a store error response.
type errorBody struct {
	Error  string               `json:"error"`
	Fields []catalog.FieldError `json:"fields,omitempty"`
}

// List fetches all product records.
func (s *Store) List(ctx context.Context) ([]catalog.Record, error) {
	var out []recordPayload
	resp, err := s.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/products")
	if err != nil {
		return nil, &catalog.RemoteError{Message: err.Error()}
	}
	if resp.IsError() {
		return nil, remoteError(resp)
	}

	records := make([]catalog.Record, len(out))
	for i, p := range out {
		records[i] = p.record()
	}
	return records, nil
}

// Create persists a new record and returns it with its assigned id.
func (s *Store) Create(ctx context.Context, fields map[string]any) (catalog.Record, error) {
	var out recordPayload
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"fields": fields}).
		SetResult(&out).
		Post("/api/products")
	if err != nil {
		return catalog.Record{}, &catalog.RemoteError{Message: err.Error()}
	}
	if resp.IsError() {
		return catalog.Record{}, remoteError(resp)
	}
	return out.record(), nil
}

// Update sends new field values for an existing record.
func (s *Store) Update(ctx context.Context, key string, fields map[string]any) (catalog.Record, error) {
	var out recordPayload
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"fields": fields}).
		SetResult(&out).
		SetPathParam("id", key).
		Put("/api/products/{id}")
	if err != nil {
		return catalog.Record{}, &catalog.RemoteError{Message: err.Error()}
	}
	if resp.IsError() {
		return catalog.Record{}, remoteError(resp)
	}
	return out.record(), nil
}

// Delete removes a record from the store.
func (s *Store) Delete(ctx context.Context, key string) error {
	resp, err := s.http.R().
		SetContext(ctx).
		SetPathParam("id", key).
		Delete("/api/products/{id}")
	if err != nil {
		return &catalog.RemoteError{Message: err.Error()}
	}
	if resp.IsError() {
		return remoteError(resp)
	}
	return nil
}

// remoteError decodes the store's error body into a RemoteError,
// falling back to the HTTP status when the body is not structured.
func remoteError(resp *resty.Response) error {
	var body errorBody
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error != "" {
		return &catalog.RemoteError{Message: body.Error, Fields: body.Fields}
	}
	return &catalog.RemoteError{Message: fmt.Sprintf("HTTP %d", resp.StatusCode())}
}
