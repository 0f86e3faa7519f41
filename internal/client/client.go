// Package client is a typed HTTP client for the trips API. Client satisfies
// draft.Backend, so a draft.Session can synchronize with a remote server the
// same way it does with service.TripService in-process.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tripwizard/internal/api"
	"github.com/pkordes/tripwizard/internal/domain"
	"github.com/pkordes/tripwizard/internal/draft"
)

// Client calls the trips API at baseURL with a bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a Client. token is sent as "Authorization: Bearer <token>".
func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

var _ draft.Backend = (*Client)(nil)

// Create posts a new draft and returns it with its server-assigned id and
// version. The owner is taken from the token, not from trip.OwnerID.
func (c *Client) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	var out api.Trip
	if err := c.do(ctx, http.MethodPost, "/api/trips", api.NewTripRequest(trip), &out); err != nil {
		return domain.Trip{}, fmt.Errorf("client.Client.Create: %w", err)
	}
	return withOwner(out.ToDomain(), trip.OwnerID), nil
}

// Save replaces the stored draft. trip.Version must match the server's
// version; otherwise the error wraps domain.ErrStaleDraft.
func (c *Client) Save(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	var out api.Trip
	if err := c.do(ctx, http.MethodPut, "/api/trips/"+trip.ID.String(), api.NewTripRequest(trip), &out); err != nil {
		return domain.Trip{}, fmt.Errorf("client.Client.Save: %w", err)
	}
	return withOwner(out.ToDomain(), trip.OwnerID), nil
}

// Get loads one draft of the token's owner.
func (c *Client) Get(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	var out api.Trip
	if err := c.do(ctx, http.MethodGet, "/api/trips/"+id.String(), nil, &out); err != nil {
		return domain.Trip{}, fmt.Errorf("client.Client.Get: %w", err)
	}
	return out.ToDomain(), nil
}

// Book finalizes a draft. idempotencyKey, when non-empty, lets the request be
// retried safely.
func (c *Client) Book(ctx context.Context, id uuid.UUID, idempotencyKey string) (domain.Trip, error) {
	var out api.Trip
	err := c.doWithHeaders(ctx, http.MethodPost, "/api/trips/"+id.String()+"/book", nil, &out, func(h http.Header) {
		if idempotencyKey != "" {
			h.Set("Idempotency-Key", idempotencyKey)
		}
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("client.Client.Book: %w", err)
	}
	return out.ToDomain(), nil
}

func withOwner(t domain.Trip, ownerID string) domain.Trip {
	t.OwnerID = ownerID
	return t
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	return c.doWithHeaders(ctx, method, path, in, out, nil)
}

func (c *Client) doWithHeaders(ctx context.Context, method, path string, in, out any, headers func(http.Header)) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if headers != nil {
		headers(req.Header)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return responseError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// responseError maps the error envelope back onto the domain sentinel the
// server started from.
func responseError(resp *http.Response) error {
	var env api.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &env); err != nil || env.Error.Code == "" {
		env.Error.Message = strings.TrimSpace(string(raw))
	}
	msg := env.Error.Message
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	var sentinel error
	switch {
	case env.Error.Code == "stale_draft":
		sentinel = domain.ErrStaleDraft
	case env.Error.Code == "booked":
		sentinel = domain.ErrBooked
	case env.Error.Code == "hotel_overlap":
		return overlapError(env.Error)
	case resp.StatusCode == http.StatusConflict:
		sentinel = domain.ErrConflict
	case resp.StatusCode == http.StatusNotFound:
		sentinel = domain.ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		sentinel = domain.ErrUnauthorized
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnprocessableEntity:
		sentinel = domain.ErrValidation
	case resp.StatusCode >= 500:
		sentinel = domain.ErrUpstream
	default:
		sentinel = errors.New(http.StatusText(resp.StatusCode))
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}

func overlapError(detail api.ErrorDetail) error {
	ids := make([]uuid.UUID, 0, len(detail.Conflicts))
	for _, s := range detail.Conflicts {
		if id, err := uuid.Parse(s); err == nil {
			ids = append(ids, id)
		}
	}
	return &draft.OverlapError{Conflicts: ids}
}
