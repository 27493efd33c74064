// Package client talks to the check-in HTTP API. It is used by the scan
// station to record check-ins on a remote server.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/types"
)

var ErrNotFound = errors.New("attendee not found")

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("checkin api: %d %s: %s", e.Status, e.Code, e.Message)
}

// Client has no retry policy: check-in is not idempotent.
type Client struct {
	http *resty.Client
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: rc}
}

func (c *Client) CheckIn(ctx context.Context, id string, subevent types.Subevent) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(types.CheckinRequest{ID: id, Subevent: string(subevent)}).
		SetError(&APIError{}).
		Post("/checkin")
	return check(resp, err, "checkin")
}

func (c *Client) CheckOut(ctx context.Context, id string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(types.CheckoutRequest{ID: id}).
		SetError(&APIError{}).
		Post("/checkout")
	return check(resp, err, "checkout")
}

func (c *Client) Get(ctx context.Context, id string) (types.AttendeeResponse, error) {
	var out types.AttendeeResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&APIError{}).
		Get("/attendees/" + url.PathEscape(id))
	if err := check(resp, err, "get attendee"); err != nil {
		return types.AttendeeResponse{}, err
	}
	return out, nil
}

func (c *Client) Search(ctx context.Context, text string) ([]types.AttendeeSummary, error) {
	var out types.SearchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("search", text).
		SetResult(&out).
		SetError(&APIError{}).
		Get("/attendees")
	if err := check(resp, err, "search attendees"); err != nil {
		return nil, err
	}
	if out.Attendees == nil {
		out.Attendees = []types.AttendeeSummary{}
	}
	return out.Attendees, nil
}

func check(resp *resty.Response, err error, op string) error {
	if err != nil {
		return errors.Wrap(err, op)
	}
	if !resp.IsError() {
		return nil
	}
	if resp.StatusCode() == http.StatusNotFound {
		return errors.Wrap(ErrNotFound, op)
	}
	apiErr, _ := resp.Error().(*APIError)
	if apiErr == nil {
		apiErr = &APIError{Message: resp.String()}
	}
	apiErr.Status = resp.StatusCode()
	return errors.Wrap(apiErr, op)
}
