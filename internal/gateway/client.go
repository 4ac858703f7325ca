// Package gateway talks to the Pixotope gateway's publish endpoint.
//
// Every property read is a GET of
//
//	{endpoint}/publish?Type=Get&Name=<property>&Target=<target>
//
// answered by a one-element JSON array:
//
//	[{"Message":{"Value": ...}}]
//
// Writes use Type=Set and add Value=<value>. The gateway's answer to a write
// is not inspected beyond the HTTP status.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Property names and the store target used by the panel.
const (
	PropertyColorSpace  = "State.Defaults.ColorSpace"
	PropertyInputOutput = "State.Defaults.Type"
	PropertyCameras     = "State.Cameras"

	TargetStore = "Store"
)

// Client is a Pixotope gateway client.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient returns a client for endpoint, e.g.
// "http://127.0.0.1:16208/gateway/25.1.1". A zero timeout means none.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the base URL the client publishes to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// StatusError is returned when the gateway answers with a non-2xx status.
type StatusError struct {
	Property string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway: %s: status %d: %s", e.Property, e.Code, e.Body)
}

// Errors
var (
	ErrEmptyResponse = errors.New("gateway: empty response")
)

// envelope is one element of the gateway's response array.
type envelope[T any] struct {
	Message struct {
		Value T `json:"Value"`
	} `json:"Message"`
}

// Get reads property from target and returns the raw response body.
func (c *Client) Get(ctx context.Context, property, target string) ([]byte, error) {
	q := url.Values{}
	q.Set("Type", "Get")
	q.Set("Name", property)
	q.Set("Target", target)
	return c.publish(ctx, property, q)
}

// Set writes value to property on target.
func (c *Client) Set(ctx context.Context, property, value, target string) error {
	q := url.Values{}
	q.Set("Type", "Set")
	q.Set("Name", property)
	q.Set("Value", value)
	q.Set("Target", target)
	_, err := c.publish(ctx, property, q)
	return err
}

func (c *Client) publish(ctx context.Context, property string, q url.Values) ([]byte, error) {
	u := c.endpoint + "/publish?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("gateway: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: %s: %w", property, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gateway: read %s: %w", property, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Property: property,
			Code:     resp.StatusCode,
			Body:     strings.TrimSpace(string(body)),
		}
	}
	return body, nil
}

// getValue reads property from the store and decodes Message.Value into T.
func getValue[T any](ctx context.Context, c *Client, property string) (T, error) {
	var zero T
	body, err := c.Get(ctx, property, TargetStore)
	if err != nil {
		return zero, err
	}

	var resp []envelope[T]
	if err := json.Unmarshal(body, &resp); err != nil {
		return zero, fmt.Errorf("gateway: decode %s: %w", property, err)
	}
	if len(resp) == 0 {
		return zero, fmt.Errorf("%w: %s", ErrEmptyResponse, property)
	}
	return resp[0].Message.Value, nil
}

// ColorSpace returns the active color space name.
func (c *Client) ColorSpace(ctx context.Context) (string, error) {
	return getValue[string](ctx, c, PropertyColorSpace)
}

// InputOutput returns the active input/output identifier.
func (c *Client) InputOutput(ctx context.Context) (string, error) {
	return getValue[string](ctx, c, PropertyInputOutput)
}

type camera struct {
	Name string `json:"Name"`
}

// Cameras returns the display names of the cameras in the store. The store
// keys cameras by id in an object, so the names are returned in collated
// order to keep the list stable between polls.
func (c *Client) Cameras(ctx context.Context) ([]string, error) {
	byID, err := getValue[map[string]camera](ctx, c, PropertyCameras)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(byID))
	for _, cam := range byID {
		names = append(names, cam.Name)
	}
	sortNames(names)
	return names, nil
}

// sortNames orders names case-insensitively with numeric runs compared by
// value. Names the collator considers equal fall back to byte order, so the
// result does not depend on map iteration.
func sortNames(names []string) {
	col := collate.New(language.Und, collate.IgnoreCase, collate.Numeric)
	slices.SortFunc(names, func(a, b string) int {
		if c := col.CompareString(a, b); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
}

// SetColorSpace stores name as the active color space.
func (c *Client) SetColorSpace(ctx context.Context, name string) error {
	log.Printf("[Gateway] Set %s=%s", PropertyColorSpace, name)
	return c.Set(ctx, PropertyColorSpace, name, TargetStore)
}

// SetInputOutput stores id as the active input/output.
func (c *Client) SetInputOutput(ctx context.Context, id string) error {
	log.Printf("[Gateway] Set %s=%s", PropertyInputOutput, id)
	return c.Set(ctx, PropertyInputOutput, id, TargetStore)
}
