package remotes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/reusee/mts/interfaces"
	"github.com/reusee/mts/logs"
	"github.com/reusee/mts/managers"
)

// Client queries the remote server of a peer process.
type Client struct {
	base string
	http *http.Client
}

func NewClient(base string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		base: strings.TrimSuffix(base, "/"),
		http: httpClient,
	}
}

func (c *Client) Base() string {
	return c.base
}

func (c *Client) do(ctx context.Context, method, path string, body, ret any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if span, ok := ctx.Value(logs.SpanKey).(logs.Span); ok {
		req.Header.Set(SpanHeader, string(span))
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var e errorBody
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("%w: %s %s: %s", errorOf(resp.StatusCode), method, path, e.Error)
	}
	if ret == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(ret)
}

func (c *Client) Process(ctx context.Context) (string, error) {
	var info ProcessInfo
	if err := c.do(ctx, http.MethodGet, "/v1/process", nil, &info); err != nil {
		return "", err
	}
	return info.Process, nil
}

func (c *Client) Components(ctx context.Context) (ret []ComponentInfo, err error) {
	err = c.do(ctx, http.MethodGet, "/v1/components", nil, &ret)
	return
}

func (c *Client) Connections(ctx context.Context) (ret []managers.Connection, err error) {
	err = c.do(ctx, http.MethodGet, "/v1/connections", nil, &ret)
	return
}

func providedPath(component, provided string) string {
	return "/v1/components/" + url.PathEscape(component) + "/provided/" + url.PathEscape(provided)
}

func (c *Client) IsRegisteredProvidedInterface(ctx context.Context, component, provided string) (bool, error) {
	var info RegisteredInfo
	if err := c.do(ctx, http.MethodGet, providedPath(component, provided)+"/registered", nil, &info); err != nil {
		return false, err
	}
	return info.Registered, nil
}

func (c *Client) GetProvidedInterfaceAccessInfo(ctx context.Context, component, provided string) (ret interfaces.AccessInfo, err error) {
	err = c.do(ctx, http.MethodGet, providedPath(component, provided), nil, &ret)
	return
}

func (c *Client) AllocateRemoteResources(ctx context.Context, req AllocateRequest) (uuid.UUID, error) {
	var resp AllocateResponse
	if err := c.do(ctx, http.MethodPost, "/v1/allocate", req, &resp); err != nil {
		return uuid.Nil, err
	}
	return resp.ID, nil
}

func (c *Client) NotifyInterfaceConnectionResult(ctx context.Context, isProvider, success bool, id uuid.UUID, consumer, required, provider, provided string) error {
	return c.do(ctx, http.MethodPost, "/v1/notify", NotifyRequest{
		IsProvider: isProvider,
		Success:    success,
		ID:         id,
		Consumer:   consumer,
		Required:   required,
		Provider:   provider,
		Provided:   provided,
	}, nil)
}
