package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultTimeout = 30 * time.Second

// Client is a thin wrapper of *http.Client returning status code and body of
// every response as a string.
type Client struct {
	*http.Client
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{&http.Client{Timeout: timeout}}
}

// NewHTTPRequest performs a request with the given method.
// Only GET, POST and DELETE are supported.
func (c *Client) NewHTTPRequest(
	ctx context.Context, method, url, bodyString string,
	header map[string]string,
) (int, string, error) {
	var body io.Reader
	switch method {
	case http.MethodGet, http.MethodDelete:
	case http.MethodPost:
		body = strings.NewReader(bodyString)
	default:
		return 0, "", fmt.Errorf("verb not supported %s", method)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, "", err
	}
	for key, value := range header {
		req.Header.Set(key, value)
	}

	return c.doRequest(req)
}

func (c *Client) Get(
	ctx context.Context, url string, header map[string]string,
) (int, string, error) {
	return c.NewHTTPRequest(ctx, http.MethodGet, url, "", header)
}

func (c *Client) Post(
	ctx context.Context, url, bodyString string, header map[string]string,
) (int, string, error) {
	return c.NewHTTPRequest(ctx, http.MethodPost, url, bodyString, header)
}

func (c *Client) doRequest(req *http.Request) (int, string, error) {
	rs, err := c.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer rs.Body.Close()

	bodyBytes, err := io.ReadAll(rs.Body)
	if err != nil {
		return -1, "", fmt.Errorf("failed to read response body: %w", err)
	}
	return rs.StatusCode, string(bodyBytes), nil
}
