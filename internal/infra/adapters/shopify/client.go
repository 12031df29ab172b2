package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RestClient is a thin Shopify Admin REST API client. It authenticates with
// a store access token; no OAuth machinery is needed for Admin API calls.
type RestClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewRestClient(accessToken, shop, apiVersion string) (*RestClient, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("shopify: access token is required")
	}
	if shop == "" {
		return nil, fmt.Errorf("shopify: shop domain is required")
	}
	shop = strings.TrimPrefix(shop, "https://")
	shop = strings.TrimPrefix(shop, "http://")
	shop = strings.TrimSuffix(shop, "/")
	return &RestClient{
		baseURL: fmt.Sprintf("https://%s/admin/api/%s", shop, apiVersion),
		token:   accessToken,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *RestClient) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := fmt.Sprintf("%s/%s.json", c.baseURL, path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, u, nil, out)
}

func (c *RestClient) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("%s/%s.json", c.baseURL, path), body, out)
}

func (c *RestClient) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("%s/%s.json", c.baseURL, path), body, out)
}

func (c *RestClient) do(ctx context.Context, method, url string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-Shopify-Access-Token", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("shopify api error: %d %s - %s", resp.StatusCode, resp.Status, strings.TrimSpace(string(text)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
