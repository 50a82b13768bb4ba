package cartclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a thin caller for the `/api/v1` backend. The session cookie is
// forwarded on every request so protected cart routes work.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Token:      token,
	}
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: c.Token})
	}
	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode >= 400 {
		var env struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &env)
		return &apiError{Status: res.StatusCode, Message: env.Message}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

type productPayload struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Price  string `json:"price"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
	Stock int `json:"stock"`
}

func (c *Client) getProduct(ctx context.Context, id string) (*productPayload, error) {
	var env struct {
		Product productPayload `json:"product"`
	}
	if err := c.do(ctx, http.MethodGet, "/product/"+id, nil, &env); err != nil {
		return nil, err
	}
	return &env.Product, nil
}

func (c *Client) addToCart(ctx context.Context, userID string, item Item) error {
	return c.do(ctx, http.MethodPut, "/addtocart/"+userID, item, nil)
}
