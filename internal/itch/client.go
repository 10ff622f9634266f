// Package itch talks to the itch.io server-side API for the uploads of a game.
package itch

import (
	"buildwatch/internal/structures"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

type ClientInterface interface {
	FetchUploads(ctx context.Context, titleID string) ([]Upload, error)
	DownloadURL(ctx context.Context, uploadID string) (string, error)
}

var ErrMissingAPIKey = errors.New("itch: api key is not configured")

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(conf *structures.Config) ClientInterface {
	timeout := conf.Watcher.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(conf.Watcher.BaseURL, "/"),
		apiKey:     conf.Watcher.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type uploadsResponse struct {
	Uploads []json.RawMessage `json:"uploads"`
	Errors  []string          `json:"errors"`
}

type downloadResponse struct {
	URL    string   `json:"url"`
	Errors []string `json:"errors"`
}

func (c *Client) FetchUploads(ctx context.Context, titleID string) ([]Upload, error) {
	var resp uploadsResponse
	if err := c.get(ctx, "/game/"+url.PathEscape(titleID)+"/uploads", &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("itch: %s", strings.Join(resp.Errors, "; "))
	}

	uploads := make([]Upload, 0, len(resp.Uploads))
	for _, raw := range resp.Uploads {
		var u Upload
		if err := json.Unmarshal(raw, &u); err != nil {
			return nil, fmt.Errorf("itch: decode upload: %w", err)
		}
		u.Raw = raw
		uploads = append(uploads, u)
	}
	return uploads, nil
}

func (c *Client) DownloadURL(ctx context.Context, uploadID string) (string, error) {
	var resp downloadResponse
	if err := c.get(ctx, "/upload/"+url.PathEscape(uploadID)+"/download", &resp); err != nil {
		return "", err
	}
	if len(resp.Errors) > 0 {
		return "", fmt.Errorf("itch: %s", strings.Join(resp.Errors, "; "))
	}
	if resp.URL == "" {
		return "", fmt.Errorf("itch: no download url returned for upload %s", uploadID)
	}
	return resp.URL, nil
}

func (c *Client) get(ctx context.Context, path string, dst any) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(c.apiKey)+path, nil)
	if err != nil {
		return fmt.Errorf("itch: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		// the request URL embeds the api key
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("itch: request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 1<<16))
		return fmt.Errorf("itch: unexpected status %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return fmt.Errorf("itch: decode response: %w", err)
	}
	return nil
}
