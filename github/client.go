package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"devconnector/models"
)

const (
	DefaultBaseURL = "https://api.github.com"
	maxRepos       = 5
)

var ErrNotFound = errors.New("github: no such user")

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client looks up public repositories. The auth header is fixed at construction.
type Client struct {
	baseURL *url.URL
	client  *http.Client
	header  http.Header
	timeout time.Duration
}

func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	u, err := url.ParseRequestURI(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	header := http.Header{}
	header.Set("User-Agent", "devconnector")
	header.Set("Accept", "application/vnd.github+json")
	if cfg.Token != "" {
		header.Set("Authorization", "token "+cfg.Token)
	}

	log.Printf("[github] client created base_url=%s timeout=%s auth=%t", cfg.BaseURL, cfg.Timeout, cfg.Token != "")
	return &Client{baseURL: u, client: httpClient, header: header, timeout: cfg.Timeout}, nil
}

func NewDefaultClient(cfg Config) (*Client, error) {
	defaultClient := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 15 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          20,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   5 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
	return NewClient(cfg, defaultClient)
}

// Repos returns at most five repositories of username ordered by creation date.
func (c *Client) Repos(ctx context.Context, username string) ([]models.Repo, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL.JoinPath("users", username, "repos")
	q := url.Values{}
	q.Set("per_page", fmt.Sprint(maxRepos))
	q.Set("sort", "created")
	q.Set("direction", "asc")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header = c.header.Clone()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("github status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var repos []models.Repo
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, fmt.Errorf("decode repos: %w", err)
	}
	if len(repos) > maxRepos {
		repos = repos[:maxRepos]
	}
	return repos, nil
}

// Close releases idle connections of the underlying transport.
func (c *Client) Close() {
	if tr, ok := c.client.Transport.(interface{ CloseIdleConnections() }); ok {
		tr.CloseIdleConnections()
	}
}
