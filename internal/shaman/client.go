package shaman

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-containerregistry/pkg/v1/remote/transport"
	"github.com/hashicorp/go-cleanhttp"
)

// Defaults applied when ClientConfig leaves a field unset.
const (
	DefaultURL     = "https://shaman.ceph.com"
	DefaultProject = "ceph"
	DefaultFlavor  = "default"
	DefaultTimeout = 30 * time.Second
)

// statusReady restricts searches to builds whose artifacts are available.
const statusReady = "ready"

type client struct {
	config    ClientConfig
	http      *http.Client
	searchURL string
}

// NewClient creates a new shaman client with the given configuration.
func NewClient(cfg ClientConfig) (Searcher, error) {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Project == "" {
		cfg.Project = DefaultProject
	}
	if cfg.Flavor == "" {
		cfg.Flavor = DefaultFlavor
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	base, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse shaman url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("parse shaman url: %q is not absolute", cfg.URL)
	}

	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = cfg.Timeout

	return &client{
		config:    cfg,
		http:      httpClient,
		searchURL: strings.TrimSuffix(base.String(), "/") + "/api/search/",
	}, nil
}

// Search issues a single search request.
func (c *client) Search(ctx context.Context, q Query) ([]Build, error) {
	target := c.searchURL + "?" + c.params(q).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrQueryFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	defer resp.Body.Close()

	if err := transport.CheckError(resp, http.StatusOK); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrQueryFailed, target, err)
	}

	var builds []Build
	if err := json.NewDecoder(resp.Body).Decode(&builds); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrQueryFailed, err)
	}

	return builds, nil
}

func (c *client) params(q Query) url.Values {
	params := url.Values{}
	params.Set("project", c.config.Project)
	params.Set("flavor", c.config.Flavor)
	params.Set("status", statusReady)
	params.Set("distros", q.Distros())
	if q.Ref != "" {
		params.Set("ref", q.Ref)
	}
	if q.SHA1 != "" {
		params.Set("sha1", q.SHA1)
	}
	return params
}
