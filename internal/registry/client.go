package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"
	"github.com/hashicorp/go-cleanhttp"

	"github.com/ceph/quay-pruner/internal/slogger"
)

// Defaults applied when ClientConfig leaves a field unset.
const (
	DefaultPageSize  = 100
	DefaultStartPage = 1
	DefaultPageLimit = 100000
	DefaultTimeout   = 30 * time.Second
)

// client implements the Client interface against the Quay v1 API.
type client struct {
	config  ClientConfig
	http    *http.Client
	tagsURL string
}

// NewClient creates a new registry client with the given configuration.
func NewClient(cfg ClientConfig) (Client, error) {
	var nameOpts []name.Option
	if cfg.Insecure {
		nameOpts = append(nameOpts, name.Insecure)
	}

	repo, err := name.NewRepository(cfg.Repository, nameOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRepository, err)
	}

	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.StartPage <= 0 {
		cfg.StartPage = DefaultStartPage
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = DefaultPageLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = cfg.Timeout

	tagsURL := (&url.URL{
		Scheme: repo.Registry.Scheme(),
		Host:   repo.RegistryStr(),
		Path:   "/api/v1/repository/" + repo.RepositoryStr() + "/tag",
	}).String()

	return &client{
		config:  cfg,
		http:    httpClient,
		tagsURL: tagsURL,
	}, nil
}

// ListTags pages through the tag listing until the registry reports no
// further pages or the page limit is reached.
func (c *client) ListTags(ctx context.Context) ([]Tag, error) {
	var tags []Tag

	for page := c.config.StartPage; page < c.config.PageLimit; page++ {
		result, err := c.fetchPage(ctx, page)
		if err != nil {
			return tags, fmt.Errorf("%w: page %d: %w", ErrListingFailed, page, err)
		}

		slogger.L(ctx).Debug("fetched tag page", "page", page, "tags", len(result.Tags))
		tags = append(tags, result.Tags...)

		if !result.HasAdditional {
			break
		}
	}

	return tags, nil
}

// DeleteTag removes a single tag by name.
func (c *client) DeleteTag(ctx context.Context, tag string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, c.tagsURL+"/"+url.PathEscape(tag))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDeleteFailed, tag, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDeleteFailed, tag, err)
	}
	defer resp.Body.Close()

	if err := transport.CheckError(resp, http.StatusOK, http.StatusAccepted, http.StatusNoContent); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDeleteFailed, tag, c.mapError(err))
	}

	return nil
}

func (c *client) fetchPage(ctx context.Context, page int) (*tagPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(c.config.PageSize))
	query.Set("onlyActiveTags", "false")

	req, err := c.newRequest(ctx, http.MethodGet, c.tagsURL+"?"+query.Encode())
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := transport.CheckError(resp, http.StatusOK); err != nil {
		return nil, c.mapError(err)
	}

	var result tagPage
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode tag page: %w", err)
	}

	return &result, nil
}

func (c *client) newRequest(ctx context.Context, method, target string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
	return req, nil
}

// mapError converts go-containerregistry transport errors to sentinel errors.
func (c *client) mapError(err error) error {
	var transportErr *transport.Error
	if errors.As(err, &transportErr) {
		for _, diagnostic := range transportErr.Errors {
			switch diagnostic.Code {
			case transport.UnauthorizedErrorCode, transport.DeniedErrorCode:
				return fmt.Errorf("%w: %s", ErrUnauthorized, err)
			case transport.NameUnknownErrorCode, transport.ManifestUnknownErrorCode:
				return fmt.Errorf("%w: %s", ErrTagNotFound, err)
			}
		}
		// Quay's REST API does not use registry error codes, so the status
		// code is the usual signal.
		switch transportErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrUnauthorized, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrTagNotFound, err)
		}
	}

	return fmt.Errorf("registry error: %w", err)
}
