// Package registry provides tag listing and deletion against the Quay REST API.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Sentinel errors for registry operations.
var (
	// ErrListingFailed is returned when paging through the tag list stops early.
	ErrListingFailed = errors.New("tag listing failed")

	// ErrDeleteFailed is returned when a tag could not be deleted.
	ErrDeleteFailed = errors.New("tag deletion failed")

	// ErrTagNotFound is returned when the tag or repository does not exist.
	ErrTagNotFound = errors.New("tag not found")

	// ErrUnauthorized is returned when authentication fails.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidRepository is returned when the repository reference is malformed.
	ErrInvalidRepository = errors.New("invalid repository reference")
)

// Tag is one entry of the repository tag listing.
type Tag struct {
	Name           string `json:"name"`
	ImageID        string `json:"image_id"`
	IsManifestList bool   `json:"is_manifest_list"`
	ManifestDigest string `json:"manifest_digest,omitempty"`
	LastModified   string `json:"last_modified,omitempty"`

	// Expiration and EndTS are kept raw: only their presence matters.
	Expiration json.RawMessage `json:"expiration,omitempty"`
	EndTS      json.RawMessage `json:"end_ts,omitempty"`
}

// Expired reports whether the tag carries an expiration or end timestamp,
// meaning it has already been deleted or overwritten.
func (t Tag) Expired() bool {
	return len(t.Expiration) > 0 || len(t.EndTS) > 0
}

// tagPage is one page of the tag listing response.
type tagPage struct {
	Tags          []Tag `json:"tags"`
	Page          int   `json:"page"`
	HasAdditional bool  `json:"has_additional"`
}

// ClientConfig configures the registry client.
type ClientConfig struct {
	// Repository is the image repository, e.g. "quay.ceph.io/ceph-ci/ceph".
	// The API endpoint is derived from its registry host.
	Repository string

	// Token is the bearer credential. Requests are sent unauthenticated when empty.
	Token string

	// Insecure forces plain HTTP to the registry.
	Insecure bool

	// PageSize is the number of tags requested per page.
	PageSize int

	// StartPage is the first page requested.
	StartPage int

	// PageLimit is the page number at which listing stops.
	PageLimit int

	// Timeout bounds each individual HTTP request.
	Timeout time.Duration
}

// Client lists and deletes repository tags.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/client.go . Client
type Client interface {
	// ListTags returns every tag of the repository, including expired ones.
	// When a page request fails, the tags fetched so far are returned along
	// with an error wrapping ErrListingFailed.
	ListTags(ctx context.Context) ([]Tag, error)

	// DeleteTag removes a single tag by name.
	DeleteTag(ctx context.Context, name string) error
}
