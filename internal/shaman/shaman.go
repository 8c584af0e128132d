// Package shaman queries the shaman build-status service for ready builds.
package shaman

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ceph/quay-pruner/internal/tagname"
)

// ErrQueryFailed is returned when a search request fails for any reason.
// Callers must treat it as "unknown", never as "absent".
var ErrQueryFailed = errors.New("shaman query failed")

// Build is one search result.
type Build struct {
	SHA1          string `json:"sha1"`
	Ref           string `json:"ref,omitempty"`
	Distro        string `json:"distro,omitempty"`
	DistroVersion string `json:"distro_version,omitempty"`
	Arch          string `json:"arch,omitempty"`
	Flavor        string `json:"flavor,omitempty"`
	Status        string `json:"status,omitempty"`
	URL           string `json:"url,omitempty"`
}

// Query selects builds. Empty fields are left out of the request.
type Query struct {
	// Ref is the branch or PR name.
	Ref string

	// SHA1 is the full build hash.
	SHA1 string

	// ELVersion narrows the distro filter to one CentOS version.
	// When empty, every supported version is searched.
	ELVersion string
}

// ByReference returns a query for builds of ref on the given CentOS version.
func ByReference(ref, elVersion string) Query {
	return Query{Ref: ref, ELVersion: elVersion}
}

// ByHash returns a query for builds with the given full hash on any platform.
func ByHash(sha1 string) Query {
	return Query{SHA1: sha1}
}

// Distros returns the distro filter for the query.
func (q Query) Distros() string {
	var distros []string
	if q.ELVersion != "" {
		for _, arch := range tagname.Arches {
			distros = append(distros, "centos/"+q.ELVersion+"/"+arch)
		}
		return strings.Join(distros, ",")
	}
	for _, arch := range tagname.Arches {
		for _, el := range tagname.ELVersions {
			distros = append(distros, "centos/"+el+"/"+arch)
		}
	}
	return strings.Join(distros, ",")
}

// ClientConfig configures the shaman client.
type ClientConfig struct {
	// URL is the service base URL, e.g. "https://shaman.ceph.com".
	URL string

	// Project is the shaman project name.
	Project string

	// Flavor is the build flavor.
	Flavor string

	// Timeout bounds each search request.
	Timeout time.Duration
}

// Searcher finds ready builds in shaman.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/searcher.go . Searcher
type Searcher interface {
	// Search returns the ready builds matching the query, in service order.
	// Any failure is returned wrapped in ErrQueryFailed.
	Search(ctx context.Context, q Query) ([]Build, error)
}
