package shaman

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_Distros(t *testing.T) {
	t.Run("scopes to one EL version", func(t *testing.T) {
		assert.Equal(t, "centos/8/x86_64,centos/8/aarch64", ByReference("main", "8").Distros())
	})

	t.Run("broadens to every version without a platform", func(t *testing.T) {
		assert.Equal(t,
			"centos/7/x86_64,centos/8/x86_64,centos/9/x86_64,centos/7/aarch64,centos/8/aarch64,centos/9/aarch64",
			ByHash("abc").Distros(),
		)
	})
}

func TestNewClient(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		s, err := NewClient(ClientConfig{})
		require.NoError(t, err)

		c := s.(*client)
		assert.Equal(t, "https://shaman.ceph.com/api/search/", c.searchURL)
		assert.Equal(t, DefaultProject, c.config.Project)
		assert.Equal(t, DefaultFlavor, c.config.Flavor)
		assert.Equal(t, DefaultTimeout, c.http.Timeout)
	})

	t.Run("rejects relative url", func(t *testing.T) {
		_, err := NewClient(ClientConfig{URL: "shaman.ceph.com"})

		assert.Error(t, err)
	})
}

func TestClient_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("sends query parameters and decodes builds", func(t *testing.T) {
		queries := make(chan url.Values, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/search/", r.URL.Path)
			queries <- r.URL.Query()
			_, _ = w.Write([]byte(`[{"sha1": "abc1234def5678901234567890abcdef12345678", "ref": "main", "distro": "centos", "distro_version": "8", "status": "ready"}]`))
		}))
		defer server.Close()

		s, err := NewClient(ClientConfig{URL: server.URL})
		require.NoError(t, err)

		builds, err := s.Search(ctx, ByReference("main", "8"))

		require.NoError(t, err)
		require.Len(t, builds, 1)
		assert.Equal(t, "abc1234def5678901234567890abcdef12345678", builds[0].SHA1)
		assert.Equal(t, "main", builds[0].Ref)

		got := <-queries
		assert.Equal(t, "ceph", got.Get("project"))
		assert.Equal(t, "default", got.Get("flavor"))
		assert.Equal(t, "ready", got.Get("status"))
		assert.Equal(t, "centos/8/x86_64,centos/8/aarch64", got.Get("distros"))
		assert.Equal(t, "main", got.Get("ref"))
		assert.False(t, got.Has("sha1"))
	})

	t.Run("omits ref when searching by hash", func(t *testing.T) {
		queries := make(chan url.Values, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			queries <- r.URL.Query()
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()

		s, err := NewClient(ClientConfig{URL: server.URL, Project: "ceph-ci", Flavor: "crimson"})
		require.NoError(t, err)

		builds, err := s.Search(ctx, ByHash("abc1234def5678901234567890abcdef12345678"))

		require.NoError(t, err)
		assert.Empty(t, builds)
		got := <-queries
		assert.Equal(t, "ceph-ci", got.Get("project"))
		assert.Equal(t, "crimson", got.Get("flavor"))
		assert.Equal(t, "abc1234def5678901234567890abcdef12345678", got.Get("sha1"))
		assert.False(t, got.Has("ref"))
	})

	t.Run("wraps non-success status in ErrQueryFailed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		s, err := NewClient(ClientConfig{URL: server.URL})
		require.NoError(t, err)

		_, err = s.Search(ctx, ByHash("abc"))

		assert.ErrorIs(t, err, ErrQueryFailed)
	})

	t.Run("wraps undecodable body in ErrQueryFailed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer server.Close()

		s, err := NewClient(ClientConfig{URL: server.URL})
		require.NoError(t, err)

		_, err = s.Search(ctx, ByHash("abc"))

		assert.ErrorIs(t, err, ErrQueryFailed)
	})

	t.Run("wraps connection failure in ErrQueryFailed", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		addr := server.URL
		server.Close()

		s, err := NewClient(ClientConfig{URL: addr})
		require.NoError(t, err)

		_, err = s.Search(ctx, ByHash("abc"))

		assert.ErrorIs(t, err, ErrQueryFailed)
	})
}
