package tagname

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullHash = "abc1234def5678901234567890abcdef12345678"

func TestParseStructured(t *testing.T) {
	t.Run("extracts all fields", func(t *testing.T) {
		got, ok := ParseStructured("main-abc1234-centos-8-x86_64-devel")

		require.True(t, ok)
		assert.Equal(t, Structured{
			Reference: "main",
			ShortHash: "abc1234",
			ELVersion: "8",
			Arch:      "x86_64",
		}, got)
	})

	t.Run("keeps hyphens in reference", func(t *testing.T) {
		got, ok := ParseStructured("wip-foo-bar-testing-0123abc-centos-9-aarch64-devel")

		require.True(t, ok)
		assert.Equal(t, "wip-foo-bar-testing", got.Reference)
		assert.Equal(t, "0123abc", got.ShortHash)
		assert.Equal(t, "9", got.ELVersion)
		assert.Equal(t, "aarch64", got.Arch)
	})

	t.Run("allows empty reference", func(t *testing.T) {
		got, ok := ParseStructured("-abc1234-centos-7-x86_64-devel")

		require.True(t, ok)
		assert.Empty(t, got.Reference)
		assert.Equal(t, "abc1234", got.ShortHash)
	})

	t.Run("round trips", func(t *testing.T) {
		names := []string{
			"ceph-abc1234-centos-8-x86_64-devel",
			"main-0000000-centos-7-aarch64-devel",
			"wip-a-b-c-ffffff0-centos-9-x86_64-devel",
			"-1234567-centos-8-aarch64-devel",
		}
		for _, name := range names {
			got, ok := ParseStructured(name)
			require.True(t, ok, name)
			assert.Equal(t, name, got.String())
		}
	})

	t.Run("rejects near misses", func(t *testing.T) {
		names := []string{
			"ceph-abc123-centos-8-x86_64-devel",    // 6 hex
			"ceph-abc12345-centos-8-x86_64-devel",  // 8 hex
			"ceph-ABC1234-centos-8-x86_64-devel",   // upper case
			"ceph-abg1234-centos-8-x86_64-devel",   // not hex
			"ceph-abc1234-centos-6-x86_64-devel",   // unsupported EL
			"ceph-abc1234-centos-10-x86_64-devel",  // unsupported EL
			"ceph-abc1234-centos-8-ppc64le-devel",  // unsupported arch
			"ceph-abc1234-rocky-8-x86_64-devel",    // wrong distro
			"ceph-abc1234-centos-8-x86_64",         // no suffix
			"ceph-abc1234-centos-8-x86_64-devel-x", // trailing text
			"abc1234-centos-8-x86_64-devel",        // no reference separator
			"main",
			"",
		}
		for _, name := range names {
			_, ok := ParseStructured(name)
			assert.False(t, ok, name)
		}
	})
}

func TestParseBareHash(t *testing.T) {
	t.Run("matches plain full hash", func(t *testing.T) {
		got, ok := ParseBareHash(fullHash)

		require.True(t, ok)
		assert.Equal(t, fullHash, got.FullHash)
		assert.Empty(t, got.Markers)
	})

	t.Run("records markers", func(t *testing.T) {
		got, ok := ParseBareHash(fullHash + "-crimson-aarch64")

		require.True(t, ok)
		assert.Equal(t, fullHash, got.FullHash)
		assert.Equal(t, []string{"crimson", "aarch64"}, got.Markers)
	})

	t.Run("tolerates unknown suffix", func(t *testing.T) {
		got, ok := ParseBareHash(fullHash + "-debug")

		require.True(t, ok)
		assert.Equal(t, fullHash, got.FullHash)
		assert.Empty(t, got.Markers)
	})

	t.Run("rejects wrong lengths and alphabet", func(t *testing.T) {
		names := []string{
			fullHash[:39],
			fullHash + "a",
			strings.ToUpper(fullHash),
			"z" + fullHash[1:],
			"main-abc1234-centos-8-x86_64-devel",
			"",
		}
		for _, name := range names {
			_, ok := ParseBareHash(name)
			assert.False(t, ok, name)
		}
	})
}

func TestShortHash(t *testing.T) {
	assert.Equal(t, "abc1234", ShortHash(fullHash))
	assert.Equal(t, "abc", ShortHash("abc"))
}
