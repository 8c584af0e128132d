// Package tagname decomposes CI image tag names into the fields used to
// look their builds up in shaman.
//
// Two shapes are recognized:
//
//	<reference>-<hash7>-centos-<el>-<arch>-devel   (Structured)
//	<hash40>[-crimson|-aarch64...]                  (BareHash)
//
// Matching is exact: hash lengths, the hex alphabet, EL versions and
// architectures are checked explicitly rather than through a pattern.
package tagname

import (
	"slices"
	"strings"
)

// Lengths of abbreviated and full build hashes.
const (
	ShortHashLen = 7
	FullHashLen  = 40
)

const (
	distroSegment = "centos"
	develSuffix   = "-devel"
)

// ELVersions lists the supported CentOS versions, in query order.
var ELVersions = []string{"7", "8", "9"}

// Arches lists the supported architectures, in query order.
var Arches = []string{"x86_64", "aarch64"}

// Markers are the known suffixes that may follow a bare full hash.
var Markers = []string{"crimson", "aarch64"}

// Structured is a tag name of the form
// <reference>-<hash7>-centos-<el>-<arch>-devel.
type Structured struct {
	// Reference is the branch or PR name. It may contain hyphens and may be empty.
	Reference string

	// ShortHash is the 7 character abbreviated build hash.
	ShortHash string

	// ELVersion is the CentOS major version ("7", "8" or "9").
	ELVersion string

	// Arch is the image architecture ("x86_64" or "aarch64").
	Arch string
}

// String reassembles the tag name.
func (s Structured) String() string {
	return strings.Join([]string{s.Reference, s.ShortHash, distroSegment, s.ELVersion, s.Arch}, "-") + develSuffix
}

// BareHash is a tag name that starts with a full 40 character build hash.
type BareHash struct {
	// FullHash is the 40 character build hash.
	FullHash string

	// Markers holds the recognized suffixes in the order they appear.
	Markers []string
}

// ParseStructured decomposes name as a structured tag name. The whole name
// must match; ok is false otherwise.
func ParseStructured(name string) (Structured, bool) {
	rest, found := strings.CutSuffix(name, develSuffix)
	if !found {
		return Structured{}, false
	}

	// Fields are peeled off right to left so the reference keeps its hyphens.
	rest, arch, found := cutLast(rest)
	if !found || !slices.Contains(Arches, arch) {
		return Structured{}, false
	}

	rest, el, found := cutLast(rest)
	if !found || !slices.Contains(ELVersions, el) {
		return Structured{}, false
	}

	rest, distro, found := cutLast(rest)
	if !found || distro != distroSegment {
		return Structured{}, false
	}

	ref, hash, found := cutLast(rest)
	if !found || !isHex(hash, ShortHashLen) {
		return Structured{}, false
	}

	return Structured{
		Reference: ref,
		ShortHash: hash,
		ELVersion: el,
		Arch:      arch,
	}, true
}

// ParseBareHash decomposes name as a tag that begins with a full hash.
// The hash must be followed by the end of the name or a hyphen, so a
// 41st hex digit is not a match. Unknown suffixes are tolerated but not
// recorded.
func ParseBareHash(name string) (BareHash, bool) {
	if len(name) < FullHashLen || !isHex(name[:FullHashLen], FullHashLen) {
		return BareHash{}, false
	}

	rest := name[FullHashLen:]
	if rest != "" && rest[0] != '-' {
		return BareHash{}, false
	}

	bh := BareHash{FullHash: name[:FullHashLen]}
	for rest != "" {
		var marker string
		marker, rest, _ = strings.Cut(rest[1:], "-")
		if !slices.Contains(Markers, marker) {
			break
		}
		bh.Markers = append(bh.Markers, marker)
		if rest != "" {
			rest = "-" + rest
		}
	}

	return bh, true
}

// ShortHash returns the first 7 characters of a full hash, or the whole
// string when it is shorter.
func ShortHash(hash string) string {
	if len(hash) < ShortHashLen {
		return hash
	}
	return hash[:ShortHashLen]
}

// cutLast splits s around its last hyphen.
func cutLast(s string) (before, after string, found bool) {
	i := strings.LastIndexByte(s, '-')
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// isHex reports whether s is exactly n lowercase hex digits.
func isHex(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := range len(s) {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
