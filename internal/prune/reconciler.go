package prune

import (
	"context"

	"github.com/ceph/quay-pruner/internal/registry"
	"github.com/ceph/quay-pruner/internal/shaman"
	"github.com/ceph/quay-pruner/internal/slogger"
	"github.com/ceph/quay-pruner/internal/tagname"
)

// Plan is the outcome of both classification passes over one tag snapshot.
type Plan struct {
	// Candidates are the tag names to delete, sorted.
	Candidates []string

	// ShortHashes are the short hashes of builds found gone in the first
	// pass, in discovery order. Tags starting with one are deleted in the
	// second pass.
	ShortHashes []string
}

// Reconciler classifies registry tags against shaman. It owns the hash
// caches for one run, so it must not be shared between goroutines.
type Reconciler struct {
	searcher    shaman.Searcher
	shortHashes *hashSet
	fullHashes  *hashSet
}

// NewReconciler creates a Reconciler with empty caches.
func NewReconciler(searcher shaman.Searcher) *Reconciler {
	return &Reconciler{
		searcher:    searcher,
		shortHashes: newHashSet(),
		fullHashes:  newHashSet(),
	}
}

// Plan runs both passes over tags and returns the deletion candidates.
// Tags are never modified. Query failures always keep the tag.
func (r *Reconciler) Plan(ctx context.Context, tags []registry.Tag) Plan {
	candidates := newNameSet()
	worklist := newNameSet()

	r.classify(ctx, tags, candidates, worklist)
	r.resolveOrphans(ctx, tags, candidates, worklist)

	return Plan{
		Candidates:  candidates.Sorted(),
		ShortHashes: worklist.Ordered(),
	}
}

// classify is the first pass: structured tags whose reference no longer
// has a build with the tag's short hash are marked, along with a reference
// alias that still points at the same image.
func (r *Reconciler) classify(ctx context.Context, tags []registry.Tag, candidates, worklist *nameSet) {
	log := slogger.L(ctx)

	for _, tag := range tags {
		if tag.Expired() {
			log.Info("skipping deleted-or-overwritten tag", "tag", tag.Name)
			continue
		}

		parsed, ok := tagname.ParseStructured(tag.Name)
		if !ok {
			log.Debug("skipping tag not in ref-shortsha1-el-arch form", "tag", tag.Name)
			continue
		}

		if r.referencePresent(ctx, parsed) {
			log.Info("skipping tag present in shaman", "tag", tag.Name)
			continue
		}

		log.Info("marking tag for deletion", "tag", tag.Name)
		candidates.Add(tag.Name)

		if parsed.Reference != "" {
			// The reference tag may since have been pushed for a newer
			// build; only an alias of this exact image goes with it.
			if alias, ok := findAlias(tags, tag, parsed.Reference); ok {
				log.Info("marking reference tag for deletion", "tag", alias, "image", tag.ImageID)
				candidates.Add(alias)
			} else {
				log.Info("keeping reference tag: not an alias of this image", "ref", parsed.Reference, "image", tag.ImageID)
			}
		}

		if worklist.Add(parsed.ShortHash) {
			log.Info("marking short hash for second-pass deletion", "sha1", parsed.ShortHash)
		}
	}
}

// resolveOrphans is the second pass: tags starting with a short hash from
// the first pass are marked without further checks, and full-hash tags
// whose hash shaman no longer knows are marked as orphans.
func (r *Reconciler) resolveOrphans(ctx context.Context, tags []registry.Tag, candidates, worklist *nameSet) {
	log := slogger.L(ctx)

	for _, tag := range tags {
		if tag.Expired() {
			continue
		}

		if len(tag.Name) >= tagname.ShortHashLen && worklist.Has(tag.Name[:tagname.ShortHashLen]) {
			log.Info("marking tag for deletion: matches short hash", "tag", tag.Name, "sha1", tag.Name[:tagname.ShortHashLen])
			candidates.Add(tag.Name)
			continue
		}

		bare, ok := tagname.ParseBareHash(tag.Name)
		if !ok {
			continue
		}

		if r.hashPresent(ctx, bare.FullHash) {
			log.Info("skipping tag present in shaman", "tag", tag.Name)
			continue
		}

		log.Info("marking tag for deletion: orphaned sha1 tag", "tag", tag.Name)
		candidates.Add(tag.Name)
	}
}

// referencePresent reports whether shaman has a ready build of the tag's
// reference whose hash starts with the tag's short hash. A failed query
// counts as present and is not cached.
func (r *Reconciler) referencePresent(ctx context.Context, parsed tagname.Structured) bool {
	log := slogger.L(ctx)

	if r.shortHashes.Has(parsed.ShortHash) {
		log.Info("found short hash in cache", "sha1", parsed.ShortHash)
		return true
	}

	builds, err := r.searcher.Search(ctx, shaman.ByReference(parsed.Reference, parsed.ELVersion))
	if err != nil {
		log.Error("shaman request failed, assuming build present", "ref", parsed.Reference, "err", err)
		return true
	}

	for _, build := range builds {
		if tagname.ShortHash(build.SHA1) == parsed.ShortHash {
			log.Info("found reference in shaman", "ref", parsed.Reference, "sha1", build.SHA1)
			r.shortHashes.Add(parsed.ShortHash)
			return true
		}
	}
	return false
}

// hashPresent reports whether shaman has a ready build with exactly this
// hash. A failed query counts as present and is not cached.
func (r *Reconciler) hashPresent(ctx context.Context, hash string) bool {
	log := slogger.L(ctx)

	if r.fullHashes.Has(hash) {
		log.Info("found sha1 in cache", "sha1", hash)
		return true
	}

	builds, err := r.searcher.Search(ctx, shaman.ByHash(hash))
	if err != nil {
		log.Error("shaman request failed, assuming build present", "sha1", hash, "err", err)
		return true
	}

	for _, build := range builds {
		if build.SHA1 == hash {
			log.Info("found sha1 in shaman", "sha1", hash)
			r.fullHashes.Add(hash)
			return true
		}
	}
	return false
}

// findAlias looks for a live, single-image tag named ref that shares the
// image of tag.
func findAlias(tags []registry.Tag, tag registry.Tag, ref string) (string, bool) {
	if tag.ImageID == "" {
		return "", false
	}
	for _, other := range tags {
		if other.Name != ref || other.Name == tag.Name {
			continue
		}
		if other.Expired() || other.IsManifestList {
			continue
		}
		if other.ImageID == tag.ImageID {
			return other.Name, true
		}
	}
	return "", false
}
