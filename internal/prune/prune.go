// Package prune removes CI image tags whose builds shaman no longer knows.
//
// A run takes one snapshot of the repository's tags and makes every
// decision against it:
//
//  1. classify: structured tags (<ref>-<sha7>-centos-<el>-<arch>-devel)
//     are checked against shaman by reference; gone builds are marked,
//     together with a reference tag aliasing the same image.
//  2. resolve orphans: tags starting with a short hash marked in step 1
//     are marked outright; full-hash tags unknown to shaman are marked.
//  3. execute: marked tags are deleted in sorted order, or only reported
//     in dry-run mode.
//
// Failed shaman queries always keep the tag. Marks are never withdrawn.
package prune

import (
	"context"
	"fmt"
	"io"

	"github.com/ceph/quay-pruner/internal/registry"
	"github.com/ceph/quay-pruner/internal/shaman"
	"github.com/ceph/quay-pruner/internal/slogger"
)

// Options configures a Pruner.
type Options struct {
	// DryRun reports deletions instead of issuing them.
	DryRun bool

	// Out receives one line per deleted, or would-be deleted, tag.
	Out io.Writer
}

// Pruner runs the list, classify, delete pipeline.
type Pruner struct {
	registry registry.Client
	searcher shaman.Searcher
	opts     Options
}

// New creates a Pruner.
func New(reg registry.Client, searcher shaman.Searcher, opts Options) *Pruner {
	return &Pruner{registry: reg, searcher: searcher, opts: opts}
}

// Run executes one pruning pass. A failed tag listing is reported and the
// run continues with the tags fetched before the failure. The only error
// returned is the context's, after the run has finished.
func (p *Pruner) Run(ctx context.Context) (*Report, error) {
	log := slogger.L(ctx)

	tags, err := p.registry.ListTags(ctx)
	if err != nil {
		log.Error("quay tag listing incomplete, continuing with fetched tags", "fetched", len(tags), "err", err)
	}
	log.Info("fetched tags", "count", len(tags))

	plan := NewReconciler(p.searcher).Plan(ctx, tags)
	log.Info("deleting tags", "tags", plan.Candidates)

	report := NewExecutor(p.registry, p.opts.Out, p.opts.DryRun).Execute(ctx, plan.Candidates)

	// An interrupted run has kept everything it could not check; say so.
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run interrupted: %w", err)
	}
	return report, nil
}
