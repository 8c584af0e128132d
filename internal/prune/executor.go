package prune

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/ceph/quay-pruner/internal/slogger"
)

// TagDeleter deletes a single registry tag.
type TagDeleter interface {
	DeleteTag(ctx context.Context, name string) error
}

// Report summarizes what the executor did.
type Report struct {
	// DryRun is true when no deletions were issued.
	DryRun bool

	// Planned lists every candidate, sorted.
	Planned []string

	// Deleted lists tags removed from the registry.
	Deleted []string

	// Failed maps tags that could not be deleted to the error.
	Failed map[string]error
}

// Executor deletes candidate tags one at a time.
type Executor struct {
	deleter TagDeleter
	out     io.Writer
	dryRun  bool
}

// NewExecutor creates an Executor that reports each action to out.
// In dry-run mode deleter is never called and may be nil.
func NewExecutor(deleter TagDeleter, out io.Writer, dryRun bool) *Executor {
	if out == nil {
		out = io.Discard
	}
	return &Executor{deleter: deleter, out: out, dryRun: dryRun}
}

// Execute deletes names in lexicographic order. A failed deletion is
// reported and does not stop the remaining ones.
func (e *Executor) Execute(ctx context.Context, names []string) *Report {
	log := slogger.L(ctx)

	sorted := slices.Clone(names)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	report := &Report{
		DryRun:  e.dryRun,
		Planned: sorted,
		Failed:  make(map[string]error),
	}

	for _, name := range sorted {
		if e.dryRun {
			fmt.Fprintln(e.out, "Would delete from quay:", name)
			continue
		}

		if err := e.deleter.DeleteTag(ctx, name); err != nil {
			log.Error("problem deleting tag", "tag", name, "err", err)
			report.Failed[name] = err
			continue
		}

		fmt.Fprintln(e.out, "Deleted", name)
		report.Deleted = append(report.Deleted, name)
	}

	return report
}
