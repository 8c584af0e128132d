// Package names labels pruning runs so their log lines can be told apart
// when several cron invocations write to the same sink.
package names

import (
	"time"

	"github.com/docker/docker/pkg/namesgenerator"
)

// runTimeLayout is the UTC timestamp prefix of a run label.
const runTimeLayout = "20060102-150405"

// RunID returns a label for a run started at now, e.g.
// "20261019-153000-focused_turing".
func RunID(now time.Time) string {
	return now.UTC().Format(runTimeLayout) + "-" + namesgenerator.GetRandomName(0)
}
