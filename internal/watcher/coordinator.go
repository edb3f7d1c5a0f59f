package watcher

import (
	"time"

	"github.com/marigold-ssg/marigold/internal/mlog"
)

// DebounceInterval is how long the coordinator keeps collecting change
// notifications after the first one before starting a rebuild. Editors often
// write a file several times in quick succession.
const DebounceInterval = 500 * time.Millisecond

// Coordinator turns raw change notifications into rebuild runs. It debounces
// bursts of events, diffs the project's file signatures against the state of
// the last completed run and hands the resulting plan to Rebuild.
// Notifications arriving while a rebuild is underway queue up in the channel
// and collapse into a single follow-up run.
type Coordinator struct {
	// Sources lists the files a build would read right now.
	Sources func() ([]string, error)
	// Classify folds a batch of changes into a plan.
	Classify func([]Change) Plan
	// Rebuild applies one plan. Errors are logged and the loop keeps going,
	// so the last good output stays served.
	Rebuild func(Plan) error
	// Interval overrides the debounce window. Zero means DebounceInterval.
	Interval time.Duration

	last Snapshot
}

// Run consumes updates until the channel closes. The baseline snapshot is
// taken when Run starts, so call it right after the initial build.
func (c *Coordinator) Run(updates <-chan string) {
	interval := c.Interval
	if interval == 0 {
		interval = DebounceInterval
	}
	c.last = c.snapshot()

	for range updates {
		settle := time.After(interval)
	drain:
		for {
			select {
			case _, ok := <-updates:
				if !ok {
					break drain
				}
			case <-settle:
				break drain
			}
		}

		next := c.snapshot()
		changes := c.last.Diff(next)
		if len(changes) == 0 {
			continue
		}
		c.last = next

		plan := c.Classify(changes)
		if plan.Empty() {
			continue
		}
		mlog.Info("msg", "source changes detected", "files", len(changes))
		if err := c.Rebuild(plan); err != nil {
			mlog.Warn("msg", "rebuild failed, keeping last good site", "err", err)
		}
	}
}

// snapshot lists and signs the current sources. If the project cannot even be
// scanned the previous snapshot is kept; the next event retries.
func (c *Coordinator) snapshot() Snapshot {
	paths, err := c.Sources()
	if err != nil {
		mlog.Warn("msg", "cannot scan project", "err", err)
		return c.last
	}
	return TakeSnapshot(paths)
}
