package watcher

import (
	"os"
	"sort"
)

// State describes how a file moved between two snapshots.
type State int

const (
	Unchanged State = iota
	Changed
	Deleted
	New
)

func (s State) String() string {
	switch s {
	case Changed:
		return "changed"
	case Deleted:
		return "deleted"
	case New:
		return "new"
	}
	return "unchanged"
}

// Signature identifies one version of a file. Modification time plus size is
// cheap to compute and precise enough for an edit and save loop.
type Signature struct {
	ModTime int64
	Size    int64
}

// Snapshot maps source paths to their signature at one point in time.
type Snapshot map[string]Signature

// TakeSnapshot stats every path and records its signature. Paths that cannot
// be stat'd are left out, so the next diff reports them as deleted.
func TakeSnapshot(paths []string) Snapshot {
	snap := make(Snapshot, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		snap[p] = Signature{ModTime: info.ModTime().UnixNano(), Size: info.Size()}
	}
	return snap
}

// Change is one file whose state differs between two snapshots.
type Change struct {
	Path  string
	State State
}

// Diff returns every path that is not Unchanged between s and next, sorted by
// path so batches are deterministic.
func (s Snapshot) Diff(next Snapshot) []Change {
	var changes []Change
	for p, sig := range s {
		if nsig, ok := next[p]; !ok {
			changes = append(changes, Change{Path: p, State: Deleted})
		} else if nsig != sig {
			changes = append(changes, Change{Path: p, State: Changed})
		}
	}
	for p := range next {
		if _, ok := s[p]; !ok {
			changes = append(changes, Change{Path: p, State: New})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes
}
