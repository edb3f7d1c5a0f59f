package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// The coordinator tests fake out Sources so the baseline scan sees an empty
// project and later scans see the real file. That makes the first diff
// deterministic without racing against the Run goroutine.
func sourcesAfterBaseline(calls *int32, paths ...string) func() ([]string, error) {
	return func() ([]string, error) {
		if atomic.AddInt32(calls, 1) == 1 {
			return nil, nil
		}
		return paths, nil
	}
}

func TestCoordinator_BurstCoalescesIntoOneRebuild(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "style.css")
	require.NoError(t, os.WriteFile(file, []byte("v1"), 0o644))

	var calls int32
	rebuilds := make(chan Plan, 8)
	coord := &Coordinator{
		Sources:  sourcesAfterBaseline(&calls, file),
		Classify: func(changes []Change) Plan { return Plan{Stylesheets: true} },
		Rebuild: func(p Plan) error {
			rebuilds <- p
			return nil
		},
		Interval: 30 * time.Millisecond,
	}

	updates := make(chan string, 8)
	done := make(chan struct{})
	go func() {
		coord.Run(updates)
		close(done)
	}()

	updates <- file
	updates <- file
	updates <- file

	select {
	case plan := <-rebuilds:
		require.Equal(t, Plan{Stylesheets: true}, plan)
	case <-time.After(2 * time.Second):
		t.Fatal("no rebuild within deadline")
	}

	select {
	case plan := <-rebuilds:
		t.Fatalf("burst triggered a second rebuild: %+v", plan)
	case <-time.After(150 * time.Millisecond):
	}

	close(updates)
	<-done
}

func TestCoordinator_NoSignatureChange_NoRebuild(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "style.css")
	require.NoError(t, os.WriteFile(file, []byte("v1"), 0o644))

	rebuilds := make(chan Plan, 8)
	coord := &Coordinator{
		Sources:  func() ([]string, error) { return []string{file}, nil },
		Classify: func(changes []Change) Plan { return Plan{Stylesheets: true} },
		Rebuild: func(p Plan) error {
			rebuilds <- p
			return nil
		},
		Interval: 30 * time.Millisecond,
	}

	updates := make(chan string, 8)
	done := make(chan struct{})
	go func() {
		coord.Run(updates)
		close(done)
	}()

	// An event without an actual signature change, a no-op save for example.
	updates <- file

	select {
	case plan := <-rebuilds:
		t.Fatalf("unchanged project triggered a rebuild: %+v", plan)
	case <-time.After(200 * time.Millisecond):
	}

	close(updates)
	<-done
}

func TestCoordinator_ChangesDuringRebuild_OneFollowUp(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "style.css")
	require.NoError(t, os.WriteFile(file, []byte("v1"), 0o644))

	var calls int32
	rebuilds := make(chan Plan, 8)
	release := make(chan struct{})
	coord := &Coordinator{
		Sources:  sourcesAfterBaseline(&calls, file),
		Classify: func(changes []Change) Plan { return Plan{Stylesheets: true} },
		Rebuild: func(p Plan) error {
			rebuilds <- p
			<-release
			return nil
		},
		Interval: 30 * time.Millisecond,
	}

	updates := make(chan string, 8)
	done := make(chan struct{})
	go func() {
		coord.Run(updates)
		close(done)
	}()

	updates <- file

	select {
	case <-rebuilds:
	case <-time.After(2 * time.Second):
		t.Fatal("no first rebuild within deadline")
	}

	// The file changes again while the first rebuild is still underway and
	// several notifications pile up. They must collapse into one follow-up.
	require.NoError(t, os.WriteFile(file, []byte("longer v2"), 0o644))
	updates <- file
	updates <- file
	updates <- file
	release <- struct{}{}

	select {
	case plan := <-rebuilds:
		require.Equal(t, Plan{Stylesheets: true}, plan)
	case <-time.After(2 * time.Second):
		t.Fatal("no follow-up rebuild within deadline")
	}
	release <- struct{}{}

	select {
	case plan := <-rebuilds:
		t.Fatalf("queued notifications triggered a third rebuild: %+v", plan)
	case <-time.After(150 * time.Millisecond):
	}

	close(updates)
	<-done
}

func TestCoordinator_RebuildError_LoopKeepsGoing(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "style.css")
	require.NoError(t, os.WriteFile(file, []byte("v1"), 0o644))

	var calls int32
	rebuilds := make(chan Plan, 8)
	coord := &Coordinator{
		Sources:  sourcesAfterBaseline(&calls, file),
		Classify: func(changes []Change) Plan { return Plan{Stylesheets: true} },
		Rebuild: func(p Plan) error {
			rebuilds <- p
			return os.ErrPermission
		},
		Interval: 30 * time.Millisecond,
	}

	updates := make(chan string, 8)
	done := make(chan struct{})
	go func() {
		coord.Run(updates)
		close(done)
	}()

	updates <- file
	select {
	case <-rebuilds:
	case <-time.After(2 * time.Second):
		t.Fatal("no rebuild within deadline")
	}

	// A later change still reaches Rebuild after the earlier failure.
	require.NoError(t, os.WriteFile(file, []byte("longer v2"), 0o644))
	updates <- file
	select {
	case <-rebuilds:
	case <-time.After(2 * time.Second):
		t.Fatal("rebuild loop stopped after an error")
	}

	close(updates)
	<-done
}
