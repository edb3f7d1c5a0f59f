package watcher

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/marigold-ssg/marigold/internal/mlog"
)

// StartWatcher watches the project tree below root and emits the path of
// every relevant file event. Directories created after the watch begins are
// picked up too, so files inside a brand new collection directory are seen.
// The returned stop function releases the underlying watcher and closes the
// channel.
func StartWatcher(root string, skip func(path string) bool) (<-chan string, func(), error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}

	events := make(chan string, 128)

	go func() {
		defer close(events)
		for {
			select {
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if skip != nil && skip(event.Name) {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if event.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						if err := watchTree(fsw, event.Name, skip); err != nil {
							mlog.Warn("msg", "cannot watch new directory", "path", event.Name, "err", err)
						}
					}
				}
				mlog.Debug("watcher", "fs", "msg", "change", "path", event.Name, "op", event.Op.String())
				events <- event.Name
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				mlog.Warn("msg", "watch error", "err", err)
			}
		}
	}()

	if err := watchTree(fsw, root, skip); err != nil {
		fsw.Close()
		return nil, nil, err
	}
	return events, func() { fsw.Close() }, nil
}

// watchTree registers dir and every directory below it.
func watchTree(fsw *fsnotify.Watcher, dir string, skip func(string) bool) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if skip != nil && skip(path) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}
