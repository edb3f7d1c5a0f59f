// Package server hosts the built site over HTTP for local preview. With auto
// rebuild enabled it watches the project, applies the narrowest rebuild that
// covers each batch of changes and live-reloads connected browsers.
package server

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/marigold-ssg/marigold/internal/builder"
	"github.com/marigold-ssg/marigold/internal/mlog"
	"github.com/marigold-ssg/marigold/internal/site"
	"github.com/marigold-ssg/marigold/internal/watcher"

	_ "embed"
)

//go:embed livereload.html
var liveReloadScript []byte

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 10 * time.Second,
	Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
		w.WriteHeader(500)
	},
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Options configure one preview server.
type Options struct {
	// Address is the host:port to listen on.
	Address string
	// IncludeDrafts pulls _drafts into the built site.
	IncludeDrafts bool
	// AutoRebuild watches the project and rebuilds on change.
	AutoRebuild bool
	// SkipImages leaves image outputs as the initial build produced them;
	// rebuilds never regenerate them.
	SkipImages bool
}

type Server struct {
	projectDir   string
	opts         Options
	reloadBroker *Broker
	buildtool    *builder.Builder

	// mu guards the output tree: rebuild writes take it exclusively, request
	// handlers share it. Requests never observe a half-swapped tree.
	mu sync.RWMutex
}

func NewServer(projectDir string, opts Options) *Server {
	return &Server{
		projectDir:   projectDir,
		opts:         opts,
		reloadBroker: newBroker(),
		buildtool: builder.New(projectDir, builder.Options{
			IncludeDrafts: opts.IncludeDrafts,
		}),
	}
}

func (s *Server) TriggerReload() {
	s.reloadBroker.Publish(struct{}{})
}

// Start builds the site, then serves it until the process ends. A failing
// initial build aborts; later rebuild failures only log and the last good
// output stays up.
func (s *Server) Start() error {
	if err := s.buildtool.Build(false); err != nil {
		return err
	}
	defer s.buildtool.Close()

	layout := s.buildtool.Site().Layout

	go s.reloadBroker.Start()
	defer s.reloadBroker.Stop()

	if s.opts.AutoRebuild {
		updates, stop, err := watcher.StartWatcher(layout.Root, func(p string) bool {
			return skipPath(layout, p)
		})
		if err != nil {
			return err
		}
		defer stop()

		coord := &watcher.Coordinator{
			Sources: func() ([]string, error) {
				res, err := site.Scan(layout)
				if err != nil {
					return nil, err
				}
				return res.Paths(s.opts.IncludeDrafts), nil
			},
			Classify: func(changes []watcher.Change) watcher.Plan {
				return watcher.Classify(layout, changes)
			},
			Rebuild: s.applyPlan,
		}
		go coord.Run(updates)
	}

	r := mux.NewRouter()
	r.PathPrefix("/").HandlerFunc(s.fileServer(layout.Build(), "/404.html"))

	// Plain println so the address can be copied or opened from the terminal.
	fmt.Println("Listening on http://" + s.opts.Address)

	return http.ListenAndServe(s.opts.Address, r)
}

// skipPath filters watch events: the output trees and hidden directories
// never feed a build.
func skipPath(layout site.Layout, p string) bool {
	rel, err := filepath.Rel(layout.Root, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") {
			return true
		}
		if part == site.BuildDir || strings.HasPrefix(part, site.BuildDir+".") {
			return true
		}
	}
	return false
}

// applyPlan runs the rebuild steps of one plan, narrowest first. Targeted
// steps write into the live tree under the write lock; a full rebuild stages
// outside the lock and only takes it for the swap.
func (s *Server) applyPlan(plan watcher.Plan) error {
	if plan.Full {
		return s.fullRebuild()
	}

	if len(plan.Templates) > 0 {
		mlog.Debug("server", "rebuild", "msg", "refreshing", "scope", "templates")
		s.mu.Lock()
		err := s.buildtool.RebuildTemplates(plan.Templates)
		s.mu.Unlock()
		if err != nil {
			return err
		}
	}

	steps := []struct {
		enabled bool
		name    string
		run     func() error
	}{
		{plan.Stylesheets, "stylesheets", s.buildtool.RebuildStylesheets},
		{plan.Scripts, "scripts", s.buildtool.RebuildScripts},
		{plan.Assets, "assets", s.buildtool.RebuildAssets},
		{plan.Images && !s.opts.SkipImages, "images", s.buildtool.RebuildImages},
	}
	for _, step := range steps {
		if !step.enabled {
			continue
		}
		mlog.Debug("server", "rebuild", "msg", "refreshing", "scope", step.name)
		s.mu.Lock()
		err := step.run()
		s.mu.Unlock()
		if err != nil {
			return err
		}
	}

	s.TriggerReload()
	return nil
}

func (s *Server) fullRebuild() error {
	commit, err := s.buildtool.Stage(s.opts.SkipImages)
	if err != nil {
		return err
	}
	s.mu.Lock()
	err = commit()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.TriggerReload()
	return nil
}

// fileServer serves the output tree. Extensionless URLs fall back to the
// ".html" output, directories to their index.html, and unknown paths to the
// site's 404 page when it has one.
func (s *Server) fileServer(dir string, override404 string) func(http.ResponseWriter, *http.Request) {
	if override404 != "" && !strings.HasPrefix(override404, "/") {
		override404 = "/" + override404
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/__internal/livereload" {
			s.livereloadHandler(w, r)
			return
		}

		s.mu.RLock()
		defer s.mu.RUnlock()

	begin:
		upath := r.URL.Path
		if !strings.HasPrefix(upath, "/") {
			upath = "/" + upath
			r.URL.Path = upath
		}

		const indexPage = "index.html"

		fullName := filepath.Join(dir, filepath.FromSlash(path.Clean(upath)))
		if strings.HasSuffix(upath, "/") {
			fullName = filepath.Join(fullName, indexPage)
		}

		info, err := os.Stat(fullName)

		valid := false
		if err != nil || info.IsDir() {
			if err != nil && !os.IsNotExist(err) {
				w.WriteHeader(500)
				w.Write([]byte("Internal error: can't open file: " + err.Error()))
				return
			}

			info, err = os.Stat(fullName + ".html")
			if err != nil || info.IsDir() {
				if err != nil && !os.IsNotExist(err) {
					w.WriteHeader(500)
					w.Write([]byte("Internal error: can't open file: " + err.Error()))
					return
				}

				info, err := os.Stat(filepath.Join(fullName, indexPage))
				if err != nil || info.IsDir() {
					if err != nil && !os.IsNotExist(err) {
						w.WriteHeader(500)
						w.Write([]byte("Internal error: can't open file: " + err.Error()))
						return
					}
				} else {
					fullName = filepath.Join(fullName, indexPage)
					valid = true
				}
			} else {
				fullName = fullName + ".html"
				valid = true
			}
		} else {
			valid = true
		}

		if !valid {
			if override404 != "" && r.URL.Path != override404 {
				r.URL.Path = override404
				goto begin
			}
			w.WriteHeader(404)
			w.Write([]byte("404 page not found"))
			return
		}

		content, err := os.Open(fullName)
		if err != nil {
			w.WriteHeader(500)
			w.Write([]byte("Internal error: can't open file"))
			return
		}
		defer content.Close()

		ctype := mime.TypeByExtension(filepath.Ext(fullName))
		if ctype == "" {
			// Read a chunk to decide between utf-8 text and binary.
			var buf [512]byte
			n, _ := io.ReadFull(content, buf[:])
			ctype = http.DetectContentType(buf[:n])
			if _, err := content.Seek(0, io.SeekStart); err != nil {
				w.WriteHeader(500)
				w.Write([]byte("Internal error: can't seek file: " + err.Error()))
				return
			}
		}
		w.Header().Set("Content-Type", ctype)
		io.Copy(w, content)
		if strings.HasPrefix(ctype, "text/html") {
			if _, err := w.Write(liveReloadScript); err != nil {
				mlog.Error("msg", "could not inject live reload", "err", err)
			}
		}
	}
}

func (s *Server) livereloadHandler(w http.ResponseWriter, r *http.Request) {
	mlog.Debug("server", "livereload", "msg", "websocket established")

	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		w.WriteHeader(500)
		w.Write([]byte(err.Error()))
		return
	}
	defer c.Close()

	waitCh := s.reloadBroker.Subscribe()
	defer s.reloadBroker.Unsubscribe(waitCh)

	<-waitCh
	if err := c.WriteMessage(websocket.TextMessage, []byte("reload")); err != nil {
		mlog.Warn("msg", "reload socket error", "err", err)
	}
}
