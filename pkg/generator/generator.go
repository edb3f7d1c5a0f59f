// Package generator is the embeddable face of marigold: everything the CLI
// does, callable from Go.
package generator

import (
	"github.com/marigold-ssg/marigold/internal/builder"
	"github.com/marigold-ssg/marigold/internal/server"
)

// Options mirror the CLI flags that shape a build.
type Options struct {
	// IncludeDrafts pulls _drafts into the post list.
	IncludeDrafts bool
	// SkipImages skips image resizing and optimization, carrying over the
	// image outputs of the previous build instead.
	SkipImages bool
}

// Build runs one full build of the project at dir into its _site directory.
func Build(dir string, opts Options) error {
	b := builder.New(dir, builder.Options{IncludeDrafts: opts.IncludeDrafts})
	defer b.Close()
	return b.Build(opts.SkipImages)
}

// Clean removes the build output of the project at dir.
func Clean(dir string) error {
	return builder.New(dir, builder.Options{}).Clean()
}

// Init scaffolds a minimal project at dir. Without force an existing path is
// refused.
func Init(dir string, force bool) error {
	return builder.Scaffold(dir, force)
}

// ServeOptions mirror the CLI serve flags.
type ServeOptions struct {
	// Address is the host:port to listen on; empty means localhost:4000.
	Address       string
	IncludeDrafts bool
	AutoRebuild   bool
	SkipImages    bool
}

// Serve builds the project at dir and serves it over HTTP until the process
// ends or the listener fails.
func Serve(dir string, opts ServeOptions) error {
	if opts.Address == "" {
		opts.Address = "localhost:4000"
	}
	s := server.NewServer(dir, server.Options{
		Address:       opts.Address,
		IncludeDrafts: opts.IncludeDrafts,
		AutoRebuild:   opts.AutoRebuild,
		SkipImages:    opts.SkipImages,
	})
	return s.Start()
}
