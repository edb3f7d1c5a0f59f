package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/davecgh/go-spew/spew"

	"github.com/marigold-ssg/marigold/internal/builder"
	"github.com/marigold-ssg/marigold/internal/mlog"
	"github.com/marigold-ssg/marigold/internal/server"
)

// version is stamped by the release build.
var version = "devel"

var CLI struct {
	Init  CommandInit  `cmd:"" help:"Initialize a basic site."`
	Build CommandBuild `cmd:"" aliases:"b" help:"Build the static site."`
	Clean CommandClean `cmd:"" help:"Remove the local build of the static site."`
	Serve CommandServe `cmd:"" aliases:"s" help:"Build the site and serve it locally."`

	LogJSON bool             `help:"Log in JSON instead of logfmt."`
	Version kong.VersionFlag `help:"Print the version and quit."`
}

type CommandInit struct {
	Path  string `arg:"" optional:"" default:"." help:"The directory of the project."`
	Force bool   `short:"f" help:"Scaffold even if the directory exists."`

	Verbose int `short:"v" help:"Print verbose output." type:"counter"`
}

type CommandBuild struct {
	Path   string `arg:"" optional:"" default:"." type:"existingdir" help:"The directory of the project."`
	Drafts bool   `short:"d" help:"Include drafts in the build."`

	Verbose int `short:"v" help:"Print verbose output." type:"counter"`
}

type CommandClean struct {
	Path string `arg:"" optional:"" default:"." type:"existingdir" help:"The directory of the project."`

	Verbose int `short:"v" help:"Print verbose output." type:"counter"`
}

type CommandServe struct {
	Path                string `arg:"" optional:"" default:"." type:"existingdir" help:"The directory of the project."`
	Drafts              bool   `short:"d" help:"Include drafts in the build."`
	Address             string `short:"a" default:"localhost:4000" help:"Address to listen on."`
	AutoRebuild         bool   `short:"r" help:"Rebuild when project files change."`
	DisableImageRebuild bool   `short:"I" help:"Never regenerate image outputs after the initial build."`

	Verbose int `short:"v" help:"Print verbose output." type:"counter"`
}

func main() {
	ctx := kong.Parse(&CLI, kong.UsageOnError(), kong.Vars{"version": version})

	if CLI.LogJSON {
		mlog.UseJSON()
	}

	if err := ctx.Run(ctx); err != nil {
		mlog.Fatal("msg", "command failed", "err", err)
	}
}

func applyVerbose(v int) {
	switch v {
	case 0:
		mlog.ApplyLogLevel("info")
	case 1:
		mlog.ApplyLogLevel("debug")
	default:
		mlog.ApplyLogLevel("all")
	}
}

func (r *CommandInit) Run(ctx *kong.Context) error {
	applyVerbose(r.Verbose)

	return builder.Scaffold(r.Path, r.Force)
}

func (r *CommandBuild) Run(ctx *kong.Context) error {
	applyVerbose(r.Verbose)

	buildtool := builder.New(r.Path, builder.Options{IncludeDrafts: r.Drafts})
	defer buildtool.Close()

	if err := buildtool.Build(false); err != nil {
		return err
	}
	if r.Verbose >= 2 {
		spew.Fdump(os.Stderr, buildtool.Site().Vars())
	}
	return nil
}

func (r *CommandClean) Run(ctx *kong.Context) error {
	applyVerbose(r.Verbose)

	return builder.New(r.Path, builder.Options{}).Clean()
}

func (r *CommandServe) Run(ctx *kong.Context) error {
	applyVerbose(r.Verbose)

	serv := server.NewServer(r.Path, server.Options{
		Address:       r.Address,
		IncludeDrafts: r.Drafts,
		AutoRebuild:   r.AutoRebuild,
		SkipImages:    r.DisableImageRebuild,
	})
	return serv.Start()
}
