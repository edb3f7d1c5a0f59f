// Package builder orchestrates the build pipeline: load the site model,
// render every entity, process stylesheets, scripts, assets and images, and
// write the output tree. Full builds go through a staging directory that is
// swapped in atomically, so a failed build never damages the previous output.
package builder

import (
	"os"
	"sort"
	"time"

	"github.com/marigold-ssg/marigold/internal/mlog"
	"github.com/marigold-ssg/marigold/internal/render"
	"github.com/marigold-ssg/marigold/internal/site"
)

// Options configure a Builder for its lifetime. The zero value builds the
// published site with the default collaborators.
type Options struct {
	// IncludeDrafts pulls _drafts into the post list.
	IncludeDrafts bool

	// Stylesheets and Images override the default collaborators, mainly so
	// tests can run without a Dart Sass binary or image decoding.
	Stylesheets render.StylesheetCompiler
	Images      render.ImageProcessor
}

// Builder builds one project. It can be reused across passes; every pass
// reloads the site model from disk.
type Builder struct {
	ProjectDir string
	Opts       Options

	layout    site.Layout
	site      *site.Site
	templates *render.Templates
	markdown  *render.Markdown
	sass      render.StylesheetCompiler
	images    render.ImageProcessor
	filter    render.OutputFilter

	// deps maps template names to the entity source files referencing them,
	// through front matter or through a body include.
	deps map[string][]string
}

func New(projectDir string, opts Options) *Builder {
	b := &Builder{ProjectDir: projectDir, Opts: opts}
	b.images = opts.Images
	if b.images == nil {
		b.images = render.Resizer{}
	}
	return b
}

// Build runs one full staged build and activates it.
func (b *Builder) Build(skipImages bool) error {
	commit, err := b.Stage(skipImages)
	if err != nil {
		return err
	}
	return commit()
}

// Stage runs a full build into a staging directory next to the output
// directory and returns the commit that swaps it live. Until commit runs, the
// previous output stays untouched; on error the staging directory is removed.
func (b *Builder) Stage(skipImages bool) (func() error, error) {
	start := time.Now()
	mlog.Info("msg", "build started", "path", b.ProjectDir)

	if err := b.load(); err != nil {
		return nil, err
	}

	stage := b.layout.Build() + ".stage"
	if err := os.RemoveAll(stage); err != nil {
		return nil, &site.BuildError{Path: stage, Msg: "cannot clear staging directory", Err: err}
	}
	if err := os.MkdirAll(stage, 0o755); err != nil {
		return nil, &site.BuildError{Path: stage, Msg: "cannot create staging directory", Err: err}
	}

	if err := b.buildInto(stage, skipImages); err != nil {
		os.RemoveAll(stage)
		return nil, err
	}

	commit := func() error {
		if err := swapBuildDir(b.layout.Build(), stage); err != nil {
			return err
		}
		mlog.Info("msg", "build finished", "path", b.layout.Build(),
			"entities", b.site.Entities(), "duration", time.Since(start).String())
		return nil
	}
	return commit, nil
}

func (b *Builder) buildInto(dst string, skipImages bool) error {
	if err := b.renderPages(dst, nil); err != nil {
		return err
	}
	if err := b.buildStylesheets(dst, b.site.Resources); err != nil {
		return err
	}
	if err := b.buildScripts(dst, b.site.Resources); err != nil {
		return err
	}
	if err := b.buildAssets(dst, b.site.Resources); err != nil {
		return err
	}
	if skipImages {
		// Carry the previous pass's image outputs forward, so disabling
		// image rebuilds refreshes everything else without losing them.
		return carryImages(b.layout.Build(), dst)
	}
	return b.buildImages(dst, b.site.Resources)
}

// load assembles the site model and the collaborators that depend on its
// configuration.
func (b *Builder) load() error {
	s, err := site.Load(b.ProjectDir, site.LoadOptions{IncludeDrafts: b.Opts.IncludeDrafts})
	if err != nil {
		return err
	}
	b.site = s
	b.layout = s.Layout

	md, err := render.NewMarkdown(s.Config.PygmentsStyle)
	if err != nil {
		return &site.ConfigurationError{Path: s.Config.Path, Msg: "invalid 'pygments_style'", Err: err}
	}
	b.markdown = md

	files := make([]render.File, 0, len(s.Resources.Templates))
	for _, res := range s.Resources.Templates {
		raw, err := os.ReadFile(res.Path)
		if err != nil {
			return &site.BuildError{Path: res.Path, Msg: "cannot read template", Err: err}
		}
		files = append(files, render.File{
			Name:   res.Name(),
			Path:   res.Path,
			Source: string(raw),
		})
	}
	templates, err := render.LoadTemplates(files)
	if err != nil {
		return &site.BuildError{Msg: "template loading failed", Err: err}
	}
	b.templates = templates

	if b.sass == nil {
		b.sass = b.Opts.Stylesheets
		if b.sass == nil {
			b.sass = render.NewDartSass(b.layout.Stylesheets())
		}
	}

	if s.Config.Minify {
		b.filter = render.NewMinifier()
	} else {
		b.filter = render.Passthrough{}
	}

	b.collectDeps()
	return nil
}

// collectDeps records which entity source files reference which templates,
// either as their layout or through a body include.
func (b *Builder) collectDeps() {
	b.deps = map[string][]string{}
	for _, e := range siteEntities(b.site) {
		b.deps[e.template] = append(b.deps[e.template], e.source)
		for _, name := range render.SourceRefs(e.content) {
			b.deps[name] = append(b.deps[name], e.source)
		}
	}
}

// AffectedSources resolves a changed template file to the entity source files
// that must re-render: everything whose layout or body reaches one of the
// template names the file contributes.
func (b *Builder) AffectedSources(templateName string) []string {
	if b.templates == nil {
		return nil
	}

	seen := map[string]struct{}{}
	var out []string
	for _, name := range b.templates.Dependents(templateName) {
		for _, src := range b.deps[name] {
			if _, ok := seen[src]; ok {
				continue
			}
			seen[src] = struct{}{}
			out = append(out, src)
		}
	}
	sort.Strings(out)
	return out
}

// Site returns the model of the last completed load, nil before the first.
func (b *Builder) Site() *site.Site {
	return b.site
}

// Close releases collaborator resources, the Sass compiler process in
// particular.
func (b *Builder) Close() error {
	if b.sass != nil {
		return b.sass.Close()
	}
	return nil
}
