package builder

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/marigold-ssg/marigold/internal/mlog"
	"github.com/marigold-ssg/marigold/internal/site"
)

// buildStylesheets produces css/ under dst. Plain .css files are copied
// through the output filter; .scss/.sass files are compiled to compressed
// CSS. Partials (names starting with "_") only participate through imports.
func (b *Builder) buildStylesheets(dst string, res *site.Resources) error {
	outRoot := filepath.Join(dst, cssOutDir)

	for _, r := range res.Stylesheets {
		mlog.Debug("builder", "css", "msg", "processing", "file", r.Rel)

		if strings.ToLower(filepath.Ext(r.Path)) == ".css" {
			out := filepath.Join(outRoot, filepath.FromSlash(r.Rel))
			if err := copyFiltered(r.Path, out, "text/css", b.filter); err != nil {
				return &site.BuildError{Path: r.Path, Msg: "cannot copy stylesheet", Err: err}
			}
			continue
		}

		if strings.HasPrefix(filepath.Base(r.Path), "_") {
			continue
		}

		css, err := b.sass.Compile(r.Path)
		if err != nil {
			return &site.BuildError{Path: r.Path, Msg: "stylesheet compilation failed", Err: err}
		}
		rel := strings.TrimSuffix(r.Rel, path.Ext(r.Rel)) + ".css"
		if err := writeFile(outRoot, filepath.FromSlash(rel), []byte(css)); err != nil {
			return err
		}
	}
	return nil
}

// RebuildStylesheets replaces css/ in the live output tree, leaving every
// other output untouched. It needs a completed build pass for its
// configuration.
func (b *Builder) RebuildStylesheets() error {
	res, err := site.Scan(b.layout)
	if err != nil {
		return err
	}
	out := filepath.Join(b.layout.Build(), cssOutDir)
	if err := os.RemoveAll(out); err != nil {
		return &site.BuildError{Path: out, Msg: "cannot clear stylesheet output", Err: err}
	}
	return b.buildStylesheets(b.layout.Build(), res)
}
