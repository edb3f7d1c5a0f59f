package builder

import (
	"os"
	"path/filepath"

	"github.com/marigold-ssg/marigold/internal/mlog"
	"github.com/marigold-ssg/marigold/internal/site"
)

// buildScripts copies _js/**/*.js into js/ under dst, minified when the site
// configuration asks for it.
func (b *Builder) buildScripts(dst string, res *site.Resources) error {
	for _, r := range res.Scripts {
		mlog.Debug("builder", "js", "msg", "processing", "file", r.Rel)

		out := filepath.Join(dst, jsOutDir, filepath.FromSlash(r.Rel))
		if err := copyFiltered(r.Path, out, "application/javascript", b.filter); err != nil {
			return &site.BuildError{Path: r.Path, Msg: "cannot copy script", Err: err}
		}
	}
	return nil
}

// RebuildScripts replaces js/ in the live output tree, leaving every other
// output untouched.
func (b *Builder) RebuildScripts() error {
	res, err := site.Scan(b.layout)
	if err != nil {
		return err
	}
	out := filepath.Join(b.layout.Build(), jsOutDir)
	if err := os.RemoveAll(out); err != nil {
		return &site.BuildError{Path: out, Msg: "cannot clear script output", Err: err}
	}
	return b.buildScripts(b.layout.Build(), res)
}
