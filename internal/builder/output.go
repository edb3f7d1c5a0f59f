package builder

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/marigold-ssg/marigold/internal/mlog"
	"github.com/marigold-ssg/marigold/internal/site"
)

// Output tree subdirectories, the underscore-less counterparts of the source
// directories.
const (
	cssOutDir    = "css"
	jsOutDir     = "js"
	assetsOutDir = "assets"
)

// urlToPath maps an entity URL to its output file path relative to the build
// directory.
func urlToPath(url string) string {
	if url == "/" {
		return "index.html"
	}
	return filepath.FromSlash(strings.TrimPrefix(url, "/"))
}

func writeFile(root, rel string, data []byte) error {
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return &site.BuildError{Path: full, Msg: "cannot create output directory", Err: err}
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return &site.BuildError{Path: full, Msg: "cannot write output file", Err: err}
	}
	return nil
}

// swapBuildDir replaces live with stage. The previous tree is parked next to
// it during the swap so an interrupted swap never leaves both trees gone.
func swapBuildDir(live, stage string) error {
	old := live + ".old"
	if err := os.RemoveAll(old); err != nil {
		return &site.BuildError{Path: old, Msg: "cannot remove previous build", Err: err}
	}
	if _, err := os.Stat(live); err == nil {
		if err := os.Rename(live, old); err != nil {
			return &site.BuildError{Path: live, Msg: "cannot park previous build", Err: err}
		}
	}
	if err := os.Rename(stage, live); err != nil {
		return &site.BuildError{Path: stage, Msg: "cannot activate build", Err: err}
	}
	if err := os.RemoveAll(old); err != nil {
		return &site.BuildError{Path: old, Msg: "cannot remove previous build", Err: err}
	}
	return nil
}

// Clean removes the build directory along with any staging or parked trees
// from earlier passes.
func (b *Builder) Clean() error {
	layout, err := site.NewLayout(b.ProjectDir)
	if err != nil {
		return err
	}
	for _, dir := range []string{layout.Build(), layout.Build() + ".stage", layout.Build() + ".old"} {
		if err := os.RemoveAll(dir); err != nil {
			return &site.BuildError{Path: dir, Msg: "cannot remove build directory", Err: err}
		}
	}
	mlog.Info("msg", "cleaned", "path", layout.Build())
	return nil
}
