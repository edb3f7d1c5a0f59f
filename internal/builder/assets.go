package builder

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/marigold-ssg/marigold/internal/mlog"
	"github.com/marigold-ssg/marigold/internal/site"
)

// buildAssets copies the non-image files of _assets into assets/ under dst,
// preserving the directory structure. Images are handled by buildImages.
func (b *Builder) buildAssets(dst string, res *site.Resources) error {
	for _, r := range res.Assets {
		mlog.Debug("builder", "assets", "msg", "copying", "file", r.Rel)

		out := filepath.Join(dst, assetsOutDir, filepath.FromSlash(r.Rel))
		if err := copyFile(r.Path, out); err != nil {
			return &site.BuildError{Path: r.Path, Msg: "cannot copy asset", Err: err}
		}
	}
	return nil
}

// buildImages produces every configured variant of every source image. The
// identity variant (size 1, no optimization) is a plain copy.
func (b *Builder) buildImages(dst string, res *site.Resources) error {
	variants := b.site.Config.Images

	for _, r := range res.Images {
		mlog.Debug("builder", "images", "msg", "building", "file", r.Rel)

		for _, v := range variants {
			out := variantPath(dst, r.Rel, v.Suffix)
			if v.Size == 1 && !v.Optimize {
				if err := copyFile(r.Path, out); err != nil {
					return &site.BuildError{Path: r.Path, Msg: "cannot copy image", Err: err}
				}
				continue
			}

			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return &site.BuildError{Path: out, Msg: "cannot create output directory", Err: err}
			}
			if err := b.images.Process(r.Path, out, v.Size, v.Optimize); err != nil {
				return &site.BuildError{Path: r.Path, Msg: "image processing failed", Err: err}
			}
		}
	}
	return nil
}

// variantPath inserts the variant suffix between the file stem and the
// extension: photo.jpg with suffix "-small" becomes photo-small.jpg.
func variantPath(dst, rel, suffix string) string {
	rel = filepath.FromSlash(rel)
	ext := filepath.Ext(rel)
	stem := strings.TrimSuffix(rel, ext)
	return filepath.Join(dst, assetsOutDir, stem+suffix+ext)
}

// carryImages copies the image outputs of the previous build into stage, so
// a build with image generation disabled does not lose them.
func carryImages(prev, stage string) error {
	src := filepath.Join(prev, assetsOutDir)
	if _, err := os.Stat(src); err != nil {
		return nil
	}

	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !site.IsImage(p) {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		if err := copyFile(p, filepath.Join(stage, assetsOutDir, rel)); err != nil {
			return &site.BuildError{Path: p, Msg: "cannot carry over image", Err: err}
		}
		return nil
	})
}

// RebuildAssets refreshes the non-image files under assets/ in the live
// output tree. Image outputs stay as they are.
func (b *Builder) RebuildAssets() error {
	res, err := site.Scan(b.layout)
	if err != nil {
		return err
	}
	if err := clearAssetOutputs(b.layout.Build(), false); err != nil {
		return err
	}
	return b.buildAssets(b.layout.Build(), res)
}

// RebuildImages regenerates every image variant in the live output tree.
func (b *Builder) RebuildImages() error {
	res, err := site.Scan(b.layout)
	if err != nil {
		return err
	}
	if err := clearAssetOutputs(b.layout.Build(), true); err != nil {
		return err
	}
	return b.buildImages(b.layout.Build(), res)
}

// clearAssetOutputs removes either the image or the non-image files below
// assets/, so a targeted refresh also drops outputs whose source is gone.
func clearAssetOutputs(buildDir string, images bool) error {
	root := filepath.Join(buildDir, assetsOutDir)
	if _, err := os.Stat(root); err != nil {
		return nil
	}

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || site.IsImage(p) != images {
			return err
		}
		return os.Remove(p)
	})
	if err != nil {
		return &site.BuildError{Path: root, Msg: "cannot clear asset output", Err: err}
	}
	return nil
}
