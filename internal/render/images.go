package render

import (
	"fmt"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// ImageProcessor produces one output variant of a source image. Size is a
// scale factor in (0, 1]; optimize trades quality for smaller files.
type ImageProcessor interface {
	Process(src, dst string, size float64, optimize bool) error
}

// Resizer scales with Lanczos resampling and encodes by the destination
// extension.
type Resizer struct{}

func (Resizer) Process(src, dst string, size float64, optimize bool) error {
	img, err := imaging.Open(src)
	if err != nil {
		return fmt.Errorf("cannot open image: %w", err)
	}

	bounds := img.Bounds()
	w := int(float64(bounds.Dx()) * size)
	h := int(float64(bounds.Dy()) * size)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	resized := imaging.Resize(img, w, h, imaging.Lanczos)

	var opts []imaging.EncodeOption
	switch strings.ToLower(filepath.Ext(dst)) {
	case ".jpg", ".jpeg":
		quality := 95
		if optimize {
			quality = 80
		}
		opts = append(opts, imaging.JPEGQuality(quality))
	case ".png":
		if optimize {
			opts = append(opts, imaging.PNGCompressionLevel(png.BestCompression))
		}
	}

	if err := imaging.Save(resized, dst, opts...); err != nil {
		return fmt.Errorf("cannot save image: %w", err)
	}
	return nil
}
