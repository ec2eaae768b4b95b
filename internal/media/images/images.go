// Package images converts still images between formats. Decoding and
// encoding go through the imaging library; JPEG output flattens any
// alpha channel onto white since JPEG has no transparency.
package images

import (
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"reel/internal/media/formats"
	"reel/internal/services"
)

var supportedTargets = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "tif": {}, "tiff": {}, "bmp": {},
}

// Convert reads the source image and writes it to outputDir in the
// target format, returning the written path. The source file is left
// untouched; a same-format re-encode into the source directory gets a
// _converted name instead. Tier controls JPEG quality; other formats
// ignore it.
func Convert(sourcePath, outputDir, targetFormat string, tier formats.Tier) (string, error) {
	target := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(targetFormat), "."))
	if _, ok := supportedTargets[target]; !ok {
		return "", services.Wrap(services.ErrValidation, "images", "convert", "unsupported image format "+target, nil)
	}

	img, err := imaging.Open(sourcePath, imaging.AutoOrientation(true))
	if err != nil {
		return "", services.Wrap(services.ErrFilesystem, "images", "convert", "open "+filepath.Base(sourcePath), err)
	}

	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	outputPath := filepath.Join(outputDir, stem+"."+target)
	if outputPath == filepath.Clean(sourcePath) {
		// A same-format re-encode into the source directory would
		// write over its own input.
		outputPath = filepath.Join(outputDir, stem+"_converted."+target)
	}

	var opts []imaging.EncodeOption
	if target == "jpg" || target == "jpeg" {
		img = flatten(img)
		if quality, ok := formats.ImageQuality(tier); ok {
			opts = append(opts, imaging.JPEGQuality(quality))
		}
	}
	if err := imaging.Save(img, outputPath, opts...); err != nil {
		return "", services.Wrap(services.ErrFilesystem, "images", "convert", "save "+filepath.Base(outputPath), err)
	}
	return outputPath, nil
}

// flatten composites the image over a white background, discarding
// transparency.
func flatten(img image.Image) image.Image {
	bounds := img.Bounds()
	background := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(background, img, image.Pt(0, 0), 1.0)
}
