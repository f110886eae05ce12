package app

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/transform"
	"github.com/gekko3d/lensing/lensrt/rt/gpu"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

type encodeFunc func(w io.Writer, img image.Image) error

func encoderFor(path string) (encodeFunc, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return png.Encode, nil
	case ".jpg", ".jpeg":
		return func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
		}, nil
	case ".tif", ".tiff":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		}, nil
	case ".bmp":
		return bmp.Encode, nil
	}
	return nil, fmt.Errorf("%q: %w", filepath.Ext(path), ErrUnsupportedFormat)
}

type viewport struct {
	width, height, computeHeight int
}

func (r *Renderer) snapshot() viewport {
	return viewport{r.width, r.height, r.computeHeight}
}

func (r *Renderer) restore(v viewport) {
	r.width, r.height, r.computeHeight = v.width, v.height, v.computeHeight
}

// ExportHighRes renders one frame at width×height into an offscreen target
// and writes it to path, encoded by extension. The live dimensions are
// restored on every return path.
func (r *Renderer) ExportHighRes(width, height int, path string, frame gpu.Frame) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("export size %dx%d is invalid", width, height)
	}
	encode, err := encoderFor(path)
	if err != nil {
		return err
	}
	if !r.dispatchOn {
		return ErrDispatchDisabled
	}

	saved := r.snapshot()
	defer r.restore(saved)

	r.width, r.height = width, height
	r.computeHeight = clampComputeHeight(height)

	target, err := r.backend.CreateTarget(width, height)
	if err != nil {
		return fmt.Errorf("export target: %w", err)
	}
	defer r.backend.ReleaseTarget(target)

	r.Profiler.BeginScope("Export")
	defer r.Profiler.EndScope("Export")

	if err := r.renderTo(frame, target); err != nil {
		return fmt.Errorf("export render: %w", err)
	}
	pixels, origin, err := r.backend.ReadPixels(target)
	if err != nil {
		return fmt.Errorf("export readback: %w", err)
	}
	if origin == gpu.OriginBottomLeft {
		pixels = transform.FlipV(pixels)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f, pixels); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	r.log.Infof("exported %dx%d frame to %s", width, height, path)
	return nil
}
