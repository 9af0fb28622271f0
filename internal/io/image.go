package ioutils

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	_ "image/png" // PNG decoder registration
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// CoverFileName is the name document converters look for next to the
// document.
const CoverFileName = "cover.jpg"

// coverQuality is the JPEG quality used when re-encoding covers.
const coverQuality = 90

// ImageService converts downloaded covers into a JPEG the conversion script
// can reference.
//
//	svc := NewImageService()
//	path, err := svc.NormalizeCover(ctx, dir, "cover.webp", 1000)
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// NormalizeCover makes sure dir contains CoverFileName built from the
// downloaded cover file fileName.
//
// A cover that is already a ".jpg" and needs no resizing is left alone.
// Otherwise the image is decoded (JPEG, PNG, GIF or WebP), scaled down to
// fit maxSize x maxSize when maxSize > 0, and written as JPEG. It returns
// the path of the resulting cover.
func (s *ImageService) NormalizeCover(ctx context.Context, dir, fileName string, maxSize int) (string, error) {
	src := filepath.Join(dir, fileName)

	if strings.EqualFold(filepath.Ext(fileName), ".jpg") && maxSize <= 0 {
		if !Exists(src) {
			return "", fmt.Errorf("cover %s not found", fileName)
		}
		return src, nil
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("read cover: %w", err)
	}

	out, err := s.transcode(ctx, data, maxSize)
	if err != nil {
		return "", fmt.Errorf("convert cover %s: %w", fileName, err)
	}

	dst := filepath.Join(dir, CoverFileName)
	if err := WriteFile(ctx, dst, out); err != nil {
		return "", err
	}
	return dst, nil
}

// transcode decodes data and re-encodes it as JPEG, scaled with Catmull-Rom
// when it exceeds maxSize in either dimension.
func (s *ImageService) transcode(ctx context.Context, data []byte, maxSize int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if maxSize > 0 {
		width, height := fitWithin(bounds.Dx(), bounds.Dy(), maxSize)
		if width != bounds.Dx() || height != bounds.Dy() {
			scaled := image.NewRGBA(image.Rect(0, 0, width, height))
			draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)
			img = scaled
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: coverQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fitWithin returns width x height scaled down to fit a limit x limit box
// with the aspect ratio kept. Sizes already inside the box are returned
// unchanged.
func fitWithin(width, height, limit int) (int, int) {
	if width <= limit && height <= limit {
		return width, height
	}
	if width >= height {
		return limit, max(1, height*limit/width)
	}
	return max(1, width*limit/height), limit
}
