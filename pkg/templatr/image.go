package templatr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/go-templatr/templatr/pkg/templatr/xml"
)

const imageRelationshipType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

// imageFormats maps image.DecodeConfig format names to a file extension and content type.
var imageFormats = map[string]struct {
	ext         string
	contentType string
}{
	"png":  {"png", "image/png"},
	"jpeg": {"jpeg", "image/jpeg"},
	"gif":  {"gif", "image/gif"},
	"bmp":  {"bmp", "image/bmp"},
	"tiff": {"tiff", "image/tiff"},
	"webp": {"webp", "image/webp"},
}

// ImageSize converts a pixel size to EMU at dpi, scaled down proportionally
// so the width does not exceed maxWidth. A size that does not fit in EMU
// is an error.
func ImageSize(width, height, dpi int, maxWidth int64) (int64, int64, error) {
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	if dpi <= 0 {
		return 0, 0, fmt.Errorf("invalid DPI %d", dpi)
	}

	// float64 so the rescale of a tall, wide image cannot overflow
	w := float64(width) * emuPerInch / float64(dpi)
	h := float64(height) * emuPerInch / float64(dpi)
	if maxWidth > 0 && w > float64(maxWidth) {
		h = h * float64(maxWidth) / w
		w = float64(maxWidth)
	}

	cx, err := safecast.Truncate[int64](w)
	if err != nil {
		return 0, 0, fmt.Errorf("image size %dx%d is too large: %w", width, height, err)
	}
	cy, err := safecast.Truncate[int64](h)
	if err != nil {
		return 0, 0, fmt.Errorf("image size %dx%d is too large: %w", width, height, err)
	}
	if cy < 1 {
		cy = 1
	}
	return cx, cy, nil
}

// inspectImage reads the image at path and returns its bytes, pixel size
// and format details.
func inspectImage(path string) ([]byte, image.Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, image.Config{}, "", NewResourceError(path, err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, image.Config{}, "", NewResourceError(path, fmt.Errorf("unrecognized image format"))
		}
		return nil, image.Config{}, "", NewResourceError(path, err)
	}

	if _, ok := imageFormats[format]; !ok {
		return nil, image.Config{}, "", NewResourceError(path, fmt.Errorf("unsupported image format %q", format))
	}
	return data, cfg, format, nil
}

// AddImage reads the image at path, stores it in the package and returns
// the drawing description for an inline run. Unreadable or unrecognized
// files fail with a ResourceError.
func (p *Package) AddImage(path string, config *Config) (xml.InlineImage, error) {
	data, cfg, format, err := inspectImage(path)
	if err != nil {
		return xml.InlineImage{}, err
	}

	cx, cy, err := ImageSize(cfg.Width, cfg.Height, config.ImageDPI, config.ImageMaxWidth)
	if err != nil {
		return xml.InlineImage{}, NewResourceError(path, err)
	}

	info := imageFormats[format]
	relID, _ := p.AddMedia(info.ext, info.contentType, imageRelationshipType, data)

	return xml.InlineImage{
		RelID:   relID,
		DocPrID: p.NextDrawingID(),
		Name:    filepath.Base(path),
		CX:      cx,
		CY:      cy,
	}, nil
}
