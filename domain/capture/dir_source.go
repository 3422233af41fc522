package capture

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder
	_ "golang.org/x/image/webp" // WebP decoder
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".bmp": true,
	".gif": true, ".tif": true, ".tiff": true, ".webp": true,
}

// DirSource replays the image files of a directory in lexical order.
type DirSource struct {
	counters
	files     []string
	next      int
	selection image.Rectangle
}

// NewDirSource lists the image files in dir. Files are cropped to selection
// when it is non-empty.
func NewDirSource(dir string, selection image.Rectangle) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frame dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return &DirSource{files: files, selection: selection}, nil
}

// NewFileSource replays the given files in order.
func NewFileSource(files ...string) *DirSource {
	return &DirSource{files: files}
}

// Len returns the number of frames the source will yield.
func (d *DirSource) Len() int { return len(d.files) }

func (d *DirSource) Next(ctx context.Context) (FrameSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return FrameSnapshot{}, err
	}
	if d.next >= len(d.files) {
		return FrameSnapshot{}, io.EOF
	}
	path := d.files[d.next]
	d.next++
	start := time.Now()
	img, err := LoadFrame(path)
	if err != nil {
		return d.fail(filepath.Base(path), err), nil
	}
	return d.record(Crop(img, d.selection), filepath.Base(path), start), nil
}

func (d *DirSource) Close() error { return nil }

// LoadFrame decodes an image file, applying its EXIF orientation.
func LoadFrame(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}
