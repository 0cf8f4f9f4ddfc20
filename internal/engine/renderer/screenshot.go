package renderer

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
	"unsafe"

	"github.com/go-gl/gl/v4.2-core/gl"
	"go.uber.org/zap"
)

// Screenshot reads the back buffer and writes it as a PNG into dir. It
// returns the written path.
func (r *Renderer) Screenshot(dir string) (string, error) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))

	path := filepath.Join(dir, fmt.Sprintf("drawbucket_%s.png", time.Now().Format("2006-01-02_15-04-05")))
	if err := writePNG(path, pixels, w, h); err != nil {
		return "", err
	}
	r.log.Info("screenshot saved", zap.String("path", path))
	return path, nil
}

// writePNG encodes bottom-up RGBA rows, as GL returns them, into a
// top-down PNG.
func writePNG(path string, pixels []byte, width, height int) error {
	if len(pixels) != width*height*4 {
		return fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := range height {
		src := (height - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return f.Close()
}
