// Package texture decodes images and uploads them as 2D textures.
package texture

import (
	"fmt"
	"image"
	"io"
	"io/fs"

	// Registered decoders.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"go.uber.org/zap"

	"github.com/Faultbox/opengraphics/internal/engine/gpu"
	"github.com/Faultbox/opengraphics/internal/logger"
)

// Decode reads any registered image format into tightly packed RGBA rows
// ordered bottom row first, the layout the device expects.
func Decode(r io.Reader) (*image.RGBA, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(rgba, image.Point{}, src, b, draw.Src, nil)
	flipRows(rgba)

	logger.Named("texture").Debug("image decoded",
		zap.String("format", format),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()),
	)
	return rgba, nil
}

func flipRows(img *image.RGBA) {
	h := img.Rect.Dy()
	row := make([]uint8, img.Stride)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*img.Stride : (y+1)*img.Stride]
		bottom := img.Pix[(h-1-y)*img.Stride : (h-y)*img.Stride]
		copy(row, top)
		copy(top, bottom)
		copy(bottom, row)
	}
}

// Texture is a 2D RGBA texture on the device.
type Texture struct {
	dev      gpu.Device
	handle   uint32
	width    int
	height   int
	disposed bool
}

// Upload creates a device texture from decoded pixels.
func Upload(dev gpu.Device, img *image.RGBA) *Texture {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	pixels := img.Pix
	if img.Stride != w*4 {
		pixels = make([]uint8, 0, w*h*4)
		for y := 0; y < h; y++ {
			start := y * img.Stride
			pixels = append(pixels, img.Pix[start:start+w*4]...)
		}
	}
	return &Texture{
		dev:    dev,
		handle: dev.CreateTexture(int32(w), int32(h), pixels),
		width:  w,
		height: h,
	}
}

// Load decodes path from fsys and uploads it.
func Load(dev gpu.Device, fsys fs.FS, path string) (*Texture, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening texture %s: %w", path, err)
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", path, err)
	}
	return Upload(dev, img), nil
}

// Bind attaches the texture to a texture unit.
func (t *Texture) Bind(unit uint32) {
	t.dev.BindTexture(unit, t.handle)
}

// Handle returns the device texture handle.
func (t *Texture) Handle() uint32 { return t.handle }

// Size returns the texture dimensions in pixels.
func (t *Texture) Size() (width, height int) { return t.width, t.height }

// Dispose deletes the device texture. Further calls are no-ops.
func (t *Texture) Dispose() {
	if t.disposed {
		return
	}
	t.disposed = true
	t.dev.DeleteTexture(t.handle)
}
