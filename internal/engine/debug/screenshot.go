package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/opengraphics/internal/engine/gpu"
	"github.com/Faultbox/opengraphics/internal/logger"
)

// ScreenshotCapture reads the framebuffer back from the device and saves
// it as PNG.
type ScreenshotCapture struct {
	dev       gpu.Device
	outputDir string
	prefix    string
	now       func() time.Time
	last      string
	seq       int
}

// NewScreenshotCapture creates a capture handler writing into outputDir.
func NewScreenshotCapture(dev gpu.Device, outputDir, prefix string) *ScreenshotCapture {
	return &ScreenshotCapture{
		dev:       dev,
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// SetOutputDir sets the output directory for screenshots.
func (sc *ScreenshotCapture) SetOutputDir(dir string) {
	sc.outputDir = dir
}

// Capture reads a width x height framebuffer and writes it to a new file,
// returning its path.
func (sc *ScreenshotCapture) Capture(width, height int) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("empty framebuffer %dx%d", width, height)
	}
	pixels := sc.dev.ReadPixels(0, 0, int32(width), int32(height))
	return sc.CaptureFromPixels(pixels, width, height)
}

// CaptureFromPixels saves RGBA rows given bottom row first, as the device
// returns them. The image is flipped so the file is top row first.
func (sc *ScreenshotCapture) CaptureFromPixels(pixels []byte, width, height int) (string, error) {
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], pixels[src:src+rowSize])
	}

	return sc.save(img)
}

func (sc *ScreenshotCapture) save(img image.Image) (string, error) {
	if sc.outputDir != "" {
		if err := os.MkdirAll(sc.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := sc.nextFilename()
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}

	logger.Named("debug").Info("screenshot saved",
		zap.String("path", filename),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
	)
	return filename, nil
}

// nextFilename stamps the file with the current second and adds a
// sequence suffix for repeated captures within it.
func (sc *ScreenshotCapture) nextFilename() string {
	base := fmt.Sprintf("%s_%s", sc.prefix, sc.now().Format("2006-01-02_15-04-05"))
	if base == sc.last {
		sc.seq++
	} else {
		sc.last = base
		sc.seq = 0
	}

	name := base + ".png"
	if sc.seq > 0 {
		name = fmt.Sprintf("%s_%d.png", base, sc.seq)
	}
	if sc.outputDir != "" {
		name = filepath.Join(sc.outputDir, name)
	}
	return name
}
