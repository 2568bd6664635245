package debug

import (
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/opengraphics/internal/engine/gpu/gputest"
)

func TestFPSCounter(t *testing.T) {
	c := NewFPSCounter(time.Second)

	for i := 0; i < 59; i++ {
		if _, ok := c.Tick(16 * time.Millisecond); ok {
			t.Fatalf("reported after %d frames", i+1)
		}
	}
	fps, ok := c.Tick(56 * time.Millisecond)
	if !ok {
		t.Fatal("expected a report after one second")
	}
	if math.Abs(fps-60) > 1e-9 {
		t.Errorf("fps = %v, want 60", fps)
	}
	if c.FPS() != fps {
		t.Errorf("FPS() = %v, want %v", c.FPS(), fps)
	}

	// The next window starts empty.
	if _, ok := c.Tick(time.Millisecond); ok {
		t.Error("reported on first frame of new window")
	}
}

func fixedClock() func() time.Time {
	at := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestCaptureFlipsRows(t *testing.T) {
	dir := t.TempDir()
	sc := NewScreenshotCapture(gputest.New(), dir, "shot")
	sc.now = fixedClock()

	// Bottom row red, top row blue.
	pixels := []byte{
		255, 0, 0, 255, 255, 0, 0, 255,
		0, 0, 255, 255, 0, 0, 255, 255,
	}
	path, err := sc.CaptureFromPixels(pixels, 2, 2)
	if err != nil {
		t.Fatalf("CaptureFromPixels: %v", err)
	}
	if want := filepath.Join(dir, "shot_2024-05-01_12-30-00.png"); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r, _, b, _ := img.At(0, 0).RGBA(); r != 0 || b != 0xffff {
		t.Errorf("top-left should be blue, got r=%x b=%x", r, b)
	}
	if r, _, b, _ := img.At(0, 1).RGBA(); r != 0xffff || b != 0 {
		t.Errorf("bottom-left should be red, got r=%x b=%x", r, b)
	}
}

func TestCaptureReadsFramebuffer(t *testing.T) {
	dev := gputest.New()
	dev.ClearColor(0, 1, 0, 1)
	sc := NewScreenshotCapture(dev, t.TempDir(), "shot")
	sc.now = fixedClock()

	first, err := sc.Capture(4, 3)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if dev.Count("ReadPixels") != 1 {
		t.Errorf("ReadPixels called %d times", dev.Count("ReadPixels"))
	}

	second, err := sc.Capture(4, 3)
	if err != nil {
		t.Fatalf("second Capture: %v", err)
	}
	if first == second {
		t.Errorf("captures in the same second share %s", first)
	}
	if filepath.Base(second) != "shot_2024-05-01_12-30-00_1.png" {
		t.Errorf("second capture named %s", filepath.Base(second))
	}

	f, err := os.Open(first)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Errorf("image is %dx%d, want 4x3", b.Dx(), b.Dy())
	}
	if _, g, _, _ := img.At(2, 1).RGBA(); g != 0xffff {
		t.Errorf("pixel not clear colour, g=%x", g)
	}
}

func TestCaptureRejectsBadInput(t *testing.T) {
	sc := NewScreenshotCapture(gputest.New(), t.TempDir(), "shot")
	if _, err := sc.Capture(0, 10); err == nil {
		t.Error("expected error for empty framebuffer")
	}
	if _, err := sc.CaptureFromPixels(make([]byte, 7), 1, 2); err == nil {
		t.Error("expected size mismatch error")
	}
}
