package badge

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/spf13/afero"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestColor_DarkCorner(t *testing.T) {
	dark := solid(400, 600, color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff})
	if !Color(dark) {
		t.Error("expected light badge for a dark poster corner")
	}
}

func TestColor_LightCorner(t *testing.T) {
	light := solid(400, 600, color.RGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff})
	if Color(light) {
		t.Error("expected dark badge for a light poster corner")
	}
}

func TestColor_SmallImageClamped(t *testing.T) {
	// smaller than the 175px sample square on both axes
	tiny := solid(50, 40, color.RGBA{A: 0xff})
	if !Color(tiny) {
		t.Error("expected classification of a sub-crop-size image")
	}
}

func TestColor_OnlyCornerMatters(t *testing.T) {
	// dark everywhere except a light top-right corner
	img := image.NewRGBA(image.Rect(0, 0, 400, 600))
	for y := 0; y < 600; y++ {
		for x := 0; x < 400; x++ {
			if x >= 225 && y < 175 {
				img.Set(x, y, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
			} else {
				img.Set(x, y, color.RGBA{A: 0xff})
			}
		}
	}
	if Color(img) {
		t.Error("expected the light corner to win over the dark remainder")
	}
}

func TestColorFile_Deterministic(t *testing.T) {
	fs := afero.NewMemMapFs()
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(300, 450, color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff})); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	if err := afero.WriteFile(fs, "/data/poster/a.png", buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	first := ColorFile(fs, "file:///data/poster/a.png")
	second := ColorFile(fs, "file:///data/poster/a.png")
	if first != second {
		t.Error("expected identical classification on repeated runs")
	}
	if !first {
		t.Error("expected light badge for dark fixture")
	}
}

func TestColorFile_MissingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if ColorFile(fs, "file:///data/poster/missing.png") {
		t.Error("expected the conservative default for an unreadable file")
	}
}
