// Package badge classifies the brightness of a poster's top-right corner so
// overlay badges can pick a contrasting color. The classification is
// deterministic and is persisted with the record at ingestion time.
package badge

import (
	"image"
	"sort"
	"strings"

	// Poster sources ship jpeg, png, gif and webp.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/spf13/afero"
	_ "golang.org/x/image/webp"
)

// Corner sampling region, clamped to the image bounds for small posters.
const cropSize = 175

// brightness threshold: three 8-bit channels at mid-scale.
const darkThreshold = 3 * 128

// Color reports whether a light badge should be used, i.e. whether the
// poster's sampled corner is dark. The per-channel median brightness of a
// 175x175 square cropped from the top-right corner is summed and compared
// against the mid-scale threshold.
func Color(img image.Image) bool {
	b := img.Bounds()
	w := cropSize
	if b.Dx() < w {
		w = b.Dx()
	}
	h := cropSize
	if b.Dy() < h {
		h = b.Dy()
	}
	if w <= 0 || h <= 0 {
		return false
	}

	x0 := b.Max.X - w
	y0 := b.Min.Y

	rs := make([]int, 0, w*h)
	gs := make([]int, 0, w*h)
	bs := make([]int, 0, w*h)
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			rs = append(rs, int(r>>8))
			gs = append(gs, int(g>>8))
			bs = append(bs, int(bl>>8))
		}
	}

	sum := median(rs) + median(gs) + median(bs)
	return sum < darkThreshold
}

// ColorFile decodes the image at path on fs and classifies it. Any open or
// decode failure yields the conservative default (light background, dark
// badge); errors never propagate to the caller.
func ColorFile(fs afero.Fs, path string) bool {
	path = strings.TrimPrefix(path, "file://")
	f, err := fs.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return false
	}
	return Color(img)
}

func median(vs []int) int {
	sort.Ints(vs)
	n := len(vs)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return vs[n/2]
	}
	return (vs[n/2-1] + vs[n/2]) / 2
}
