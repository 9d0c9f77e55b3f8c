package canvas

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
)

var shades = []rune(" ░▒▓█")

// Preview renders img as a w x h block of shade characters, darker ink
// giving denser blocks.
func Preview(img image.Image, w, h int) string {
	if img == nil || w <= 0 || h <= 0 {
		return ""
	}
	b := img.Bounds()
	var sb strings.Builder
	for row := 0; row < h; row++ {
		y0 := b.Min.Y + row*b.Dy()/h
		y1 := max(y0+1, b.Min.Y+(row+1)*b.Dy()/h)
		for col := 0; col < w; col++ {
			x0 := b.Min.X + col*b.Dx()/w
			x1 := max(x0+1, b.Min.X+(col+1)*b.Dx()/w)
			sb.WriteRune(shades[shadeIndex(img, x0, y0, x1, y1)])
		}
		if row < h-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// LoadPreview decodes the image at path and renders it with Preview.
func LoadPreview(path string, w, h int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	return Preview(img, w, h), nil
}

func shadeIndex(img image.Image, x0, y0, x1, y1 int) int {
	var dark, n uint64
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			lum := (299*uint64(r) + 587*uint64(g) + 114*uint64(b)) / 1000
			dark += 0xffff - lum
			n++
		}
	}
	if n == 0 {
		return 0
	}
	avg := dark / n
	idx := int(avg * uint64(len(shades)) / 0x10000)
	return min(idx, len(shades)-1)
}
