package vision

import (
	"image/color"

	"gocv.io/x/gocv"
)

// Palette maps a category to its outline colour.
type Palette map[string]color.RGBA

// Annotate draws every box on a copy of img and returns it as base64 JPEG.
// Boxes of a category missing from the palette are drawn white.
func Annotate(img gocv.Mat, boxes []Box, palette Palette, thickness int) (string, error) {
	out := img.Clone()
	defer out.Close()

	for _, b := range boxes {
		c, ok := palette[b.Category]
		if !ok {
			c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
		}
		gocv.Rectangle(&out, b.Rect, c, thickness)
	}

	return EncodeJPEGBase64(out)
}
