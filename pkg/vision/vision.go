// Package vision holds the colour segmentation and blob splitting pipeline
// used by the detection endpoints, together with the helpers that crop,
// verify and annotate the regions it finds.
package vision

import (
	"encoding/base64"
	"errors"
	"image"

	"gocv.io/x/gocv"
)

var (
	ErrInvalidImage = errors.New("invalid image")
	ErrEmptyImage   = errors.New("image has zero area")
)

// Box is a region in pixel coordinates tagged with the category whose mask
// produced it.
type Box struct {
	Category string
	Rect     image.Rectangle
}

// NormalizedBox is a Box expressed as fractions of the image size.
type NormalizedBox struct {
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Category string
}

func (b Box) Area() int {
	return b.Rect.Dx() * b.Rect.Dy()
}

func (b Box) Normalize(width, height int) NormalizedBox {
	if width <= 0 || height <= 0 {
		return NormalizedBox{Category: b.Category}
	}
	w, h := float64(width), float64(height)
	return NormalizedBox{
		X:        float64(b.Rect.Min.X) / w,
		Y:        float64(b.Rect.Min.Y) / h,
		Width:    float64(b.Rect.Dx()) / w,
		Height:   float64(b.Rect.Dy()) / h,
		Category: b.Category,
	}
}

// Decode turns an encoded image (jpeg, png, webp, ...) into a BGR Mat.
func Decode(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.Mat{}, ErrInvalidImage
	}

	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, ErrInvalidImage
	}
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, ErrInvalidImage
	}

	return img, nil
}

// EncodeJPEGBase64 encodes img as JPEG and wraps it in standard base64.
func EncodeJPEGBase64(img gocv.Mat) (string, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return "", err
	}
	defer buf.Close()

	return base64.StdEncoding.EncodeToString(buf.GetBytes()), nil
}

func checkArea(img gocv.Mat) error {
	if img.Empty() || img.Rows() == 0 || img.Cols() == 0 {
		return ErrEmptyImage
	}
	return nil
}
