package vision

import (
	"gocv.io/x/gocv"
)

// HSVRange is an inclusive range on the OpenCV HSV scale (H 0-180, S and V
// 0-255).
type HSVRange struct {
	Lower [3]float64
	Upper [3]float64
}

// Category is a named colour class. Several ranges are OR-ed together, which
// is how red is expressed since its hue wraps around 180.
type Category struct {
	Name   string
	Ranges []HSVRange
}

// Mask is the binary (0/255, CV_8UC1) result of thresholding one category.
type Mask struct {
	Category string
	Mat      gocv.Mat
}

// Segment converts a BGR image to HSV and thresholds it once per category.
// Masks come back in category order and must be released with CloseMasks.
func Segment(img gocv.Mat, categories []Category) ([]Mask, error) {
	if err := checkArea(img); err != nil {
		return nil, err
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(img, &hsv, gocv.ColorBGRToHSV)

	masks := make([]Mask, 0, len(categories))
	for _, c := range categories {
		masks = append(masks, Mask{Category: c.Name, Mat: threshold(hsv, c.Ranges)})
	}

	return masks, nil
}

func threshold(hsv gocv.Mat, ranges []HSVRange) gocv.Mat {
	mask := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), hsv.Rows(), hsv.Cols(), gocv.MatTypeCV8UC1)

	part := gocv.NewMat()
	defer part.Close()

	for _, r := range ranges {
		gocv.InRangeWithScalar(hsv,
			gocv.NewScalar(r.Lower[0], r.Lower[1], r.Lower[2], 0),
			gocv.NewScalar(r.Upper[0], r.Upper[1], r.Upper[2], 0),
			&part)
		gocv.BitwiseOr(mask, part, &mask)
	}

	return mask
}

func CloseMasks(masks []Mask) {
	for _, m := range masks {
		m.Mat.Close()
	}
}
