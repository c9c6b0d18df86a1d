package vision

import (
	"image"

	"gocv.io/x/gocv"
)

type ContourOptions struct {
	KernelSize      int
	OpenIterations  int
	CloseIterations int
	MinArea         int
}

func DefaultContourOptions() ContourOptions {
	return ContourOptions{
		KernelSize:      5,
		OpenIterations:  2,
		CloseIterations: 2,
		MinArea:         200,
	}
}

// ContourBoxes cleans the mask and returns the bounding rectangle of every
// external contour whose rectangle covers at least MinArea pixels. Unlike
// SplitBlobs it does not separate touching regions, which is what the weed
// stream wants: a clump of leaves is one plant.
func ContourBoxes(mask gocv.Mat, category string, opts ContourOptions) []Box {
	if mask.Empty() || gocv.CountNonZero(mask) == 0 {
		return nil
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(opts.KernelSize, opts.KernelSize))
	defer kernel.Close()

	cleaned := mask.Clone()
	defer cleaned.Close()

	openMorph(&cleaned, kernel, opts.OpenIterations)
	closeMorph(&cleaned, kernel, opts.CloseIterations)

	contours := gocv.FindContours(cleaned, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	boxes := make([]Box, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		b := Box{Category: category, Rect: gocv.BoundingRect(contours.At(i))}
		if b.Area() < opts.MinArea {
			continue
		}
		boxes = append(boxes, b)
	}

	return boxes
}
