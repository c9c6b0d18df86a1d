package vision

import (
	"image"
	"sort"

	"gocv.io/x/gocv"
)

// SplitOptions tunes the watershed splitter. Iteration counts apply to a
// square kernel of KernelSize pixels.
type SplitOptions struct {
	KernelSize          int
	CloseIterations     int
	OpenIterations      int
	BackgroundDilations int
	ForegroundRatio     float32
	MinArea             int
}

func DefaultSplitOptions() SplitOptions {
	return SplitOptions{
		KernelSize:          3,
		CloseIterations:     1,
		OpenIterations:      2,
		BackgroundDilations: 3,
		ForegroundRatio:     0.5,
		MinArea:             500,
	}
}

// SplitBlobs separates touching blobs of a category mask into individual
// regions. Seeds are the peaks of the distance transform of the cleaned mask
// and are grown over src with watershed, so two chilies lying against each
// other come out as two boxes. Regions whose bounding box is smaller than
// MinArea are dropped. Boxes are returned in label order.
func SplitBlobs(mask, src gocv.Mat, category string, opts SplitOptions) []Box {
	if mask.Empty() || gocv.CountNonZero(mask) == 0 {
		return nil
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(opts.KernelSize, opts.KernelSize))
	defer kernel.Close()

	opened := mask.Clone()
	defer opened.Close()

	// closing bridges gaps narrower than the kernel
	closeMorph(&opened, kernel, opts.CloseIterations)
	openMorph(&opened, kernel, opts.OpenIterations)

	if gocv.CountNonZero(opened) == 0 {
		return nil
	}

	sureBg := opened.Clone()
	defer sureBg.Close()
	for i := 0; i < opts.BackgroundDilations; i++ {
		gocv.Dilate(sureBg, &sureBg, kernel)
	}

	dist := gocv.NewMat()
	defer dist.Close()
	distLabels := gocv.NewMat()
	defer distLabels.Close()
	gocv.DistanceTransform(opened, &dist, &distLabels, gocv.DistL2, gocv.DistanceMask5, gocv.DistanceLabelCComp)

	_, maxDist, _, _ := gocv.MinMaxLoc(dist)

	fgFloat := gocv.NewMat()
	defer fgFloat.Close()
	gocv.Threshold(dist, &fgFloat, opts.ForegroundRatio*maxDist, 255, gocv.ThresholdBinary)

	sureFg := gocv.NewMat()
	defer sureFg.Close()
	fgFloat.ConvertTo(&sureFg, gocv.MatTypeCV8U)

	unknown := gocv.NewMat()
	defer unknown.Close()
	gocv.Subtract(sureBg, sureFg, &unknown)

	markers := gocv.NewMat()
	defer markers.Close()
	gocv.ConnectedComponents(sureFg, &markers)

	labels, err := markers.DataPtrInt32()
	if err != nil {
		return nil
	}
	unknownPx, err := unknown.DataPtrUint8()
	if err != nil {
		return nil
	}

	// background becomes 1 so watershed never floods from label 0
	for i := range labels {
		labels[i]++
		if unknownPx[i] == 255 {
			labels[i] = 0
		}
	}

	gocv.Watershed(src, &markers)

	return regionBoxes(markers, category, opts.MinArea)
}

// regionBoxes collects the bounding box of every watershed label above the
// background in a single pass over the marker image.
func regionBoxes(markers gocv.Mat, category string, minArea int) []Box {
	labels, err := markers.DataPtrInt32()
	if err != nil {
		return nil
	}

	cols := markers.Cols()
	rects := make(map[int32]image.Rectangle)
	for i, label := range labels {
		if label <= 1 {
			continue
		}
		x, y := i%cols, i/cols
		px := image.Rect(x, y, x+1, y+1)
		if r, ok := rects[label]; ok {
			rects[label] = r.Union(px)
		} else {
			rects[label] = px
		}
	}

	keys := make([]int32, 0, len(rects))
	for k := range rects {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	boxes := make([]Box, 0, len(keys))
	for _, k := range keys {
		b := Box{Category: category, Rect: rects[k]}
		if b.Area() < minArea {
			continue
		}
		boxes = append(boxes, b)
	}

	return boxes
}

// openMorph erodes n times and then dilates n times, matching an OpenCV
// opening with iterations=n.
func openMorph(m *gocv.Mat, kernel gocv.Mat, n int) {
	for i := 0; i < n; i++ {
		gocv.Erode(*m, m, kernel)
	}
	for i := 0; i < n; i++ {
		gocv.Dilate(*m, m, kernel)
	}
}

func closeMorph(m *gocv.Mat, kernel gocv.Mat, n int) {
	for i := 0; i < n; i++ {
		gocv.Dilate(*m, m, kernel)
	}
	for i := 0; i < n; i++ {
		gocv.Erode(*m, m, kernel)
	}
}
