package detectionService

import (
	"image/color"
	"sort"
	"strings"

	"greeny/pkg/vision"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	ChilliRed         = "chilli_red"
	ChilliHealthy     = "chilli_healthy"
	ChilliAnthracnose = "chilli_anthracnose"

	WeedLabel  = "weed"
	ChiliLabel = "chili"

	MarketHighLevel   = "High-level market"
	MarketNotSuitable = "Not suitable for market"

	qualityBoxThickness = 2
	weedBoxThickness    = 4
)

// QualityLabels is the output order of the quality network. Every label is a
// chilli category, so a crop is accepted unless a model with an extra
// background class is configured.
var QualityLabels = []string{ChilliAnthracnose, ChilliHealthy, ChilliRed}

var WeedLabels = []string{WeedLabel, ChiliLabel}

var LeafLabels = []string{"Healthy Leaf", "Curl Leaf", "Yellowish Leaf", "Spot Leaf"}

// QualityCategories use the OpenCV HSV scale (H 0-180).
var QualityCategories = []vision.Category{
	{Name: ChilliRed, Ranges: []vision.HSVRange{
		{Lower: [3]float64{0, 120, 70}, Upper: [3]float64{10, 255, 255}},
		{Lower: [3]float64{170, 120, 70}, Upper: [3]float64{180, 255, 255}},
	}},
	{Name: ChilliHealthy, Ranges: []vision.HSVRange{
		{Lower: [3]float64{36, 50, 70}, Upper: [3]float64{89, 255, 255}},
	}},
	{Name: ChilliAnthracnose, Ranges: []vision.HSVRange{
		{Lower: [3]float64{10, 100, 20}, Upper: [3]float64{25, 255, 255}},
	}},
}

var Vegetation = vision.Category{
	Name: "plant",
	Ranges: []vision.HSVRange{
		{Lower: [3]float64{25, 40, 40}, Upper: [3]float64{85, 255, 255}},
	},
}

var QualityPalette = vision.Palette{
	ChilliRed:         {R: 255, A: 255},
	ChilliHealthy:     {G: 255, A: 255},
	ChilliAnthracnose: {B: 255, A: 255},
}

var WeedPalette = vision.Palette{
	WeedLabel:  color.RGBA{R: 255, A: 255},
	ChiliLabel: color.RGBA{G: 255, A: 255},
}

func marketVerdict(class string) string {
	if class == ChilliHealthy {
		return MarketHighLevel
	}
	return MarketNotSuitable
}

// marketRecommendation renders one "<Title>: <verdict>" line per category,
// sorted by category name.
func marketRecommendation(categories []string) string {
	sorted := append([]string(nil), categories...)
	sort.Strings(sorted)

	caser := cases.Title(language.English)
	lines := make([]string, 0, len(sorted))
	for _, c := range sorted {
		title := caser.String(strings.ReplaceAll(strings.TrimPrefix(c, "chilli_"), "_", " "))
		lines = append(lines, title+": "+marketVerdict(c))
	}
	return strings.Join(lines, "\n")
}
