package entity

// QualityBox is a verified chili region, normalized to the image size.
type QualityBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Class  string  `json:"class"`
}

type QualityResult struct {
	Class                string         `json:"class"`
	Confidence           *float64       `json:"confidence"`
	MarketRecommendation string         `json:"market_recommendation"`
	Boxes                []QualityBox   `json:"boxes"`
	Counts               map[string]int `json:"counts"`
	AnnotatedImage       string         `json:"annotated_image"`
}

type PixelBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type WeedResult struct {
	ImageWidth     int        `json:"image_width"`
	ImageHeight    int        `json:"image_height"`
	NumWeeds       int        `json:"num_weeds"`
	BoundingBoxes  []PixelBox `json:"bounding_boxes"`
	AnnotatedImage string     `json:"annotated_image"`
}

type LeafResult struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}
