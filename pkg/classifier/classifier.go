// Package classifier wraps the pretrained image classifiers behind one
// interface so the detection pipeline does not care whether inference runs
// in-process through OpenCV DNN or on a remote model server.
package classifier

import (
	"context"
	"errors"
	"image"
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"
)

var (
	ErrModelNotLoaded = errors.New("model not loaded")
	ErrEmptyBatch     = errors.New("empty batch")
	ErrBadOutput      = errors.New("unexpected model output shape")
)

type Prediction struct {
	Index      int
	Label      string
	Confidence float64
	Scores     []float64
}

// Classifier scores a batch of BGR images. Predictions are returned in the
// order of the input and must match what classifying each image alone
// would produce.
type Classifier interface {
	Labels() []string
	InputSize() image.Point
	Predict(ctx context.Context, images []gocv.Mat) ([]Prediction, error)
}

// Readiness is implemented by backends whose availability can change after
// start up, such as a model server behind a socket.
type Readiness interface {
	Ready() bool
}

// Ready reports whether c can serve predictions right now. Backends without
// a readiness signal are ready once loaded.
func Ready(c Classifier) bool {
	if c == nil {
		return false
	}
	if r, ok := c.(Readiness); ok {
		return r.Ready()
	}
	return true
}

// PredictOne is a convenience for single image inference.
func PredictOne(ctx context.Context, c Classifier, img gocv.Mat) (Prediction, error) {
	preds, err := c.Predict(ctx, []gocv.Mat{img})
	if err != nil {
		return Prediction{}, err
	}
	if len(preds) != 1 {
		return Prediction{}, ErrBadOutput
	}
	return preds[0], nil
}

// Decode turns one row of raw model scores into a Prediction. A single
// sigmoid output over two labels is expanded to {p, 1-p}.
func Decode(scores []float64, labels []string, softmax bool) (Prediction, error) {
	if len(scores) == 1 && len(labels) == 2 {
		scores = []float64{scores[0], 1 - scores[0]}
	}
	if len(scores) == 0 || len(scores) != len(labels) {
		return Prediction{}, ErrBadOutput
	}

	if softmax {
		scores = Softmax(scores)
	}

	idx := floats.MaxIdx(scores)
	return Prediction{
		Index:      idx,
		Label:      labels[idx],
		Confidence: scores[idx],
		Scores:     scores,
	}, nil
}

// Softmax returns a normalized copy of logits.
func Softmax(logits []float64) []float64 {
	out := make([]float64, len(logits))
	copy(out, logits)

	floats.AddConst(-floats.Max(out), out)
	for i, v := range out {
		out[i] = math.Exp(v)
	}
	floats.Scale(1/floats.Sum(out), out)

	return out
}
