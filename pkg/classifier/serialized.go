package classifier

import (
	"context"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

type job struct {
	images []gocv.Mat
	result chan jobResult
}

type jobResult struct {
	preds []Prediction
	err   error
}

// Serialized runs every Predict call of the wrapped classifier on one
// goroutine. Use it for backends that are not safe for concurrent use, such
// as an OpenCV dnn.Net.
type Serialized struct {
	inner   Classifier
	jobs    chan job
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func Serialize(c Classifier) *Serialized {
	s := &Serialized{
		inner:   c,
		jobs:    make(chan job),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *Serialized) loop() {
	defer close(s.stopped)
	for {
		select {
		case <-s.done:
			return
		case j := <-s.jobs:
			preds, err := s.inner.Predict(context.Background(), j.images)
			j.result <- jobResult{preds: preds, err: err}
		}
	}
}

func (s *Serialized) Labels() []string {
	return s.inner.Labels()
}

func (s *Serialized) InputSize() image.Point {
	return s.inner.InputSize()
}

func (s *Serialized) Ready() bool {
	select {
	case <-s.done:
		return false
	default:
		return Ready(s.inner)
	}
}

// Predict waits for the worker to pick up the batch. Once accepted the call
// always waits for the result because the worker still reads the images.
func (s *Serialized) Predict(ctx context.Context, images []gocv.Mat) ([]Prediction, error) {
	if len(images) == 0 {
		return nil, ErrEmptyBatch
	}

	j := job{images: images, result: make(chan jobResult, 1)}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, ErrModelNotLoaded
	case s.jobs <- j:
	}

	r := <-j.result
	return r.preds, r.err
}

func (s *Serialized) Close() {
	s.once.Do(func() {
		close(s.done)
		<-s.stopped
		if c, ok := s.inner.(interface{ Close() error }); ok {
			_ = c.Close()
		}
	})
}
