package classifier

import (
	"context"
	"encoding/base64"
	"image"

	websocketPkg "greeny/pkg/websocket"

	"gocv.io/x/gocv"
)

// Remote sends JPEG encoded crops to a model server over a websocket. The
// underlying client serializes round trips so Remote is safe to share.
type Remote struct {
	client  websocketPkg.IWebsocket
	model   string
	labels  []string
	size    image.Point
	softmax bool
}

func NewRemote(client websocketPkg.IWebsocket, model string, labels []string, size image.Point, softmax bool) *Remote {
	return &Remote{
		client:  client,
		model:   model,
		labels:  labels,
		size:    size,
		softmax: softmax,
	}
}

func (r *Remote) Labels() []string {
	return r.labels
}

func (r *Remote) InputSize() image.Point {
	return r.size
}

func (r *Remote) Predict(ctx context.Context, images []gocv.Mat) ([]Prediction, error) {
	if len(images) == 0 {
		return nil, ErrEmptyBatch
	}

	req := websocketPkg.InferenceRequest{
		Model:  r.model,
		Images: make([]string, 0, len(images)),
	}

	resized := gocv.NewMat()
	defer resized.Close()
	for _, img := range images {
		gocv.Resize(img, &resized, r.size, 0, 0, gocv.InterpolationLinear)
		buf, err := gocv.IMEncode(gocv.JPEGFileExt, resized)
		if err != nil {
			return nil, err
		}
		req.Images = append(req.Images, base64.StdEncoding.EncodeToString(buf.GetBytes()))
		buf.Close()
	}

	resp, err := r.client.Infer(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Predictions) != len(images) {
		return nil, ErrBadOutput
	}

	preds := make([]Prediction, len(images))
	for i, row := range resp.Predictions {
		p, err := Decode(row, r.labels, r.softmax)
		if err != nil {
			return nil, err
		}
		preds[i] = p
	}

	return preds, nil
}

// Ready reports whether the model server connection is up. Predict still
// redials on demand when it is not.
func (r *Remote) Ready() bool {
	return r.client.IsConnected()
}

func (r *Remote) Close() error {
	r.client.Close()
	return nil
}
