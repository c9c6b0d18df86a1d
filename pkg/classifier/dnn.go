package classifier

import (
	"context"
	"image"

	"gocv.io/x/gocv"
)

type DNNConfig struct {
	ModelPath  string
	ConfigPath string
	Labels     []string
	InputSize  image.Point
	// Scale and Mean map pixels to the network range as (px - Mean) * Scale.
	Scale   float64
	Mean    gocv.Scalar
	SwapRB  bool
	Softmax bool
}

// DNN runs a network through the OpenCV dnn module. A gocv.Net is not safe
// for concurrent use; wrap it with Serialize before sharing it.
type DNN struct {
	net gocv.Net
	cfg DNNConfig
}

func NewDNN(cfg DNNConfig) (*DNN, error) {
	if cfg.ModelPath == "" || len(cfg.Labels) == 0 {
		return nil, ErrModelNotLoaded
	}

	net := gocv.ReadNet(cfg.ModelPath, cfg.ConfigPath)
	if net.Empty() {
		net.Close()
		return nil, ErrModelNotLoaded
	}

	if cfg.Scale == 0 {
		cfg.Scale = 1.0 / 255.0
	}

	return &DNN{net: net, cfg: cfg}, nil
}

func (d *DNN) Labels() []string {
	return d.cfg.Labels
}

func (d *DNN) InputSize() image.Point {
	return d.cfg.InputSize
}

func (d *DNN) Predict(ctx context.Context, images []gocv.Mat) ([]Prediction, error) {
	if len(images) == 0 {
		return nil, ErrEmptyBatch
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blob := gocv.NewMat()
	defer blob.Close()
	gocv.BlobFromImages(images, &blob, d.cfg.Scale, d.cfg.InputSize, d.cfg.Mean, d.cfg.SwapRB, false, gocv.MatTypeCV32F)

	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	defer out.Close()

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || len(data)%len(images) != 0 {
		return nil, ErrBadOutput
	}

	width := len(data) / len(images)
	preds := make([]Prediction, len(images))
	for i := range images {
		row := make([]float64, width)
		for j, v := range data[i*width : (i+1)*width] {
			row[j] = float64(v)
		}

		p, err := Decode(row, d.cfg.Labels, d.cfg.Softmax)
		if err != nil {
			return nil, err
		}
		preds[i] = p
	}

	return preds, nil
}

func (d *DNN) Close() error {
	return d.net.Close()
}
