package config

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	detectionService "greeny/internal/api/detection/service"
	"greeny/pkg/classifier"
	"greeny/pkg/s3"
	websocketPkg "greeny/pkg/websocket"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

const (
	backendDNN    = "dnn"
	backendRemote = "remote"

	defaultInputSize = 224
	modelCacheDir    = "./storage/models"
)

var errUnknownBackend = errors.New("unknown model backend")

// closer is implemented by every classifier backend this package builds.
type closer interface {
	Close()
}

type modelSetting struct {
	prefix string
	labels []string
	scale  float64
	mean   float64
}

var modelSettings = []modelSetting{
	{prefix: "QUALITY", labels: detectionService.QualityLabels, scale: 1.0 / 255.0},
	{prefix: "WEED", labels: detectionService.WeedLabels, scale: 1.0 / 255.0},
	{prefix: "LEAF", labels: detectionService.LeafLabels, scale: 1.0 / 127.5, mean: 127.5},
}

// loadClassifiers builds one classifier per model from the environment.
// A model that fails to load is logged and left nil so only its feature is
// disabled.
func loadClassifiers(log *logrus.Logger, s3Client s3.ItfS3) (detectionService.Classifiers, []closer) {
	var (
		out     detectionService.Classifiers
		closers []closer
	)

	for _, m := range modelSettings {
		clf, c, err := loadClassifier(log, s3Client, m)
		if err != nil {
			log.WithFields(logrus.Fields{
				"model": strings.ToLower(m.prefix),
				"error": err.Error(),
			}).Error("Classifier not loaded, feature disabled")
			continue
		}
		closers = append(closers, c)

		switch m.prefix {
		case "QUALITY":
			out.Quality = clf
		case "WEED":
			out.Weed = clf
		case "LEAF":
			out.Leaf = clf
		}

		log.WithFields(logrus.Fields{
			"model":   strings.ToLower(m.prefix),
			"backend": envOr(m.prefix+"_MODEL_BACKEND", backendDNN),
		}).Info("Classifier loaded")
	}

	return out, closers
}

func loadClassifier(log *logrus.Logger, s3Client s3.ItfS3, m modelSetting) (classifier.Classifier, closer, error) {
	size, err := inputSize(os.Getenv(m.prefix + "_MODEL_INPUT"))
	if err != nil {
		return nil, nil, err
	}
	softmax, _ := strconv.ParseBool(os.Getenv(m.prefix + "_MODEL_SOFTMAX"))

	switch backend := envOr(m.prefix+"_MODEL_BACKEND", backendDNN); backend {
	case backendRemote:
		url := os.Getenv(m.prefix + "_MODEL_URL")
		if url == "" {
			return nil, nil, fmt.Errorf("%s_MODEL_URL is not set", m.prefix)
		}
		client := websocketPkg.NewInferenceClient(url, log)
		remote := classifier.NewRemote(client, strings.ToLower(m.prefix), m.labels, size, softmax)
		return remote, closeFunc(func() { _ = remote.Close() }), nil

	case backendDNN:
		path, err := modelPath(s3Client, m.prefix)
		if err != nil {
			return nil, nil, err
		}

		dnn, err := classifier.NewDNN(classifier.DNNConfig{
			ModelPath: path,
			Labels:    m.labels,
			InputSize: size,
			Scale:     m.scale,
			Mean:      gocv.NewScalar(m.mean, m.mean, m.mean, 0),
			SwapRB:    true,
			Softmax:   softmax,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", path, err)
		}

		serialized := classifier.Serialize(dnn)
		return serialized, serialized, nil

	default:
		return nil, nil, fmt.Errorf("%w %q", errUnknownBackend, backend)
	}
}

var errModelObjectMissing = errors.New("model object not found in bucket")

// modelPath prefers a local file and downloads <PREFIX>_MODEL_S3_KEY into
// the model cache when none is configured.
func modelPath(s3Client s3.ItfS3, prefix string) (string, error) {
	if path := os.Getenv(prefix + "_MODEL_PATH"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	key := os.Getenv(prefix + "_MODEL_S3_KEY")
	if key == "" {
		return "", classifier.ErrModelNotLoaded
	}
	if s3Client == nil {
		return "", fmt.Errorf("%s_MODEL_S3_KEY is set but S3 is not configured", prefix)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	exists, err := s3Client.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("check %s: %w", key, err)
	}
	if !exists {
		return "", fmt.Errorf("%w: %s", errModelObjectMissing, key)
	}

	return s3Client.DownloadFile(ctx, key, filepath.Join(modelCacheDir, strings.ToLower(prefix)))
}

// inputSize parses "224" or "224x224".
func inputSize(v string) (image.Point, error) {
	if v == "" {
		return image.Pt(defaultInputSize, defaultInputSize), nil
	}

	w, h, found := strings.Cut(strings.ToLower(v), "x")
	if !found {
		h = w
	}

	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil || width <= 0 {
		return image.Point{}, fmt.Errorf("invalid model input size %q", v)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || height <= 0 {
		return image.Point{}, fmt.Errorf("invalid model input size %q", v)
	}

	return image.Pt(width, height), nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return strings.ToLower(v)
	}
	return def
}

type closeFunc func()

func (f closeFunc) Close() { f() }
