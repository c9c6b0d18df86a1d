package config

import (
	"context"
	"image"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validated struct {
	Email string `json:"email" validate:"required,email"`
}

func TestInputSize(t *testing.T) {
	size, err := inputSize("")
	require.NoError(t, err)
	assert.Equal(t, image.Pt(224, 224), size)

	size, err = inputSize("128")
	require.NoError(t, err)
	assert.Equal(t, image.Pt(128, 128), size)

	size, err = inputSize("320x240")
	require.NoError(t, err)
	assert.Equal(t, image.Pt(320, 240), size)

	_, err = inputSize("0x10")
	assert.Error(t, err)
	_, err = inputSize("wide")
	assert.Error(t, err)
}

func TestLoadClassifiersDisablesMissingModels(t *testing.T) {
	for _, p := range []string{"QUALITY", "WEED", "LEAF"} {
		t.Setenv(p+"_MODEL_BACKEND", "")
		t.Setenv(p+"_MODEL_PATH", "")
		t.Setenv(p+"_MODEL_S3_KEY", "")
	}
	t.Setenv("WEED_MODEL_BACKEND", "carrier-pigeon")

	log := logrus.New()
	log.SetOutput(io.Discard)

	classifiers, closers := loadClassifiers(log, nil)
	assert.Nil(t, classifiers.Quality)
	assert.Nil(t, classifiers.Weed)
	assert.Nil(t, classifiers.Leaf)
	assert.Empty(t, closers)
}

func TestNewServerRequiresDatabase(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	_, err := NewServer(WithFiber(NewFiber(log)), WithLogger(log))
	assert.EqualError(t, err, "database is required")
}

func TestValidatorUsesJSONNames(t *testing.T) {
	err := NewValidator().Struct(validated{Email: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'email'")
}

type fakeS3 struct {
	objects    map[string]bool
	downloaded []string
}

func (f *fakeS3) Exists(_ context.Context, key string) (bool, error) {
	return f.objects[key], nil
}

func (f *fakeS3) DownloadFile(_ context.Context, key string, dir string) (string, error) {
	f.downloaded = append(f.downloaded, key)
	return filepath.Join(dir, filepath.Base(key)), nil
}

func TestModelPathFromS3(t *testing.T) {
	t.Setenv("LEAF_MODEL_PATH", "")
	bucket := &fakeS3{objects: map[string]bool{"models/leaf.onnx": true}}

	t.Run("missing object is not downloaded", func(t *testing.T) {
		t.Setenv("LEAF_MODEL_S3_KEY", "models/gone.onnx")
		_, err := modelPath(bucket, "LEAF")
		assert.ErrorIs(t, err, errModelObjectMissing)
		assert.Empty(t, bucket.downloaded)
	})

	t.Run("present object lands in the cache", func(t *testing.T) {
		t.Setenv("LEAF_MODEL_S3_KEY", "models/leaf.onnx")
		path, err := modelPath(bucket, "LEAF")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(modelCacheDir, "leaf", "leaf.onnx"), path)
		assert.Equal(t, []string{"models/leaf.onnx"}, bucket.downloaded)
	})

	t.Run("local path wins", func(t *testing.T) {
		local := filepath.Join(t.TempDir(), "leaf.onnx")
		require.NoError(t, os.WriteFile(local, []byte("x"), 0o600))
		t.Setenv("LEAF_MODEL_PATH", local)

		path, err := modelPath(nil, "LEAF")
		require.NoError(t, err)
		assert.Equal(t, local, path)
	})
}
