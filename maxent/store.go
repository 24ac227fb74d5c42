package maxent

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/gofrs/flock"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// SaveModel serializes the model to JSON, gzip-compressed when path ends in ".gz".
// Writers of the same path are serialized by a lock on path+".lock", which is
// left in place. The model is written to a temporary file and renamed over
// path, so readers never see a partial model.
func SaveModel(model *Model, path string) (err error) {
	data, err := MarshalModel(model)
	if err != nil {
		return err
	}
	if strings.HasSuffix(path, ".gz") {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return errors.Wrap(err, "compress model")
		}
		if err := zw.Close(); err != nil {
			return errors.Wrap(err, "compress model")
		}
		data = buf.Bytes()
	}

	lockPath := path + ".lock"
	lock := flock.New(lockPath)
	if err := lock.Lock(); err != nil {
		return errors.Wrapf(err, "while locking %q", lockPath)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil && err == nil {
			err = errors.Wrapf(unlockErr, "unlocking %q", lockPath)
		}
	}()

	tmpPath := path + ".writing"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(err, "write model %q", tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(err, "move model %q to %q", tmpPath, path)
	}
	return nil
}

// LoadModel deserializes a model written by SaveModel.
func LoadModel(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open model %q", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "decompress model %q", path)
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read model %q", path)
	}
	model, err := UnmarshalModel(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decode model %q", path)
	}
	return model, nil
}

// MarshalModel serializes the model to JSON bytes.
func MarshalModel(model *Model) ([]byte, error) {
	data, err := json.Marshal(model)
	if err != nil {
		return nil, errors.Wrap(err, "encode model")
	}
	return data, nil
}

// UnmarshalModel deserializes a model from JSON bytes and checks that the
// weight table matches both vocabularies.
func UnmarshalModel(data []byte) (*Model, error) {
	var model Model
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, err
	}
	if model.Classes == nil || model.Features == nil {
		return nil, errors.New("maxent: model is missing its vocabularies")
	}
	if model.Classes.Size() == 0 {
		return nil, errors.New("maxent: model has no classes")
	}
	if want := model.Features.VocabSize() * model.Classes.Size(); len(model.Weights) != want {
		return nil, errors.Errorf("maxent: model has %d weights, want %d", len(model.Weights), want)
	}
	return &model, nil
}
