// Package storage keeps uploaded images and generated scores, MIDI and PDF
// files under flat resource names.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jsphweid/musicbox/constants"
	"github.com/jsphweid/musicbox/file"
	"github.com/jsphweid/musicbox/metrics"
)

var ErrNotFound = errors.New("resource not found")

type Store interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	// Driver names the backend in logs and metrics.
	Driver() string
}

// LocalStore keeps resources in a directory on disk.
type LocalStore struct {
	Dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating storage dir: %w", err)
	}
	return &LocalStore{Dir: dir}, nil
}

func (s *LocalStore) Driver() string { return "local" }

func (s *LocalStore) Put(ctx context.Context, name string, data []byte) (err error) {
	defer func() { metrics.Get().ObserveStorage(s.Driver(), "put", err) }()
	if err := file.CheckName(name); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.Dir, name), data, 0644)
}

func (s *LocalStore) Get(ctx context.Context, name string) (data []byte, err error) {
	defer func() { metrics.Get().ObserveStorage(s.Driver(), "get", err) }()
	if err := file.CheckName(name); err != nil {
		return nil, err
	}
	data, err = os.ReadFile(filepath.Join(s.Dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// FromConfig opens the store selected by storage.driver.
func FromConfig(ctx context.Context) (Store, error) {
	switch constants.GetStorageDriver() {
	case "s3":
		return NewS3Store(ctx, constants.GetS3Region(), constants.GetS3Bucket(), constants.GetS3BaseURL())
	case "local", "":
		return NewLocalStore(constants.GetOutDir())
	default:
		return nil, fmt.Errorf("unknown storage driver %q", constants.GetStorageDriver())
	}
}
