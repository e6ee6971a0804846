package mocks

import (
	"context"

	"github.com/carboneio/sclone/core/storage"

	"github.com/stretchr/testify/mock"
)

// Adapter is a mock implementation of storage.Adapter
type Adapter struct {
	mock.Mock
	// BackendKind is returned by Kind without recording a call.
	BackendKind storage.Kind
}

func (m *Adapter) Kind() storage.Kind {
	if m.BackendKind == "" {
		return storage.KindS3
	}
	return m.BackendKind
}

func (m *Adapter) Bucket() string {
	return "mock-" + string(m.Kind())
}

func (m *Adapter) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *Adapter) List(ctx context.Context, opts storage.ListOptions) ([]storage.FileEntry, error) {
	args := m.Called(ctx, opts)
	entries, _ := args.Get(0).([]storage.FileEntry)
	return entries, args.Error(1)
}

func (m *Adapter) Download(ctx context.Context, key string) (*storage.Object, error) {
	args := m.Called(ctx, key)
	obj, _ := args.Get(0).(*storage.Object)
	return obj, args.Error(1)
}

func (m *Adapter) Upload(ctx context.Context, key string, content []byte, headers map[string]string) error {
	args := m.Called(ctx, key, content, headers)
	return args.Error(0)
}

func (m *Adapter) Delete(ctx context.Context, keys []string) (*storage.DeleteResult, error) {
	args := m.Called(ctx, keys)
	res, _ := args.Get(0).(*storage.DeleteResult)
	return res, args.Error(1)
}
