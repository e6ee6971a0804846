package cmd

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/carboneio/sclone/core/config"
	"github.com/carboneio/sclone/core/reconcile"
	"github.com/carboneio/sclone/core/server"
	"github.com/carboneio/sclone/core/snapshot"
	"github.com/carboneio/sclone/core/storage"
	"github.com/carboneio/sclone/core/storage/mocks"
	"github.com/carboneio/sclone/feature/pairsync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewApp(t *testing.T) {
	dir := t.TempDir()
	rt := &deps{
		cfg: &config.Config{Server: server.Config{Port: "8080", ApiKey: "secret"}},
		log: zap.NewNop(),
	}
	syncCfg := pairsync.Config{Name: "docs", Transfers: 1, LockFile: filepath.Join(dir, "lock"), ArtifactDir: dir}
	pair := pairsync.Pair{Name: "docs", Source: new(mocks.Adapter), Target: new(mocks.Adapter), Policy: reconcile.Policy{Mode: reconcile.Unidirectional}}
	svc := pairsync.NewService(pair, syncCfg, snapshot.NewFileStore(filepath.Join(dir, "cache.json")), zap.NewNop(), pairsync.WithOutput(io.Discard))

	app, err := newApp(context.Background(), rt, svc)
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		key  string
		want int
	}{
		{"HealthIsPublic", "/health", "", 200},
		{"StatusNeedsKey", "/sync/status", "", 401},
		{"StatusWithKey", "/sync/status", "secret", 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("X-Ray-ID"))
		})
	}
}

func TestSummarize(t *testing.T) {
	a := &mocks.Adapter{BackendKind: storage.KindSwift}
	a.On("Ping", mock.Anything).Return(nil)
	a.On("List", mock.Anything, storage.ListOptions{}).Return([]storage.FileEntry{{Key: "a", Bytes: 1024}, {Key: "b", Bytes: 1024}}, nil)

	s, err := summarize(context.Background(), "source", a)
	require.NoError(t, err)
	assert.Equal(t, 2, s.objects)
	assert.Equal(t, int64(2048), s.bytes)
	assert.Equal(t, storage.KindSwift, s.kind)

	down := new(mocks.Adapter)
	down.On("Ping", mock.Anything).Return(errors.New("connection refused"))
	_, err = summarize(context.Background(), "target", down)
	assert.ErrorContains(t, err, "target storage unreachable")
}

func TestVersionCommand(t *testing.T) {
	assert.NotEmpty(t, version())
	for _, name := range []string{"sync", "start", "check", "version"} {
		c, _, err := RootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
	}
}
