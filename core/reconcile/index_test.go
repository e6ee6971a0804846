package reconcile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/carboneio/sclone/core/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_Order(t *testing.T) {
	idx := NewIndex()
	idx.Set("b", &storage.FileEntry{Key: "b"})
	idx.Set("a", &storage.FileEntry{Key: "a"})
	idx.Set("c", &storage.FileEntry{Key: "c"})
	idx.Set("b", &storage.FileEntry{Key: "b", MD5: "new"})

	assert.Equal(t, []string{"b", "a", "c"}, idx.Keys())
	got, ok := idx.Get("b")
	require.True(t, ok)
	assert.Equal(t, "new", got.MD5)

	assert.True(t, idx.Delete("a"))
	assert.False(t, idx.Delete("a"))
	assert.Equal(t, []string{"b", "c"}, idx.Keys())
	assert.Equal(t, 2, idx.Len())
}

func TestIndex_KeysIsASnapshot(t *testing.T) {
	idx := IndexOf([]storage.FileEntry{{Key: "x"}, {Key: "y"}})
	keys := idx.Keys()
	for _, k := range keys {
		idx.Delete(k)
		idx.Set(k+"2", &storage.FileEntry{Key: k + "2"})
	}
	assert.Equal(t, []string{"x", "y"}, keys)
	assert.Equal(t, []string{"x2", "y2"}, idx.Keys())
}

func TestIndex_JSON(t *testing.T) {
	idx := NewIndex()
	idx.Set("file1", &storage.FileEntry{Key: "1-file.txt", MD5: "abc", LastModified: 1685107819, Bytes: 12})

	data, err := json.Marshal(idx)
	require.NoError(t, err)
	assert.JSONEq(t, `[["file1",{"key":"1-file.txt","md5":"abc","lastmodified":1685107819,"bytes":12}]]`, string(data))

	var back Index
	require.NoError(t, json.Unmarshal(data, &back))
	e, ok := back.Get("file1")
	require.True(t, ok)
	assert.Equal(t, int64(12), e.Bytes)

	var bad Index
	assert.Error(t, json.Unmarshal([]byte(`[["only-key"]]`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`{"not":"an array"}`), &bad))
}

func TestIndex_Clone(t *testing.T) {
	idx := IndexOf([]storage.FileEntry{{Key: "a", MD5: "1"}})
	c := idx.Clone()
	e, _ := c.Get("a")
	e.MD5 = "2"
	orig, _ := idx.Get("a")
	assert.Equal(t, "1", orig.MD5)
}

func TestWritePlan(t *testing.T) {
	dir := t.TempDir()
	ops := &OperationSet{DeleteTarget: []*storage.FileEntry{{Key: "gone"}}}

	path, err := WritePlan(dir, "docs", Policy{Mode: Bidirectional, Deletion: true}, ops)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var plan Plan
	require.NoError(t, json.Unmarshal(data, &plan))
	assert.Equal(t, 1, plan.Counts.DeleteTarget)
	assert.Equal(t, "gone", plan.Ops.DeleteTarget[0].Key)
}
