package reconcile

import (
	"fmt"
	"testing"

	"github.com/carboneio/sclone/core/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id int, md5 string, lm int64) *storage.FileEntry {
	return &storage.FileEntry{Key: fmt.Sprintf("%d-file.txt", id), MD5: md5, LastModified: lm}
}

func keysOf(entries []*storage.FileEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Key
	}
	return out
}

// mixedState reproduces a pair with deletions, additions and edits on both sides.
func mixedState() *State {
	st := NewState(nil, nil, nil)
	for i := 0; i < 10; i++ {
		k := fmt.Sprintf("file%d", i)
		st.Source.Set(k, entry(i, fmt.Sprintf("%dadbc", i), 0))
		st.Cache.Set(k, entry(i, fmt.Sprintf("%dadbc", i), 0))
	}
	st.Cache.Set("file11", entry(11, "11adbc", 0))
	st.Target.Set("file11", entry(11, "11adbc", 0))
	st.Target.Set("file14", entry(14, "14adbc", 0))
	st.Source.Set("file12", entry(12, "12adbc", 0))
	st.Source.Set("file13", entry(13, "13adbc", 0))

	st.Source.Set("file15", entry(15, "15adbc", 1685107819))
	st.Target.Set("file15", entry(15, "15adbc", 1685107819))
	st.Cache.Set("file15", entry(15, "15adbc", 1685107819))

	st.Source.Set("file16", entry(16, "16adbc", 1685107819))
	st.Target.Set("file16", entry(16, "16ZZZZ", 1685109308))
	st.Cache.Set("file16", entry(16, "16adbc", 1685107819))

	st.Source.Set("file17", entry(17, "17WWWW", 1785109308))
	st.Target.Set("file17", entry(17, "17adbc", 1785107819))
	st.Cache.Set("file17", entry(17, "17adbc", 1785107819))
	return st
}

func TestComputeSync_InvalidMode(t *testing.T) {
	_, err := ComputeSync(NewState(nil, nil, nil), Policy{Mode: "sideways"})
	var me *ModeError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "sideways", me.Mode)
}

func TestComputeSync_Unidirectional(t *testing.T) {
	t.Run("FirstSyncUploadsEverything", func(t *testing.T) {
		for _, deletion := range []bool{true, false} {
			st := NewState(nil, nil, nil)
			for i := 0; i < 5; i++ {
				st.Source.Set(fmt.Sprint(i), entry(i, "x", 0))
			}
			ops, err := ComputeSync(st, Policy{Mode: Unidirectional, Deletion: deletion})
			require.NoError(t, err)
			assert.Len(t, ops.UploadTarget, 5)
			assert.Empty(t, ops.DeleteTarget)
			assert.Equal(t, 5, st.Target.Len())
			assert.Equal(t, 5, st.Cache.Len())
		}
	})

	t.Run("SourceWinsEvenWhenOlder", func(t *testing.T) {
		st := NewState(nil, nil, nil)
		st.Source.Set("a", entry(1, "old", 100))
		st.Target.Set("a", entry(1, "new", 200))

		ops, err := ComputeSync(st, Policy{Mode: Unidirectional})
		require.NoError(t, err)
		require.Len(t, ops.UploadTarget, 1)
		assert.True(t, ops.UploadTarget[0].Updated)
		assert.Equal(t, 1, ops.UpdatesTarget)
		got, _ := st.Target.Get("a")
		assert.Equal(t, "old", got.MD5)
	})

	t.Run("DeletesTargetOnlyWhenEnabled", func(t *testing.T) {
		st := NewState(nil, nil, nil)
		for i := 0; i < 10; i++ {
			st.Target.Set(fmt.Sprint(i), entry(i, "x", 0))
		}
		ops, err := ComputeSync(st, Policy{Mode: Unidirectional, Deletion: true})
		require.NoError(t, err)
		assert.Len(t, ops.DeleteTarget, 10)
		assert.Zero(t, st.Target.Len())
		assert.Zero(t, st.Source.Len())
		assert.Zero(t, st.Cache.Len())

		st = NewState(nil, nil, nil)
		st.Target.Set("t", entry(1, "x", 0))
		st.Source.Set("s", entry(2, "y", 0))
		ops, err = ComputeSync(st, Policy{Mode: Unidirectional, Deletion: false})
		require.NoError(t, err)
		assert.Empty(t, ops.DeleteTarget)
		assert.True(t, st.Target.Has("t"))
		assert.Empty(t, ops.UploadSource)
		assert.Empty(t, ops.DeleteSource)
	})
}

func TestComputeSync_Bidirectional(t *testing.T) {
	t.Run("NewerTargetWins", func(t *testing.T) {
		st := NewState(nil, nil, nil)
		st.Source.Set("A", &storage.FileEntry{Key: "A", MD5: "1", LastModified: 100})
		st.Target.Set("A", &storage.FileEntry{Key: "A", MD5: "2", LastModified: 200})

		ops, err := ComputeSync(st, Policy{Mode: Bidirectional, Deletion: true})
		require.NoError(t, err)
		require.Len(t, ops.UploadSource, 1)
		assert.Equal(t, "2", ops.UploadSource[0].MD5)
		assert.Equal(t, int64(200), ops.UploadSource[0].LastModified)
		assert.Empty(t, ops.UploadTarget)
		assert.Empty(t, ops.DeleteSource)
		assert.Empty(t, ops.DeleteTarget)
		got, _ := st.Source.Get("A")
		assert.Equal(t, "2", got.MD5)
	})

	t.Run("CachedButMissingOnSource", func(t *testing.T) {
		st := NewState(nil, nil, nil)
		st.Target.Set("a", entry(1, "x", 0))
		st.Cache.Set("a", entry(1, "x", 0))
		ops, err := ComputeSync(st, Policy{Mode: Bidirectional, Deletion: true})
		require.NoError(t, err)
		assert.Len(t, ops.DeleteTarget, 1)
		assert.False(t, st.Target.Has("a"))
		assert.False(t, st.Cache.Has("a"))

		st = NewState(nil, nil, nil)
		st.Target.Set("a", entry(1, "x", 0))
		st.Cache.Set("a", entry(1, "x", 0))
		ops, err = ComputeSync(st, Policy{Mode: Bidirectional, Deletion: false})
		require.NoError(t, err)
		assert.Empty(t, ops.DeleteTarget)
		assert.Len(t, ops.UploadSource, 1)
		assert.True(t, st.Source.Has("a"))
	})

	t.Run("MixedWithDeletion", func(t *testing.T) {
		st := mixedState()
		ops, err := ComputeSync(st, Policy{Mode: Bidirectional, Deletion: true})
		require.NoError(t, err)

		assert.Equal(t, []string{"11-file.txt"}, keysOf(ops.DeleteTarget))
		assert.Equal(t, []string{"14-file.txt", "16-file.txt"}, keysOf(ops.UploadSource))
		assert.Equal(t, []string{"12-file.txt", "13-file.txt", "17-file.txt"}, keysOf(ops.UploadTarget))
		require.Len(t, ops.DeleteSource, 10)
		assert.Equal(t, "0-file.txt", ops.DeleteSource[0].Key)
		assert.Equal(t, "9-file.txt", ops.DeleteSource[9].Key)

		assert.Equal(t, 6, st.Source.Len())
		assert.Equal(t, 6, st.Target.Len())
		assert.Equal(t, 6, st.Cache.Len())

		f17, _ := st.Target.Get("file17")
		assert.Equal(t, "17WWWW", f17.MD5)
		assert.Equal(t, int64(1785109308), f17.LastModified)
		f16, _ := st.Target.Get("file16")
		assert.Equal(t, "16ZZZZ", f16.MD5)
		assert.Equal(t, 1, ops.UpdatesSource)
		assert.Equal(t, 1, ops.UpdatesTarget)
	})

	t.Run("MixedWithoutDeletion", func(t *testing.T) {
		st := mixedState()
		ops, err := ComputeSync(st, Policy{Mode: Bidirectional, Deletion: false})
		require.NoError(t, err)

		assert.Empty(t, ops.DeleteTarget)
		assert.Empty(t, ops.DeleteSource)
		assert.Len(t, ops.UploadTarget, 13)
		assert.Len(t, ops.UploadSource, 3)
		assert.Equal(t, "11-file.txt", ops.UploadSource[0].Key)
		assert.Equal(t, "16-file.txt", ops.UploadSource[2].Key)
		assert.Equal(t, "0-file.txt", ops.UploadTarget[0].Key)
		assert.Equal(t, "17-file.txt", ops.UploadTarget[12].Key)

		assert.Equal(t, 17, st.Source.Len())
		assert.Equal(t, 17, st.Target.Len())
		assert.Equal(t, 17, st.Cache.Len())
	})

	t.Run("EqualContentIsLeftAlone", func(t *testing.T) {
		st := NewState(nil, nil, nil)
		st.Source.Set("a", entry(1, "same", 100))
		st.Target.Set("a", entry(1, "same", 900))
		ops, err := ComputeSync(st, Policy{Mode: Bidirectional, Deletion: true})
		require.NoError(t, err)
		assert.True(t, ops.Empty())
	})
}

func TestComputeSync_TieBreak(t *testing.T) {
	build := func() *State {
		st := NewState(nil, nil, nil)
		st.Source.Set("a", &storage.FileEntry{Key: "a", MD5: "aaa", LastModified: 500})
		st.Target.Set("a", &storage.FileEntry{Key: "a", MD5: "bbb", LastModified: 500})
		st.Cache.Set("a", &storage.FileEntry{Key: "a", MD5: "000", LastModified: 100})
		return st
	}

	tests := []struct {
		rule         TieBreak
		uploadSource int
		uploadTarget int
		winner       string
	}{
		{TieNone, 0, 0, ""},
		{"", 0, 0, ""},
		{TieSource, 0, 1, "aaa"},
		{TieTarget, 1, 0, "bbb"},
		{TieHash, 1, 0, "bbb"},
	}
	for _, tt := range tests {
		t.Run(string(tt.rule), func(t *testing.T) {
			st := build()
			ops, err := ComputeSync(st, Policy{Mode: Bidirectional, Deletion: true, TieBreak: tt.rule})
			require.NoError(t, err)
			assert.Equal(t, []string{"a"}, ops.Conflicts)
			assert.Len(t, ops.UploadSource, tt.uploadSource)
			assert.Len(t, ops.UploadTarget, tt.uploadTarget)
			if tt.winner != "" {
				s, _ := st.Source.Get("a")
				g, _ := st.Target.Get("a")
				assert.Equal(t, tt.winner, s.MD5)
				assert.Equal(t, tt.winner, g.MD5)
			}
		})
	}
}

func TestComputeSync_Idempotent(t *testing.T) {
	for _, policy := range []Policy{
		{Mode: Bidirectional, Deletion: true},
		{Mode: Bidirectional, Deletion: false},
		{Mode: Unidirectional, Deletion: true},
	} {
		t.Run(fmt.Sprintf("%s-%v", policy.Mode, policy.Deletion), func(t *testing.T) {
			st := mixedState()
			_, err := ComputeSync(st, policy)
			require.NoError(t, err)

			ops, err := ComputeSync(st, policy)
			require.NoError(t, err)
			assert.True(t, ops.Empty())
		})
	}
}

func TestCheckDeletionLimit(t *testing.T) {
	ops := &OperationSet{DeleteTarget: make([]*storage.FileEntry, 101)}
	err := ops.CheckDeletionLimit(100)
	var se *SafetyThresholdError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "target", se.Side)
	assert.Equal(t, 101, se.Count)

	assert.NoError(t, ops.CheckDeletionLimit(101))
	assert.NoError(t, ops.CheckDeletionLimit(-1))

	ops = &OperationSet{DeleteSource: make([]*storage.FileEntry, 3)}
	assert.Error(t, ops.CheckDeletionLimit(2))
}
