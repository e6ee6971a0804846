package snapshot

import (
	"context"
	"errors"
	"testing"

	"github.com/carboneio/sclone/core/reconcile"
	"github.com/carboneio/sclone/core/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// setupMockDB creates a mock GORM DB for testing.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestDBStore_Load(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewDBStore(db, "docs")

	rows := sqlmock.NewRows([]string{"id", "pair", "position", "key", "object_key", "md5", "last_modified", "bytes", "source_key", "target_key"}).
		AddRow(2, "docs", 0, "b", "b.txt", "2", 20, 5, "", "").
		AddRow(1, "docs", 1, "a", "a.txt", "1", 10, 3, "", "")
	mock.ExpectQuery("SELECT \\* FROM `sync_cache_entries` WHERE pair = \\? ORDER BY position").
		WithArgs("docs").
		WillReturnRows(rows)

	idx, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, idx.Keys())
	e, _ := idx.Get("a")
	assert.Equal(t, storage.FileEntry{Key: "a.txt", MD5: "1", LastModified: 10, Bytes: 3}, *e)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStore_Save(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewDBStore(db, "docs")

	idx := reconcile.NewIndex()
	idx.Set("a", &storage.FileEntry{Key: "a.txt", MD5: "1"})
	idx.Set("b", &storage.FileEntry{Key: "b.txt", MD5: "2"})

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `sync_cache_entries` WHERE pair = \\?").
		WithArgs("docs").
		WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectExec("INSERT INTO `sync_cache_entries`").
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectCommit()

	require.NoError(t, store.Save(context.Background(), idx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStore_SaveEmptySkipsInsert(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `sync_cache_entries`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, NewDBStore(db, "docs").Save(context.Background(), reconcile.NewIndex()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStore_SaveRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	idx := reconcile.NewIndex()
	idx.Set("a", &storage.FileEntry{Key: "a"})

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `sync_cache_entries`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO `sync_cache_entries`").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := NewDBStore(db, "docs").Save(context.Background(), idx)
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}
