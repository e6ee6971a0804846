package history

import (
	"context"
	"errors"
	"testing"
	"time"

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

func TestRecorder_Record(t *testing.T) {
	db, mock := setupMockDB(t)
	rec := NewRecorder(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `sync_runs`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	run := &Run{CycleID: "c1", Pair: "docs", Status: "ok", StartedAt: time.Now(), FinishedAt: time.Now()}
	require.NoError(t, rec.Record(context.Background(), run))
	assert.Equal(t, uint(1), run.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorder_RecordError(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `sync_runs`").WillReturnError(errors.New("duplicate"))
	mock.ExpectRollback()

	err := NewRecorder(db).Record(context.Background(), &Run{CycleID: "c1"})
	assert.ErrorContains(t, err, "record run c1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorder_Recent(t *testing.T) {
	t.Run("FilteredByPair", func(t *testing.T) {
		db, mock := setupMockDB(t)
		rows := sqlmock.NewRows([]string{"id", "cycle_id", "pair", "status"}).
			AddRow(2, "c2", "docs", "ok").
			AddRow(1, "c1", "docs", "failed")
		mock.ExpectQuery("SELECT \\* FROM `sync_runs` WHERE pair = \\? ORDER BY started_at DESC LIMIT").
			WillReturnRows(rows)

		runs, err := NewRecorder(db).Recent(context.Background(), "docs", 5)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, "c2", runs[0].CycleID)
		assert.Equal(t, "failed", runs[1].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AllPairs", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery("SELECT \\* FROM `sync_runs` ORDER BY started_at DESC LIMIT").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		runs, err := NewRecorder(db).Recent(context.Background(), "", 0)
		require.NoError(t, err)
		assert.Empty(t, runs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("QueryError", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery("SELECT \\* FROM `sync_runs`").WillReturnError(errors.New("gone"))

		_, err := NewRecorder(db).Recent(context.Background(), "", 10)
		assert.ErrorContains(t, err, "gone")
	})
}
