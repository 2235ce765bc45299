package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"reelscribe/internal/config"
)

func newMockStore(t *testing.T, driver string) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	st, err := New(db, driver, WithClock(func() time.Time { return time.Unix(1700000000, 0) }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return st, mock
}

func TestSavePostInsertFailureRollsBack(t *testing.T) {
	st, mock := newMockStore(t, config.DriverSQLite)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM agents WHERE id = ?")).
		WithArgs("a-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM posts WHERE agent_id = ? AND shortcode = ?")).
		WithArgs("a-1", "X").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM filtered_posts WHERE agent_id = ? AND shortcode = ?")).
		WithArgs("a-1", "X").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM posts WHERE agent_id = ?")).
		WithArgs("a-1").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO posts")).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	res := st.SavePost(context.Background(), "a-1", "X", PostFields{})
	if res.Outcome != Failed || res.Err == nil {
		t.Fatalf("expected failure, got %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSavePostUsesRowLockOnPostgres(t *testing.T) {
	st, mock := newMockStore(t, config.DriverPostgres)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM agents WHERE id = $1 FOR UPDATE")).
		WithArgs("a-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM posts WHERE agent_id = $1 AND shortcode = $2")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM filtered_posts WHERE agent_id = $1 AND shortcode = $2")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectCommit()

	res := st.SavePost(context.Background(), "a-1", "X", PostFields{})
	if res.Outcome != Duplicate {
		t.Fatalf("expected duplicate, got %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSavePostUniqueViolationIsDuplicate(t *testing.T) {
	st, mock := newMockStore(t, config.DriverSQLite)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM agents").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a-1"))
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec("INSERT INTO posts").
		WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: posts.agent_id, posts.shortcode (2067)"))
	mock.ExpectRollback()

	res := st.SavePost(context.Background(), "a-1", "X", PostFields{})
	if res.Outcome != Duplicate || res.Err != nil {
		t.Fatalf("expected duplicate, got %+v", res)
	}
}

func TestSavePostRetriesBusyBegin(t *testing.T) {
	st, mock := newMockStore(t, config.DriverSQLite)

	mock.ExpectBegin().WillReturnError(errors.New("database is locked (5) (SQLITE_BUSY)"))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM agents").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a-1"))
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec("INSERT INTO posts").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res := st.SavePost(context.Background(), "a-1", "X", PostFields{})
	if res.Outcome != Saved || res.PostNumber != 1 || res.PostID != "a-1-post-001-1700000000" {
		t.Fatalf("expected saved after retry, got %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListShortcodesPropagatesQueryError(t *testing.T) {
	st, mock := newMockStore(t, config.DriverSQLite)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT shortcode FROM posts WHERE agent_id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"shortcode"}).AddRow("A"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT shortcode FROM filtered_posts WHERE agent_id = ?")).
		WillReturnError(errors.New("connection reset"))

	if _, _, err := st.ListShortcodes(context.Background(), "a-1"); err == nil {
		t.Fatal("expected error")
	}
}

func TestRecordFilteredSkipsStoredShortcode(t *testing.T) {
	st, mock := newMockStore(t, config.DriverSQLite)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM posts WHERE agent_id = ? AND shortcode = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectRollback()

	recorded, err := st.RecordFiltered(context.Background(), "a-1", "X", "no_video")
	if !errors.Is(err, ErrAlreadyStored) || recorded {
		t.Fatalf("RecordFiltered = %v, %v", recorded, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if v, sc := isUniqueViolation(errors.New("UNIQUE constraint failed: posts.agent_id, posts.post_number")); !v || sc {
		t.Fatalf("post_number violation misclassified: %v %v", v, sc)
	}
	if v, _ := isUniqueViolation(errors.New("boom")); v {
		t.Fatal("plain error is not a violation")
	}
}
