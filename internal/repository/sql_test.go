package repository

import (
    "context"
    "database/sql"
    "errors"
    "regexp"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() {
        assert.NoError(t, mock.ExpectationsWereMet())
        _ = db.Close()
    })
    return db, mock
}

var stamp = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func accessRow(userID, courseID uint64, accessType string, expiry any) *sqlmock.Rows {
    return sqlmock.NewRows([]string{"id", "user_id", "course_id", "access_type", "expiry_date", "created_at", "updated_at"}).
        AddRow(1, userID, courseID, accessType, expiry, stamp, stamp)
}

func documentRow(id uint64, published, featured bool, version int64) *sqlmock.Rows {
    return sqlmock.NewRows([]string{"id", "title", "content", "category", "magazine_id", "sort_order", "author",
        "publish_date", "is_published", "is_featured", "version", "created_at", "updated_at"}).
        AddRow(id, "t", "", "news", nil, 0, "", nil, published, featured, version, stamp, stamp)
}

const (
    upsertAccess = "INSERT INTO course_access (user_id, course_id, access_type, expiry_date) VALUES (?, ?, ?, ?) " +
        "ON DUPLICATE KEY UPDATE access_type = VALUES(access_type), expiry_date = VALUES(expiry_date)"
    selectAccess = "FROM course_access WHERE user_id = ? AND course_id = ?"
    selectDoc    = "FROM documents WHERE id = ?"
)

func TestCourseAccessUpsertIsOneStatement(t *testing.T) {
    ctx := context.Background()

    t.Run("with expiry", func(t *testing.T) {
        db, mock := newMock(t)
        expiry := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
        mock.ExpectExec(regexp.QuoteMeta(upsertAccess)).
            WithArgs(uint64(7), uint64(3), "trial", expiry).
            WillReturnResult(sqlmock.NewResult(0, 2)) // MySQL reports 2 when an existing row was updated
        mock.ExpectQuery(regexp.QuoteMeta(selectAccess)).
            WithArgs(uint64(7), uint64(3)).
            WillReturnRows(accessRow(7, 3, "trial", expiry))

        a, err := NewCourseAccessRepo(db).Upsert(ctx, 7, 3, "trial", &expiry)
        require.NoError(t, err)
        assert.Equal(t, "trial", a.AccessType)
        require.NotNil(t, a.ExpiryDate)
        assert.True(t, a.ExpiryDate.Equal(expiry))
    })

    t.Run("without expiry writes NULL", func(t *testing.T) {
        db, mock := newMock(t)
        mock.ExpectExec(regexp.QuoteMeta(upsertAccess)).
            WithArgs(uint64(7), uint64(3), "granted", nil).
            WillReturnResult(sqlmock.NewResult(1, 1))
        mock.ExpectQuery(regexp.QuoteMeta(selectAccess)).
            WithArgs(uint64(7), uint64(3)).
            WillReturnRows(accessRow(7, 3, "granted", nil))

        a, err := NewCourseAccessRepo(db).Upsert(ctx, 7, 3, "granted", nil)
        require.NoError(t, err)
        assert.Nil(t, a.ExpiryDate)
    })

    t.Run("write failure skips the read", func(t *testing.T) {
        db, mock := newMock(t)
        mock.ExpectExec(regexp.QuoteMeta(upsertAccess)).WillReturnError(errors.New("fk violation"))
        _, err := NewCourseAccessRepo(db).Upsert(ctx, 7, 3, "granted", nil)
        assert.EqualError(t, err, "fk violation")
    })
}

func TestCourseAccessDeleteReportsExistence(t *testing.T) {
    db, mock := newMock(t)
    const q = "DELETE FROM course_access WHERE user_id = ? AND course_id = ?"
    mock.ExpectExec(regexp.QuoteMeta(q)).WithArgs(uint64(7), uint64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec(regexp.QuoteMeta(q)).WithArgs(uint64(7), uint64(3)).WillReturnResult(sqlmock.NewResult(0, 0))

    repo := NewCourseAccessRepo(db)
    removed, err := repo.Delete(context.Background(), 7, 3)
    require.NoError(t, err)
    assert.True(t, removed)
    removed, err = repo.Delete(context.Background(), 7, 3)
    require.NoError(t, err)
    assert.False(t, removed)
}

func TestCourseAccessGetMissing(t *testing.T) {
    db, mock := newMock(t)
    mock.ExpectQuery(regexp.QuoteMeta(selectAccess)).WithArgs(uint64(7), uint64(3)).
        WillReturnError(sql.ErrNoRows)
    _, err := NewCourseAccessRepo(db).Get(context.Background(), 7, 3)
    assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleFeaturedIsOneStatement(t *testing.T) {
    const toggle = "UPDATE documents SET is_featured = NOT is_featured, version = version + 1"
    ctx := context.Background()

    t.Run("flips and reloads", func(t *testing.T) {
        db, mock := newMock(t)
        mock.ExpectExec(regexp.QuoteMeta(toggle)).WithArgs(uint64(5)).WillReturnResult(sqlmock.NewResult(0, 1))
        mock.ExpectQuery(regexp.QuoteMeta(selectDoc)).WithArgs(uint64(5)).WillReturnRows(documentRow(5, false, true, 2))

        d, err := NewDocumentRepo(db).ToggleFeatured(ctx, 5)
        require.NoError(t, err)
        assert.True(t, d.IsFeatured)
        assert.False(t, d.IsPublished)
        assert.Equal(t, int64(2), d.Version)
    })

    t.Run("missing row", func(t *testing.T) {
        db, mock := newMock(t)
        mock.ExpectExec(regexp.QuoteMeta(toggle)).WithArgs(uint64(5)).WillReturnResult(sqlmock.NewResult(0, 0))
        _, err := NewDocumentRepo(db).ToggleFeatured(ctx, 5)
        assert.ErrorIs(t, err, ErrNotFound)
    })
}

func TestUpdateFlagsVersionCheck(t *testing.T) {
    const cas = "UPDATE documents SET version = version + 1, updated_at = CURRENT_TIMESTAMP, is_featured = ? WHERE id = ? AND version = ?"
    ctx := context.Background()
    on := true
    v := int64(3)

    t.Run("matching version writes", func(t *testing.T) {
        db, mock := newMock(t)
        mock.ExpectExec(regexp.QuoteMeta(cas)).WithArgs(true, uint64(5), int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
        mock.ExpectQuery(regexp.QuoteMeta(selectDoc)).WithArgs(uint64(5)).WillReturnRows(documentRow(5, false, true, 4))

        d, err := NewDocumentRepo(db).UpdateFlags(ctx, 5, nil, &on, &v)
        require.NoError(t, err)
        assert.Equal(t, int64(4), d.Version)
    })

    t.Run("stale version is a conflict", func(t *testing.T) {
        db, mock := newMock(t)
        mock.ExpectExec(regexp.QuoteMeta(cas)).WithArgs(true, uint64(5), int64(3)).WillReturnResult(sqlmock.NewResult(0, 0))
        mock.ExpectQuery(regexp.QuoteMeta(selectDoc)).WithArgs(uint64(5)).WillReturnRows(documentRow(5, false, false, 9))

        _, err := NewDocumentRepo(db).UpdateFlags(ctx, 5, nil, &on, &v)
        assert.ErrorIs(t, err, ErrConflict)
        assert.NotErrorIs(t, err, ErrNotFound)
    })

    t.Run("missing row is not found", func(t *testing.T) {
        db, mock := newMock(t)
        mock.ExpectExec(regexp.QuoteMeta(cas)).WithArgs(true, uint64(5), int64(3)).WillReturnResult(sqlmock.NewResult(0, 0))
        mock.ExpectQuery(regexp.QuoteMeta(selectDoc)).WithArgs(uint64(5)).WillReturnError(sql.ErrNoRows)

        _, err := NewDocumentRepo(db).UpdateFlags(ctx, 5, nil, &on, &v)
        assert.ErrorIs(t, err, ErrNotFound)
        assert.NotErrorIs(t, err, ErrConflict)
    })

    t.Run("no version means no check", func(t *testing.T) {
        db, mock := newMock(t)
        const q = "UPDATE documents SET version = version + 1, updated_at = CURRENT_TIMESTAMP, is_published = ? WHERE id = ?"
        mock.ExpectExec(regexp.QuoteMeta(q) + "$").WithArgs(true, uint64(5)).WillReturnResult(sqlmock.NewResult(0, 1))
        mock.ExpectQuery(regexp.QuoteMeta(selectDoc)).WithArgs(uint64(5)).WillReturnRows(documentRow(5, true, false, 2))

        d, err := NewDocumentRepo(db).UpdateFlags(ctx, 5, &on, nil, nil)
        require.NoError(t, err)
        assert.True(t, d.IsPublished)
    })
}

func TestWorkshopDeleteTransaction(t *testing.T) {
    const (
        lock     = "SELECT id FROM workshops WHERE id = ? FOR UPDATE"
        count    = "SELECT COUNT(*) FROM workshop_registrations WHERE workshop_id = ?"
        dropRegs = "DELETE FROM workshop_registrations WHERE workshop_id = ?"
        dropWs   = "DELETE FROM workshops WHERE id = ?"
    )
    ctx := context.Background()

    t.Run("registrations without cascade roll back", func(t *testing.T) {
        db, mock := newMock(t)
        mock.ExpectBegin()
        mock.ExpectQuery(regexp.QuoteMeta(lock)).WithArgs(uint64(9)).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
        mock.ExpectQuery(regexp.QuoteMeta(count)).WithArgs(uint64(9)).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))
        mock.ExpectRollback()

        removed, err := NewWorkshopRepo(db).Delete(ctx, 9, false)
        assert.ErrorIs(t, err, ErrConflict)
        assert.Zero(t, removed)
    })

    t.Run("cascade removes both and commits", func(t *testing.T) {
        db, mock := newMock(t)
        mock.ExpectBegin()
        mock.ExpectQuery(regexp.QuoteMeta(lock)).WithArgs(uint64(9)).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
        mock.ExpectQuery(regexp.QuoteMeta(count)).WithArgs(uint64(9)).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))
        mock.ExpectExec(regexp.QuoteMeta(dropRegs)).WithArgs(uint64(9)).WillReturnResult(sqlmock.NewResult(0, 2))
        mock.ExpectExec(regexp.QuoteMeta(dropWs)).WithArgs(uint64(9)).WillReturnResult(sqlmock.NewResult(0, 1))
        mock.ExpectCommit()

        removed, err := NewWorkshopRepo(db).Delete(ctx, 9, true)
        require.NoError(t, err)
        assert.Equal(t, int64(2), removed)
    })

    t.Run("failed cascade step rolls back", func(t *testing.T) {
        db, mock := newMock(t)
        mock.ExpectBegin()
        mock.ExpectQuery(regexp.QuoteMeta(lock)).WithArgs(uint64(9)).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
        mock.ExpectQuery(regexp.QuoteMeta(count)).WithArgs(uint64(9)).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))
        mock.ExpectExec(regexp.QuoteMeta(dropRegs)).WithArgs(uint64(9)).WillReturnResult(sqlmock.NewResult(0, 2))
        mock.ExpectExec(regexp.QuoteMeta(dropWs)).WithArgs(uint64(9)).WillReturnError(errors.New("lock wait timeout"))
        mock.ExpectRollback()

        _, err := NewWorkshopRepo(db).Delete(ctx, 9, true)
        assert.EqualError(t, err, "lock wait timeout")
    })

    t.Run("missing workshop", func(t *testing.T) {
        db, mock := newMock(t)
        mock.ExpectBegin()
        mock.ExpectQuery(regexp.QuoteMeta(lock)).WithArgs(uint64(9)).WillReturnRows(sqlmock.NewRows([]string{"id"}))
        mock.ExpectRollback()

        _, err := NewWorkshopRepo(db).Delete(ctx, 9, false)
        assert.ErrorIs(t, err, ErrNotFound)
    })
}
