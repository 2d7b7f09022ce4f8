package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	postColumns = []string{"id", "user_id", "title", "text", "points", "created_at", "updated_at"}
	userColumns = []string{"id", "username", "email", "password", "created_at", "updated_at"}
)

func singlePostRows(id, userID int64, title string) *sqlmock.Rows {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(postColumns).AddRow(id, userID, title, "body", int64(0), now, now)
}

func singleUserRows(id int64) *sqlmock.Rows {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(userColumns).AddRow(id, "sprout", "sprout@example.com", "hash", now, now)
}

func TestPostService_Create(t *testing.T) {
	conn, mock := newMockDB(t)
	svc := NewPostService(conn)

	mock.ExpectQuery(`INSERT INTO "posts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))
	// 回查带作者
	mock.ExpectQuery(`SELECT \* FROM "posts"`).
		WillReturnRows(singlePostRows(5, 1, "hi"))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(singleUserRows(1))

	post, err := svc.Create(context.Background(), 1, "hi", "body")
	require.NoError(t, err)
	assert.Equal(t, uint(5), post.ID)
	assert.Equal(t, 0, post.Points, "new posts start with zero points")
	assert.Equal(t, "sprout", post.User.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostService_GetNotFound(t *testing.T) {
	conn, mock := newMockDB(t)
	svc := NewPostService(conn)

	mock.ExpectQuery(`SELECT \* FROM "posts"`).
		WillReturnRows(sqlmock.NewRows(postColumns))

	post, err := svc.Get(context.Background(), 99)
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.Nil(t, post)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostService_UpdateWrongOwner(t *testing.T) {
	conn, mock := newMockDB(t)
	svc := NewPostService(conn)

	// WHERE 带上 user_id，改不到别人的帖子
	mock.ExpectExec(`UPDATE "posts" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	post, err := svc.Update(context.Background(), 2, 5, "new title", "new body")
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.Nil(t, post)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostService_Update(t *testing.T) {
	conn, mock := newMockDB(t)
	svc := NewPostService(conn)

	mock.ExpectExec(`UPDATE "posts" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "posts"`).
		WillReturnRows(singlePostRows(5, 1, "new title"))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(singleUserRows(1))

	post, err := svc.Update(context.Background(), 1, 5, "new title", "new body")
	require.NoError(t, err)
	assert.Equal(t, "new title", post.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostService_DeleteForeignPost(t *testing.T) {
	conn, mock := newMockDB(t)
	svc := NewPostService(conn)

	// 帖子属于用户 1，用户 2 来删
	mock.ExpectQuery(`SELECT \* FROM "posts"`).
		WillReturnRows(singlePostRows(5, 1, "hi"))

	err := svc.Delete(context.Background(), 2, 5)
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostService_Delete(t *testing.T) {
	conn, mock := newMockDB(t)
	svc := NewPostService(conn)

	mock.ExpectQuery(`SELECT \* FROM "posts"`).
		WillReturnRows(singlePostRows(5, 1, "hi"))
	mock.ExpectExec(`DELETE FROM "posts"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.Delete(context.Background(), 1, 5)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
