package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedSelectSQL = `SELECT p\.id, p\.title, p\.text, p\.points, p\.created_at, p\.updated_at`

var feedColumns = []string{
	"id", "title", "text", "points", "created_at", "updated_at",
	"author_id", "author_username", "author_email", "author_created_at", "author_updated_at",
	"vote_status",
}

func feedRows(n int, voteStatus interface{}) *sqlmock.Rows {
	rows := sqlmock.NewRows(feedColumns)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		created := base.Add(-time.Duration(i) * time.Hour)
		rows.AddRow(
			int64(n-i), fmt.Sprintf("post %d", n-i), "hello world", int64(i), created, created,
			int64(42), "sprout", "sprout@example.com", base, base,
			voteStatus,
		)
	}
	return rows
}

func TestListPosts_FirstPage(t *testing.T) {
	conn, mock := newMockDB(t)
	svc := NewFeedService(conn)

	// 要 3 条，给够 4 条，说明后面还有
	mock.ExpectQuery(feedSelectSQL).
		WithArgs(4).
		WillReturnRows(feedRows(4, nil))

	page, err := svc.ListPosts(context.Background(), 3, nil, nil)
	require.NoError(t, err)
	assert.True(t, page.HasMore)
	require.Len(t, page.Posts, 3)

	first := page.Posts[0]
	assert.Equal(t, uint(4), first.ID)
	assert.Equal(t, "hello world", first.Text)
	assert.Equal(t, "hello world", first.TextSnippet)
	assert.False(t, first.HasMoreText)
	assert.Equal(t, "", first.TheRestText)
	assert.Equal(t, uint(42), first.Author.ID)
	assert.Equal(t, "sprout", first.Author.Username)
	assert.Nil(t, first.VoteStatus, "anonymous viewers never see a vote status")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPosts_LastPage(t *testing.T) {
	conn, mock := newMockDB(t)
	svc := NewFeedService(conn)

	// 不足 limit+1 条就是最后一页
	mock.ExpectQuery(feedSelectSQL).
		WithArgs(11).
		WillReturnRows(feedRows(2, nil))

	page, err := svc.ListPosts(context.Background(), 10, nil, nil)
	require.NoError(t, err)
	assert.False(t, page.HasMore)
	assert.Len(t, page.Posts, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPosts_ClampsLimit(t *testing.T) {
	conn, mock := newMockDB(t)
	svc := NewFeedService(conn)

	// 超过 50 一律按 50 取，探测行是 51
	mock.ExpectQuery(feedSelectSQL).
		WithArgs(FeedMaxLimit + 1).
		WillReturnRows(feedRows(0, nil))

	page, err := svc.ListPosts(context.Background(), 1000, nil, nil)
	require.NoError(t, err)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.Posts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPosts_WithViewer(t *testing.T) {
	conn, mock := newMockDB(t)
	svc := NewFeedService(conn)

	viewer := uint(7)
	mock.ExpectQuery(feedSelectSQL).
		WithArgs(viewer, 3).
		WillReturnRows(feedRows(2, int64(1)))

	page, err := svc.ListPosts(context.Background(), 2, nil, &viewer)
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	require.NotNil(t, page.Posts[0].VoteStatus)
	assert.Equal(t, 1, *page.Posts[0].VoteStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPosts_WithCursor(t *testing.T) {
	conn, mock := newMockDB(t)
	svc := NewFeedService(conn)

	cursorTime := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cursor := fmt.Sprintf("%d", cursorTime.UnixMilli())

	mock.ExpectQuery(feedSelectSQL).
		WithArgs(cursorTime, 3).
		WillReturnRows(feedRows(1, nil))

	page, err := svc.ListPosts(context.Background(), 2, &cursor, nil)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPosts_BadCursor(t *testing.T) {
	conn, mock := newMockDB(t)
	svc := NewFeedService(conn)

	// 坏游标必须整体失败，而不是被当成没有游标
	cursor := "yesterday"
	page, err := svc.ListPosts(context.Background(), 10, &cursor, nil)
	assert.ErrorIs(t, err, ErrBadCursor)
	assert.Nil(t, page)
	assert.NoError(t, mock.ExpectationsWereMet(), "a bad cursor must not reach the database")
}
