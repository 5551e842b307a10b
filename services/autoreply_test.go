package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThreadsofDaemonS/aiblog/models"
)

func newTestScheduler(t *testing.T, gen TextGenerator, workers int) (*AutoReplyScheduler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTestDB(t)
	s := NewAutoReplyScheduler(db, NewReplier(gen, nil), workers, 16, nil)
	s.delayFloor = 10 * time.Millisecond
	s.Start()
	t.Cleanup(s.Shutdown)
	return s, mock
}

func postRows(id, userID uint, enabled bool, delaySec int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "title", "content", "is_blocked", "auto_reply_enabled", "reply_delay_sec"}).
		AddRow(id, userID, "a post", "post body", false, enabled, delaySec)
}

func expectPostLookup(mock sqlmock.Sqlmock, rows *sqlmock.Rows) {
	mock.ExpectQuery("SELECT \\* FROM `posts`").WillReturnRows(rows)
}

func expectReplyInsert(mock sqlmock.Sqlmock, postID, userID uint, content string) {
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `comments`").
		WithArgs(postID, userID, content, false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
}

func awaitExpectations(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	require.Eventually(t, func() bool {
		return mock.ExpectationsWereMet() == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulerRepliesToEligibleComment(t *testing.T) {
	gen := &fakeGenerator{response: "Glad you liked it!"}
	s, mock := newTestScheduler(t, gen, 1)

	expectPostLookup(mock, postRows(7, 1, true, 0))
	expectReplyInsert(mock, 7, 3, "Glad you liked it!")

	ok := s.Enqueue(models.Comment{ID: 42, PostID: 7, UserID: 3, Content: "love this"})

	require.True(t, ok)
	awaitExpectations(t, mock)
	assert.Equal(t, 1, gen.callCount())
}

func TestSchedulerSkipsDisabledPost(t *testing.T) {
	gen := &fakeGenerator{response: "should not be used"}
	s, mock := newTestScheduler(t, gen, 1)

	expectPostLookup(mock, postRows(7, 1, false, 0))

	require.True(t, s.Enqueue(models.Comment{ID: 42, PostID: 7, UserID: 3, Content: "hi"}))
	awaitExpectations(t, mock)

	// No insert was expected; give the worker a moment to prove it stays idle.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, gen.callCount())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchedulerSkipsSelfComment(t *testing.T) {
	gen := &fakeGenerator{response: "should not be used"}
	s, mock := newTestScheduler(t, gen, 1)

	// Commenter is the post owner.
	expectPostLookup(mock, postRows(7, 3, true, 0))

	require.True(t, s.Enqueue(models.Comment{ID: 42, PostID: 7, UserID: 3, Content: "bump"}))
	awaitExpectations(t, mock)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, gen.callCount())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchedulerIgnoresMissingPost(t *testing.T) {
	gen := &fakeGenerator{response: "should not be used"}
	s, mock := newTestScheduler(t, gen, 1)

	expectPostLookup(mock, sqlmock.NewRows([]string{"id"}))

	require.True(t, s.Enqueue(models.Comment{ID: 42, PostID: 404, UserID: 3, Content: "hi"}))
	awaitExpectations(t, mock)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, gen.callCount())
}

func TestSchedulerSwallowsInsertFailure(t *testing.T) {
	gen := &fakeGenerator{response: "hi back"}
	s, mock := newTestScheduler(t, gen, 1)

	expectPostLookup(mock, postRows(7, 1, true, 0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `comments`").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	require.True(t, s.Enqueue(models.Comment{ID: 42, PostID: 7, UserID: 3, Content: "hi"}))
	awaitExpectations(t, mock)
}

func TestSchedulerHandlesConcurrentComments(t *testing.T) {
	gen := &fakeGenerator{response: "thanks both"}
	s, mock := newTestScheduler(t, gen, 2)
	mock.MatchExpectationsInOrder(false)

	expectPostLookup(mock, postRows(7, 1, true, 0))
	expectPostLookup(mock, postRows(7, 1, true, 0))
	expectReplyInsert(mock, 7, 3, "thanks both")
	expectReplyInsert(mock, 7, 4, "thanks both")

	require.True(t, s.Enqueue(models.Comment{ID: 42, PostID: 7, UserID: 3, Content: "first"}))
	require.True(t, s.Enqueue(models.Comment{ID: 43, PostID: 7, UserID: 4, Content: "second"}))

	awaitExpectations(t, mock)
	assert.Equal(t, 2, gen.callCount())
}

func TestSchedulerRaisesSubSecondDelayToFloor(t *testing.T) {
	db, mock := newTestDB(t)
	gen := &fakeGenerator{response: "eventually"}
	s := NewAutoReplyScheduler(db, NewReplier(gen, nil), 1, 16, nil)
	require.Equal(t, time.Second, s.delayFloor)
	s.Start()
	t.Cleanup(s.Shutdown)

	expectPostLookup(mock, postRows(7, 1, true, 0))
	expectReplyInsert(mock, 7, 3, "eventually")

	require.True(t, s.Enqueue(models.Comment{ID: 42, PostID: 7, UserID: 3, Content: "hi"}))

	// The post's zero delay is raised to the floor, so well before one
	// second nothing has been generated yet.
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 0, gen.callCount())

	awaitExpectations(t, mock)
	assert.Equal(t, 1, gen.callCount())
}

func TestSchedulerDropsWhenQueueFull(t *testing.T) {
	db, _ := newTestDB(t)
	s := NewAutoReplyScheduler(db, NewReplier(nil, nil), 1, 1, nil)
	// Not started: nothing drains the queue, so the second enqueue must drop.

	assert.True(t, s.Enqueue(models.Comment{ID: 1, PostID: 7, UserID: 3}))
	assert.False(t, s.Enqueue(models.Comment{ID: 2, PostID: 7, UserID: 4}))
}

func TestSchedulerRejectsAfterShutdown(t *testing.T) {
	db, _ := newTestDB(t)
	s := NewAutoReplyScheduler(db, NewReplier(nil, nil), 1, 4, nil)
	s.Start()
	s.Shutdown()

	assert.False(t, s.Enqueue(models.Comment{ID: 1, PostID: 7, UserID: 3}))
}
