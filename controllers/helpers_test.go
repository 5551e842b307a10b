package controllers

import (
	"context"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ThreadsofDaemonS/aiblog/middleware"
	"github.com/ThreadsofDaemonS/aiblog/models"
	"github.com/ThreadsofDaemonS/aiblog/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

// stubGenerator satisfies services.TextGenerator with a canned answer.
type stubGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
}

func (g *stubGenerator) GenerateText(ctx context.Context, prompt string, opts services.GenOptions) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.response, g.err
}

// recordingQueue satisfies services.ReplyQueue and records handoffs.
type recordingQueue struct {
	mu       sync.Mutex
	accepted []models.Comment
}

func (q *recordingQueue) Enqueue(comment models.Comment) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.accepted = append(q.accepted, comment)
	return true
}

func (q *recordingQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.accepted)
}

// asUser injects an authenticated identity the way AuthRequired does.
func asUser(userID uint, username string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(middleware.ContextUserIDKey, userID)
		ctx.Set(middleware.ContextUsernameKey, username)
		ctx.Next()
	}
}
