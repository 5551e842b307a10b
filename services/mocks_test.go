package services

import (
	"context"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ThreadsofDaemonS/aiblog/models"
)

// fakeGenerator is a TextGenerator double that records invocations and
// returns a configured response or error.
type fakeGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
	prompts  []string
	lastOpts GenOptions
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string, opts GenOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.lastOpts = opts
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeQueue records comments handed to the reply queue.
type fakeQueue struct {
	mu       sync.Mutex
	accepted []models.Comment
}

func (f *fakeQueue) Enqueue(comment models.Comment) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accepted = append(f.accepted, comment)
	return true
}

func (f *fakeQueue) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.accepted)
}

// newTestDB builds a gorm DB backed by sqlmock.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return gdb, mock
}
