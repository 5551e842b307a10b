package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func breakdownRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTestDB(t)
	r := gin.New()
	r.GET("/analytics/comments-daily-breakdown", NewAnalyticsController(db).CommentsDailyBreakdown)
	return r, mock
}

func TestCommentsDailyBreakdown(t *testing.T) {
	r, mock := breakdownRouter(t)

	rows := sqlmock.NewRows([]string{"day", "total_comments", "blocked_comments"}).
		AddRow(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), 12, 3).
		AddRow(time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC), 5, 0)
	mock.ExpectQuery("SELECT(?s).*DATE\\(created_at\\) AS day").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/analytics/comments-daily-breakdown?date_from=2026-08-01&date_to=2026-08-02", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Code int `json:"code"`
		Data struct {
			Items []struct {
				Date            string `json:"date"`
				TotalComments   int64  `json:"total_comments"`
				BlockedComments int64  `json:"blocked_comments"`
			} `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Code)
	require.Len(t, body.Data.Items, 2)
	assert.Equal(t, "2026-08-01", body.Data.Items[0].Date)
	assert.Equal(t, int64(12), body.Data.Items[0].TotalComments)
	assert.Equal(t, int64(3), body.Data.Items[0].BlockedComments)
	assert.Equal(t, "2026-08-02", body.Data.Items[1].Date)
	assert.Equal(t, int64(0), body.Data.Items[1].BlockedComments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentsDailyBreakdownEmptyRange(t *testing.T) {
	r, mock := breakdownRouter(t)

	mock.ExpectQuery("SELECT(?s).*DATE\\(created_at\\) AS day").
		WillReturnRows(sqlmock.NewRows([]string{"day", "total_comments", "blocked_comments"}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/analytics/comments-daily-breakdown?date_from=2026-08-01&date_to=2026-08-01", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items":[]`)
}

func TestCommentsDailyBreakdownValidation(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"missing dates", ""},
		{"malformed date_from", "?date_from=08-01-2026&date_to=2026-08-02"},
		{"malformed date_to", "?date_from=2026-08-01&date_to=yesterday"},
		{"inverted range", "?date_from=2026-08-02&date_to=2026-08-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := breakdownRouter(t)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/analytics/comments-daily-breakdown"+tt.query, nil)
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGetPostStats(t *testing.T) {
	db, mock := newTestDB(t)
	r := gin.New()
	r.GET("/posts/:id/stats", NewAnalyticsController(db).GetPostStats)

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(count\\),0\\) FROM `page_views`").
		WithArgs("/api/v1/posts/7").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(31))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `comments`").
		WithArgs("7").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/posts/7/stats", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pv":31`)
	assert.Contains(t, w.Body.String(), `"comments_count":4`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
