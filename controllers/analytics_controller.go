package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ThreadsofDaemonS/aiblog/models"
	"github.com/ThreadsofDaemonS/aiblog/utils"
)

// AnalyticsController provides moderation and traffic statistics.
type AnalyticsController struct {
	db *gorm.DB
}

// NewAnalyticsController creates a new AnalyticsController instance.
func NewAnalyticsController(db *gorm.DB) *AnalyticsController {
	return &AnalyticsController{db: db}
}

type dailyBreakdownRow struct {
	Day             time.Time `gorm:"column:day"`
	TotalComments   int64     `gorm:"column:total_comments"`
	BlockedComments int64     `gorm:"column:blocked_comments"`
}

const dailyBreakdownQuery = `
SELECT
    DATE(created_at) AS day,
    COUNT(*) AS total_comments,
    SUM(CASE WHEN is_blocked THEN 1 ELSE 0 END) AS blocked_comments
FROM comments
WHERE created_at BETWEEN ? AND ?
GROUP BY day
ORDER BY day`

// CommentsDailyBreakdown returns per-day comment totals and how many of them
// were blocked, over an inclusive date range.
func (a *AnalyticsController) CommentsDailyBreakdown(ctx *gin.Context) {
	from, err := time.Parse("2006-01-02", ctx.Query("date_from"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40080, "date_from must be YYYY-MM-DD")
		return
	}
	to, err := time.Parse("2006-01-02", ctx.Query("date_to"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40081, "date_to must be YYYY-MM-DD")
		return
	}
	if to.Before(from) {
		utils.Error(ctx, http.StatusBadRequest, 40082, "date_to must not precede date_from")
		return
	}
	// Include the whole final day.
	to = to.Add(24*time.Hour - time.Nanosecond)

	var rows []dailyBreakdownRow
	if err := a.db.Raw(dailyBreakdownQuery, from, to).Scan(&rows).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to aggregate comments")
		return
	}

	items := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		items = append(items, gin.H{
			"date":             r.Day.Format("2006-01-02"),
			"total_comments":   r.TotalComments,
			"blocked_comments": r.BlockedComments,
		})
	}
	utils.Success(ctx, gin.H{"items": items})
}

// GetStats returns aggregate statistics for the blog.
func (a *AnalyticsController) GetStats(ctx *gin.Context) {
	var userCount int64
	var postCount int64
	var commentCount int64
	var blockedCount int64
	var dailyActive int64

	// Fall back to 0 instead of failing the whole endpoint
	if err := a.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		userCount = 0
	}
	if err := a.db.Model(&models.Post{}).Count(&postCount).Error; err != nil {
		postCount = 0
	}
	if err := a.db.Model(&models.Comment{}).Count(&commentCount).Error; err != nil {
		commentCount = 0
	}
	if err := a.db.Model(&models.Comment{}).Where("is_blocked = ?", true).Count(&blockedCount).Error; err != nil {
		blockedCount = 0
	}

	// Daily active (PV-based): sum of today's page views across all paths.
	// String date equality avoids timezone/type mismatches with DATE columns.
	today := time.Now().In(time.Local).Format("2006-01-02")
	if err := a.db.Model(&models.PageView{}).
		Where("date = ?", today).
		Select("COALESCE(SUM(count),0)").
		Scan(&dailyActive).Error; err != nil {
		dailyActive = 0
	}

	utils.Success(ctx, gin.H{
		"user_count":            userCount,
		"post_count":            postCount,
		"comment_count":         commentCount,
		"blocked_comment_count": blockedCount,
		"daily_active_count":    dailyActive,
	})
}

// GetPostStats returns PV and comment counts for a given post id.
func (a *AnalyticsController) GetPostStats(ctx *gin.Context) {
	id := ctx.Param("id")

	var pv int64
	path := "/api/v1/posts/" + id
	if err := a.db.Model(&models.PageView{}).
		Where("path = ?", path).
		Select("COALESCE(SUM(count),0)").
		Scan(&pv).Error; err != nil {
		pv = 0
	}

	var commentsCount int64
	if err := a.db.Model(&models.Comment{}).Where("post_id = ?", id).Count(&commentsCount).Error; err != nil {
		commentsCount = 0
	}

	utils.Success(ctx, gin.H{
		"pv":             pv,
		"comments_count": commentsCount,
	})
}
