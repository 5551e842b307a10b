package utils

import (
	"time"

	"gorm.io/gorm"

	"github.com/ThreadsofDaemonS/aiblog/config"
	"github.com/ThreadsofDaemonS/aiblog/models"
)

// StartModerationSweeper launches a background goroutine that periodically
// purges blocked comments older than the configured retention window. It is
// best-effort and logs failures. Disabled when BlockedRetentionDays <= 0.
func StartModerationSweeper(db *gorm.DB, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)

			c := config.Get()
			if c.BlockedRetentionDays <= 0 {
				continue
			}
			cutoff := time.Now().AddDate(0, 0, -c.BlockedRetentionDays)
			res := db.Where("is_blocked = ? AND created_at < ?", true, cutoff).
				Limit(500).
				Delete(&models.Comment{})
			if res.Error != nil {
				if Sugar != nil {
					Sugar.Warnf("moderation sweeper delete failed: %v", res.Error)
				}
				continue
			}
			if res.RowsAffected > 0 && Sugar != nil {
				Sugar.Infof("moderation sweeper purged %d blocked comments older than %s", res.RowsAffected, cutoff.Format("2006-01-02"))
			}
		}
	}()
}
