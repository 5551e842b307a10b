package models

import "time"

// Post is a blog entry created by a user. IsBlocked is decided once by the
// moderation service when the post is written. AutoReplyEnabled and
// ReplyDelaySec control the delayed auto-reply behavior for comments on
// this post.
type Post struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"index;not null" json:"user_id"`
	Title            string    `gorm:"size:255;not null" json:"title"`
	Content          string    `gorm:"type:text;not null" json:"content"`
	IsBlocked        bool      `gorm:"not null;default:false" json:"is_blocked"`
	AutoReplyEnabled bool      `gorm:"not null;default:false" json:"auto_reply_enabled"`
	ReplyDelaySec    int       `gorm:"not null;default:0" json:"reply_delay_sec"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	User             User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Comments         []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments"`
}
