package services

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ThreadsofDaemonS/aiblog/models"
)

// CommentService orchestrates classification, persistence and reply
// scheduling for new comments. Blocking suppresses the downstream reply, not
// storage: blocked comments are persisted with the flag set. Only storage
// errors reach the caller; moderation and scheduling problems never do.
type CommentService struct {
	db        *gorm.DB
	moderator *Moderator
	queue     ReplyQueue
	log       *zap.SugaredLogger
}

// NewCommentService wires the ingestion policy. queue may be nil when
// auto-reply is not deployed; clean comments are then simply not scheduled.
func NewCommentService(db *gorm.DB, moderator *Moderator, queue ReplyQueue, log *zap.SugaredLogger) *CommentService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &CommentService{db: db, moderator: moderator, queue: queue, log: log}
}

// Create classifies the content, persists the comment with the verdict and,
// iff the comment is clean, hands it to the reply queue. The returned comment
// carries the server-assigned id and timestamp.
func (s *CommentService) Create(ctx context.Context, userID, postID uint, content string) (*models.Comment, error) {
	blocked := s.moderator.Classify(ctx, content)

	comment := models.Comment{
		PostID:    postID,
		UserID:    userID,
		Content:   content,
		IsBlocked: blocked,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, err
	}

	if !blocked && s.queue != nil {
		// Non-blocking handoff: the commenter sees their comment now; the
		// reply, if any, arrives later on a scheduler worker.
		s.queue.Enqueue(comment)
	}

	return &comment, nil
}

// ListByPost returns all comments of a post in creation order.
func (s *CommentService) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
