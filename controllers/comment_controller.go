package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ThreadsofDaemonS/aiblog/models"
	"github.com/ThreadsofDaemonS/aiblog/services"
	"github.com/ThreadsofDaemonS/aiblog/utils"
)

// CommentController exposes the comment submission and listing endpoints.
// Submission runs through the ingestion policy: moderation verdict, durable
// write, and an invisible auto-reply handoff for clean comments. The response
// never indicates whether a reply was scheduled.
type CommentController struct {
	db       *gorm.DB
	comments *services.CommentService
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(db *gorm.DB, comments *services.CommentService) *CommentController {
	return &CommentController{db: db, comments: comments}
}

// CreateComment allows authenticated users to comment on posts. Clients may
// send an Idempotency-Key header to make retries safe; a replayed key returns
// the originally created comment.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid request payload")
		return
	}

	content := utils.Sanitize(req.Content)
	if strings.TrimSpace(content) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40023, "content cannot be empty")
		return
	}

	postID := ctx.Param("id")
	var post models.Post
	if err := c.db.First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40402, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to load post")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	idemKey := strings.TrimSpace(ctx.GetHeader("Idempotency-Key"))
	if idemKey != "" {
		if existingID, fresh := utils.IdempotencyClaim(userID, idemKey); !fresh {
			if existingID == 0 {
				// First submission with this key is still in flight.
				utils.Error(ctx, http.StatusConflict, 40902, "duplicate submission in progress")
				return
			}
			var existing models.Comment
			if err := c.db.Preload("User").First(&existing, existingID).Error; err == nil {
				utils.Success(ctx, gin.H{"comment": existing})
				return
			}
			// Recorded comment vanished; fall through and create a new one.
		}
	}

	comment, err := c.comments.Create(ctx.Request.Context(), userID, post.ID, content)
	if err != nil {
		// Free the claimed key so a retry with the same key is not stuck
		// behind this failed attempt.
		if idemKey != "" {
			utils.IdempotencyRelease(userID, idemKey)
		}
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to create comment")
		return
	}

	if idemKey != "" {
		utils.IdempotencyComplete(userID, idemKey, comment.ID)
	}

	if err := c.db.Preload("User").First(comment, comment.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to load comment")
		return
	}

	// Invalidate post detail cache on new comment
	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(post.ID)))

	utils.Success(ctx, gin.H{"comment": comment})
}

// ListPostComments returns all comments for a post in creation order.
func (c *CommentController) ListPostComments(ctx *gin.Context) {
	postID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid post id")
		return
	}

	comments, err := c.comments.ListByPost(ctx.Request.Context(), uint(postID))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to list comments")
		return
	}
	utils.Success(ctx, gin.H{"items": comments})
}

// DeleteComment allows the comment owner or an admin to delete a comment.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	cid := strings.TrimSpace(ctx.Param("commentId"))
	if cid == "" {
		utils.Error(ctx, http.StatusBadRequest, 40071, "missing comment id")
		return
	}
	var cmt models.Comment
	if err := c.db.First(&cmt, cid).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load comment")
		return
	}

	uid, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}
	if cmt.UserID != uid && !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40320, "you can only delete your own comment")
		return
	}
	if err := c.db.Delete(&cmt).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to delete comment")
		return
	}
	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(cmt.PostID)))
	utils.Success(ctx, gin.H{"message": "comment deleted"})
}
