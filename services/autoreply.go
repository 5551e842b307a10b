package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ThreadsofDaemonS/aiblog/models"
)

// ReplyQueue accepts comments that may warrant a delayed auto-reply.
// Enqueue is non-blocking and reports whether the comment was accepted;
// a full queue drops the job (best-effort, at-most-once semantics).
type ReplyQueue interface {
	Enqueue(comment models.Comment) bool
}

type replyJob struct {
	comment models.Comment
}

// AutoReplyScheduler runs a bounded worker pool that, for each eligible
// clean comment, waits the post's configured delay and then persists an
// AI-generated reply attributed to the original commenter.
//
// Scheduled work is held only in memory: a reply pending at process exit is
// simply never produced. Each job performs its own independent read of the
// post and its own insert; nothing is shared with the request handler that
// enqueued it.
type AutoReplyScheduler struct {
	db      *gorm.DB
	replier *Replier
	log     *zap.SugaredLogger

	jobs    chan replyJob
	quit    chan struct{}
	wg      sync.WaitGroup
	workers int

	// delayFloor is the minimum wait before replying. Zero or unset post
	// delays are raised to it so a reply is never instantaneous.
	delayFloor time.Duration
}

// NewAutoReplyScheduler builds a scheduler with the given pool size and
// queue capacity. Call Start before enqueueing.
func NewAutoReplyScheduler(db *gorm.DB, replier *Replier, workers, queueSize int, log *zap.SugaredLogger) *AutoReplyScheduler {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &AutoReplyScheduler{
		db:         db,
		replier:    replier,
		log:        log,
		jobs:       make(chan replyJob, queueSize),
		quit:       make(chan struct{}),
		workers:    workers,
		delayFloor: time.Second,
	}
}

var _ ReplyQueue = (*AutoReplyScheduler)(nil)

// Start launches the worker pool.
func (s *AutoReplyScheduler) Start() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

// Shutdown stops accepting work and waits for workers to exit. Jobs mid-delay
// are abandoned, matching the non-durable contract.
func (s *AutoReplyScheduler) Shutdown() {
	close(s.quit)
	s.wg.Wait()
}

// Enqueue submits a comment for auto-reply evaluation without blocking the
// caller. A rejected or dropped job is logged and otherwise invisible to the
// comment author.
func (s *AutoReplyScheduler) Enqueue(comment models.Comment) bool {
	select {
	case <-s.quit:
		return false
	default:
	}
	select {
	case s.jobs <- replyJob{comment: comment}:
		return true
	default:
		s.log.Warnw("auto-reply queue full, dropping job", "comment_id", comment.ID, "post_id", comment.PostID)
		return false
	}
}

func (s *AutoReplyScheduler) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.quit:
			return
		case job := <-s.jobs:
			s.process(job)
		}
	}
}

// process runs the per-comment decision sequence: load the post, apply
// eligibility rules, wait, generate, persist. Every failure path is terminal
// and silent toward the commenter.
func (s *AutoReplyScheduler) process(job replyJob) {
	ctx := context.Background()

	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, job.comment.PostID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warnw("auto-reply post lookup failed", "post_id", job.comment.PostID, "err", err)
		}
		return
	}
	if !post.AutoReplyEnabled {
		return
	}
	// Self-reply suppression: the auto-reply simulates engagement with
	// outside commenters, never with the post owner.
	if job.comment.UserID == post.UserID {
		return
	}

	delay := time.Duration(post.ReplyDelaySec) * time.Second
	if delay < s.delayFloor {
		delay = s.delayFloor
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-s.quit:
		return
	case <-timer.C:
	}

	// Post content and comment content were captured before the delay; a
	// stale read relative to concurrent edits is acceptable.
	text := s.replier.GenerateReply(ctx, post.Content, job.comment.Content)

	reply := models.Comment{
		PostID:    post.ID,
		UserID:    job.comment.UserID,
		Content:   text,
		IsBlocked: false,
	}
	if err := s.db.WithContext(ctx).Create(&reply).Error; err != nil {
		s.log.Warnw("auto-reply persist failed", "post_id", post.ID, "err", err)
		return
	}
	s.log.Infow("auto-reply created", "post_id", post.ID, "comment_id", reply.ID, "trigger_comment_id", job.comment.ID)
}
