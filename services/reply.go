package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const replyPrompt = "Generate a short, relevant reply in English to this comment, considering the post content. " +
	"The reply should be simple, sincere, and informal. " +
	"No unnecessary explanations, no introductions, no quotes, no formatting. " +
	"Write only the reply — one to two sentences maximum.\n\n" +
	"Post: %s\n" +
	"Comment: %s"

// FallbackReply is returned whenever reply generation fails. The caller must
// always receive a usable string; reply generation is best-effort and never
// aborts the surrounding comment flow.
const FallbackReply = "Thank you for your comment!"

// Replier produces a short contextual reply to a comment.
type Replier struct {
	gen TextGenerator
	log *zap.SugaredLogger
}

// NewReplier builds a Replier. gen may be nil; every call then yields the
// fallback acknowledgement.
func NewReplier(gen TextGenerator, log *zap.SugaredLogger) *Replier {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Replier{gen: gen, log: log}
}

// GenerateReply returns a reply conditioned on the post and the triggering
// comment. It never returns an error.
func (r *Replier) GenerateReply(ctx context.Context, postText, commentText string) string {
	if r.gen == nil {
		return FallbackReply
	}

	reply, err := r.gen.GenerateText(ctx, fmt.Sprintf(replyPrompt, postText, commentText), GenOptions{
		Temperature:     0.4,
		MaxOutputTokens: 50,
	})
	if err != nil {
		r.log.Warnw("reply generation failed, using fallback", "err", err)
		return FallbackReply
	}
	return reply
}
