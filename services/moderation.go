package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const moderationPrompt = "Determine if the following text is offensive, toxic, or inappropriate. " +
	"Answer only 'YES' or 'NO'.\n\n" +
	"Text: %s"

// Moderator decides whether a piece of text violates content policy. The
// local blacklist is checked first and always wins; only locally clean text
// is sent to the remote classifier. Remote failures fail open: content is
// never lost and requests never hang on a third-party dependency, at the
// cost of accepting false negatives.
type Moderator struct {
	gen       TextGenerator
	blacklist []string
	log       *zap.SugaredLogger
}

// NewModerator builds a Moderator. Blacklist entries are matched as
// case-insensitive substrings. gen may be nil, which behaves like a remote
// classifier that is permanently down (everything locally clean passes).
func NewModerator(gen TextGenerator, blacklist []string, log *zap.SugaredLogger) *Moderator {
	lowered := make([]string, 0, len(blacklist))
	for _, w := range blacklist {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			lowered = append(lowered, w)
		}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Moderator{gen: gen, blacklist: lowered, log: log}
}

// Classify reports whether text should be blocked.
func (m *Moderator) Classify(ctx context.Context, text string) bool {
	lowered := strings.ToLower(text)
	for _, word := range m.blacklist {
		if strings.Contains(lowered, word) {
			m.log.Infow("moderation blocked by blacklist", "token", word)
			return true
		}
	}

	if m.gen == nil {
		return false
	}

	answer, err := m.gen.GenerateText(ctx, fmt.Sprintf(moderationPrompt, text), GenOptions{
		Temperature:     0.2,
		MaxOutputTokens: 20,
	})
	if err != nil {
		// Fail open: a moderation outage must not block or lose content.
		m.log.Warnw("moderation call failed, passing content", "err", err)
		return false
	}

	blocked := strings.Contains(strings.ToLower(answer), "yes")
	m.log.Debugw("moderation verdict", "blocked", blocked, "answer", answer)
	return blocked
}
