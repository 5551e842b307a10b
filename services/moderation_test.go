package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testBlacklist = []string{"spamword", "junktoken"}

func TestModeratorBlacklistShortCircuit(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "exact token", text: "this contains spamword right here"},
		{name: "uppercase token", text: "THIS CONTAINS SPAMWORD"},
		{name: "token inside larger word", text: "xxspamwordxx"},
		{name: "second token mixed case", text: "some JunkToken content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{response: "NO"}
			m := NewModerator(gen, testBlacklist, nil)

			blocked := m.Classify(context.Background(), tt.text)

			assert.True(t, blocked)
			assert.Equal(t, 0, gen.callCount(), "blacklist hit must not reach the remote classifier")
		})
	}
}

func TestModeratorRemoteVerdict(t *testing.T) {
	tests := []struct {
		name     string
		response string
		blocked  bool
	}{
		{name: "affirmative", response: "YES", blocked: true},
		{name: "affirmative lowercase", response: "yes, it is offensive", blocked: true},
		{name: "negative", response: "NO", blocked: false},
		{name: "unrelated answer", response: "I cannot determine that", blocked: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{response: tt.response}
			m := NewModerator(gen, testBlacklist, nil)

			blocked := m.Classify(context.Background(), "a perfectly clean sentence")

			assert.Equal(t, tt.blocked, blocked)
			assert.Equal(t, 1, gen.callCount(), "clean text must hit the remote classifier exactly once")
		})
	}
}

func TestModeratorFailsOpen(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("upstream timeout")}
	m := NewModerator(gen, testBlacklist, nil)

	blocked := m.Classify(context.Background(), "a perfectly clean sentence")

	assert.False(t, blocked, "remote failure must not block content")
	assert.Equal(t, 1, gen.callCount())
}

func TestModeratorNilGeneratorPassesCleanText(t *testing.T) {
	m := NewModerator(nil, testBlacklist, nil)

	assert.False(t, m.Classify(context.Background(), "clean text"))
	assert.True(t, m.Classify(context.Background(), "contains spamword"))
}

func TestModeratorBoundsRemoteCall(t *testing.T) {
	gen := &fakeGenerator{response: "NO"}
	m := NewModerator(gen, testBlacklist, nil)

	m.Classify(context.Background(), "clean text")

	assert.InDelta(t, 0.2, gen.lastOpts.Temperature, 0.001)
	assert.Equal(t, int32(20), gen.lastOpts.MaxOutputTokens)
	assert.Contains(t, gen.prompts[0], "clean text")
}
