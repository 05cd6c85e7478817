package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/recall/ai"
	"github.com/hrygo/recall/store"
)

// fakeLLM records the prompts it receives and returns a scripted completion.
type fakeLLM struct {
	answer    string
	err       error
	callCount int
	lastChat  []ai.Message
}

func (f *fakeLLM) Chat(_ context.Context, messages []ai.Message) (string, error) {
	f.callCount++
	f.lastChat = messages
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func rankedMatches() []*store.RankedChatMessage {
	return []*store.RankedChatMessage{
		{
			Message: &store.ChatMessage{
				Content:   "Alex said to meet at 3 PM",
				Author:    "alex",
				CreatedAt: "2025-10-04 09:15:00 UTC",
			},
			Confidence: 1.0,
		},
		{
			Message: &store.ChatMessage{
				Content:   "Don't forget the meeting tomorrow",
				Author:    "jamie",
				CreatedAt: "2025-10-03 18:02:00 UTC",
			},
			Confidence: 0.8,
		},
	}
}

func TestSynthesize_Answer(t *testing.T) {
	llm := &fakeLLM{answer: "Alex said to meet at 3 PM."}
	s := NewAnswerSynthesizer(llm)

	result := s.Synthesize(context.Background(), "when did alex say to meet?", rankedMatches())
	assert.Equal(t, OutcomeAnswer, result.Outcome)
	assert.Equal(t, "Alex said to meet at 3 PM.", result.Text)
	assert.Equal(t, 1, llm.callCount)
}

func TestSynthesize_PromptContainsQuestionAndContext(t *testing.T) {
	llm := &fakeLLM{answer: "ok"}
	s := NewAnswerSynthesizer(llm)

	s.Synthesize(context.Background(), "when did alex say to meet?", rankedMatches())
	require.Len(t, llm.lastChat, 2)

	prompt := llm.lastChat[1].Content
	assert.Contains(t, prompt, "when did alex say to meet?")
	assert.Contains(t, prompt, "[2025-10-04 09:15:00 UTC] alex: Alex said to meet at 3 PM")
	assert.Contains(t, prompt, "[2025-10-03 18:02:00 UTC] jamie: Don't forget the meeting tomorrow")

	// Context lines keep the confidence-descending order the store returned.
	assert.Less(t,
		strings.Index(prompt, "alex: Alex said"),
		strings.Index(prompt, "jamie: Don't forget"),
	)
}

func TestSynthesize_EmptyRetrievalSkipsModel(t *testing.T) {
	llm := &fakeLLM{answer: "should never be used"}
	s := NewAnswerSynthesizer(llm)

	result := s.Synthesize(context.Background(), "anything?", nil)
	assert.Equal(t, OutcomeNoContext, result.Outcome)
	assert.Equal(t, noContextReply, result.Text)
	assert.Zero(t, llm.callCount, "empty retrieval must not invoke the model")
}

func TestSynthesize_ModelFailure(t *testing.T) {
	llm := &fakeLLM{err: errors.New("quota exceeded")}
	s := NewAnswerSynthesizer(llm)

	result := s.Synthesize(context.Background(), "anything?", rankedMatches())
	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Equal(t, fallbackReply, result.Text)
}

func TestSynthesize_EmptyCompletionIsFailure(t *testing.T) {
	llm := &fakeLLM{answer: "   \n"}
	s := NewAnswerSynthesizer(llm)

	result := s.Synthesize(context.Background(), "anything?", rankedMatches())
	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Equal(t, fallbackReply, result.Text)
}
