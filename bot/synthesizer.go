package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hrygo/recall/ai"
	"github.com/hrygo/recall/store"
)

// SynthesisOutcome classifies the result of answer synthesis. Fallbacks are
// explicit variants rather than errors: synthesis never fails hard, it degrades
// to a user-visible string.
type SynthesisOutcome int

const (
	// OutcomeAnswer means the model produced a grounded answer.
	OutcomeAnswer SynthesisOutcome = iota
	// OutcomeNoContext means retrieval was empty; no model call was made.
	OutcomeNoContext
	// OutcomeFailed means the model call failed or returned empty text.
	OutcomeFailed
)

// SynthesisResult is the outcome of one synthesis request. Text is always a
// sendable reply, whichever the outcome.
type SynthesisResult struct {
	Outcome SynthesisOutcome
	Text    string
}

const (
	noContextReply = "I couldn't find any relevant information in the chat history."
	fallbackReply  = "Sorry, something went wrong while generating an answer. Please try again."

	answerSystemPrompt = "You are an assistant that answers questions about a chat conversation. " +
		"Answer using only the chat history provided by the user. " +
		"If the history does not contain enough information to answer, say so plainly."

	answerPromptTemplate = `Question: %s

Chat history:
%s

Answer the question using only the chat history above.`
)

// AnswerSynthesizer turns a question and its retrieved context into a reply.
type AnswerSynthesizer struct {
	llm ai.LLMService
}

// NewAnswerSynthesizer creates a new AnswerSynthesizer.
func NewAnswerSynthesizer(llm ai.LLMService) *AnswerSynthesizer {
	return &AnswerSynthesizer{llm: llm}
}

// Synthesize produces a reply for question grounded in matches. Matches must be
// ordered descending by confidence, the order the store returns them in.
func (s *AnswerSynthesizer) Synthesize(ctx context.Context, question string, matches []*store.RankedChatMessage) SynthesisResult {
	if len(matches) == 0 {
		return SynthesisResult{Outcome: OutcomeNoContext, Text: noContextReply}
	}

	prompt := fmt.Sprintf(answerPromptTemplate, question, buildGroundingContext(matches))

	answer, err := s.llm.Chat(ctx, []ai.Message{
		ai.SystemPrompt(answerSystemPrompt),
		ai.UserMessage(prompt),
	})
	if err != nil {
		slog.Error("synthesis failed", "error", err)
		return SynthesisResult{Outcome: OutcomeFailed, Text: fallbackReply}
	}
	// An empty completion is treated the same as a failed one; the bot must
	// never send an empty reply.
	if strings.TrimSpace(answer) == "" {
		slog.Warn("synthesis produced empty answer")
		return SynthesisResult{Outcome: OutcomeFailed, Text: fallbackReply}
	}

	return SynthesisResult{Outcome: OutcomeAnswer, Text: answer}
}

// buildGroundingContext renders matches as "[date] username: content" lines in
// the supplied order.
func buildGroundingContext(matches []*store.RankedChatMessage) string {
	var b strings.Builder
	for i, match := range matches {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%s] %s: %s", match.Message.CreatedAt, match.Message.Author, match.Message.Content)
	}
	return b.String()
}
