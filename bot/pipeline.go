package bot

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/hrygo/recall/ai"
	"github.com/hrygo/recall/store"
)

const (
	askQuestionReply          = "Please ask a specific question after the trigger phrase."
	retrievalUnavailableReply = "Sorry, I couldn't search the chat history right now. Please try again later."

	// timestampLayout matches the format persisted at ingest time and rendered
	// into the grounding context.
	timestampLayout = "2006-01-02 15:04:05 UTC"

	defaultOpTimeout = 30 * time.Second
)

// IncomingMessage is one chat message as seen by the pipeline, already
// detached from the transport.
type IncomingMessage struct {
	ChatID    int64
	Author    string
	Content   string
	Timestamp time.Time
}

// retrievalStore is the slice of store.Store the pipeline needs.
type retrievalStore interface {
	CreateChatMessage(ctx context.Context, create *store.ChatMessage) (*store.ChatMessage, error)
	SearchRelevantChatMessages(ctx context.Context, opts *store.RelevanceSearchOptions) ([]*store.RankedChatMessage, error)
}

// PipelineConfig holds the retrieval parameters, fixed at startup.
type PipelineConfig struct {
	TopK          int
	MinConfidence float64
	MaxResults    int
	OpTimeout     time.Duration // bound on each index/embedding call
}

// Pipeline processes one message at a time: ingest always, then answer when a
// trigger phrase is present. Collaborator failures never escape; they degrade
// to fixed replies for triggered messages and logged drops otherwise.
type Pipeline struct {
	store       retrievalStore
	embedder    ai.EmbeddingService
	extractor   *QuestionExtractor
	synthesizer *AnswerSynthesizer
	config      PipelineConfig
	metrics     *pipelineMetrics
}

// NewPipeline creates a new Pipeline.
func NewPipeline(st retrievalStore, embedder ai.EmbeddingService, extractor *QuestionExtractor, synthesizer *AnswerSynthesizer, config PipelineConfig) *Pipeline {
	if config.OpTimeout <= 0 {
		config.OpTimeout = defaultOpTimeout
	}
	return &Pipeline{
		store:       st,
		embedder:    embedder,
		extractor:   extractor,
		synthesizer: synthesizer,
		config:      config,
		metrics:     metrics,
	}
}

// HandleMessage runs the per-message state machine and returns the reply text,
// or "" when no reply should be sent. At most one reply per message.
func (p *Pipeline) HandleMessage(ctx context.Context, msg *IncomingMessage) string {
	if strings.TrimSpace(msg.Content) == "" {
		return ""
	}

	logger := slog.With(
		"trace_id", shortuuid.New(),
		"chat_id", msg.ChatID,
		"author", msg.Author,
	)
	logger.Info("message received",
		"created_at", msg.Timestamp.UTC().Format(timestampLayout),
		"content_length", len(msg.Content),
	)
	p.metrics.messagesSeen.Inc()

	// Ingest before any trigger handling so a question can retrieve every
	// earlier message but never races its own un-ingested content.
	ingestErr := p.ingest(ctx, msg)
	if ingestErr != nil {
		logger.Error("failed to ingest message", "error", ingestErr)
		p.metrics.ingestFailures.Inc()
	} else {
		p.metrics.messagesIngested.Inc()
	}

	extraction := p.extractor.Extract(msg.Content)
	if !extraction.Triggered {
		return ""
	}
	logger.Info("trigger phrase detected", "question_length", len(extraction.Question))
	p.metrics.triggersDetected.Inc()

	if extraction.Question == "" {
		return askQuestionReply
	}
	if ingestErr != nil {
		// The index already proved unreachable for this message; searching it
		// would fail the same way.
		return retrievalUnavailableReply
	}

	matches, err := p.retrieve(ctx, extraction.Question)
	if err != nil {
		logger.Error("failed to retrieve chat history", "error", err)
		p.metrics.retrievalFailures.Inc()
		return retrievalUnavailableReply
	}

	result := p.synthesizer.Synthesize(ctx, extraction.Question, matches)
	switch result.Outcome {
	case OutcomeAnswer:
		p.metrics.answersGenerated.Inc()
	case OutcomeNoContext:
		logger.Info("no relevant history for question")
		p.metrics.emptyRetrievals.Inc()
	case OutcomeFailed:
		p.metrics.synthesisFailures.Inc()
	}
	return result.Text
}

func (p *Pipeline) ingest(ctx context.Context, msg *IncomingMessage) error {
	ctx, cancel := context.WithTimeout(ctx, p.config.OpTimeout)
	defer cancel()

	embedding, err := p.embedder.Embed(ctx, msg.Content)
	if err != nil {
		return err
	}

	_, err = p.store.CreateChatMessage(ctx, &store.ChatMessage{
		Content:   msg.Content,
		Author:    msg.Author,
		CreatedAt: msg.Timestamp.UTC().Format(timestampLayout),
		Embedding: embedding,
	})
	return err
}

func (p *Pipeline) retrieve(ctx context.Context, question string) ([]*store.RankedChatMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.OpTimeout)
	defer cancel()

	vector, err := p.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}

	return p.store.SearchRelevantChatMessages(ctx, &store.RelevanceSearchOptions{
		Vector:        vector,
		TopK:          p.config.TopK,
		MinConfidence: p.config.MinConfidence,
		MaxResults:    p.config.MaxResults,
	})
}
