// Package bot implements the chat-history question answering bot: passive
// ingestion of every message it sees, and grounded answers when a trigger
// phrase appears.
package bot

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/hrygo/recall/ai"
	"github.com/hrygo/recall/internal/profile"
	"github.com/hrygo/recall/store"
)

const updateTimeoutSeconds = 30

// Bot connects the message pipeline to the Telegram Bot API.
type Bot struct {
	api      *tgbotapi.BotAPI
	pipeline *Pipeline
	limiter  *rate.Limiter
}

// New creates a new Bot from the profile and its collaborators.
func New(profile *profile.Profile, st *store.Store, embedder ai.EmbeddingService, llm ai.LLMService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(profile.BotToken)
	if err != nil {
		return nil, err
	}

	extractor, err := NewQuestionExtractor(profile.TriggerPhrases)
	if err != nil {
		return nil, err
	}

	pipeline := NewPipeline(st, embedder, extractor, NewAnswerSynthesizer(llm), PipelineConfig{
		TopK:          profile.TopK,
		MinConfidence: profile.MinConfidence,
		MaxResults:    profile.MaxResults,
	})

	return &Bot{
		api:      api,
		pipeline: pipeline,
		// Telegram flood control allows roughly 30 messages per second overall.
		limiter: rate.NewLimiter(rate.Limit(25), 5),
	}, nil
}

// Run consumes the update stream until ctx is cancelled. Updates are processed
// strictly in arrival order: a message is fully ingested and answered before
// the next one is looked at, which keeps history ingestion ordered.
func (b *Bot) Run(ctx context.Context) error {
	slog.Info("logged in", "username", b.api.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = updateTimeoutSeconds
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if skipMessage(msg, b.api.Self.ID) {
		return
	}

	reply := b.pipeline.HandleMessage(ctx, &IncomingMessage{
		ChatID:    msg.Chat.ID,
		Author:    authorName(msg.From),
		Content:   msg.Text,
		Timestamp: msg.Time(),
	})
	if reply == "" {
		return
	}

	if err := b.send(ctx, msg.Chat.ID, reply); err != nil {
		slog.Error("failed to send reply", "chat_id", msg.Chat.ID, "error", err)
		metrics.sendFailures.Inc()
		return
	}
	metrics.repliesSent.Inc()
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// skipMessage filters updates that must not enter the pipeline: non-text
// messages and the bot's own replies (self-loop suppression — its answers are
// never ingested or answered).
func skipMessage(msg *tgbotapi.Message, selfID int64) bool {
	if msg == nil || msg.Text == "" {
		return true
	}
	return msg.From == nil || msg.From.ID == selfID
}

func authorName(user *tgbotapi.User) string {
	if user.UserName != "" {
		return user.UserName
	}
	name := user.FirstName
	if user.LastName != "" {
		name += " " + user.LastName
	}
	if name == "" {
		return "unknown"
	}
	return name
}
