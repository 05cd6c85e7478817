package bot

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

const selfID int64 = 1000

func TestSkipMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  *tgbotapi.Message
		want bool
	}{
		{"nil message", nil, true},
		{"empty text", &tgbotapi.Message{From: &tgbotapi.User{ID: 7}}, true},
		{"missing sender", &tgbotapi.Message{Text: "hello"}, true},
		{
			"own message",
			&tgbotapi.Message{Text: "rtfm something", From: &tgbotapi.User{ID: selfID}},
			true,
		},
		{
			"regular message",
			&tgbotapi.Message{Text: "hello", From: &tgbotapi.User{ID: 7}},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, skipMessage(tt.msg, selfID))
		})
	}
}

func TestAuthorName(t *testing.T) {
	tests := []struct {
		name string
		user *tgbotapi.User
		want string
	}{
		{"username preferred", &tgbotapi.User{UserName: "alex", FirstName: "Alexandra"}, "alex"},
		{"first name fallback", &tgbotapi.User{FirstName: "Alex"}, "Alex"},
		{"full name fallback", &tgbotapi.User{FirstName: "Alex", LastName: "Kim"}, "Alex Kim"},
		{"no identity", &tgbotapi.User{}, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, authorName(tt.user))
		})
	}
}
