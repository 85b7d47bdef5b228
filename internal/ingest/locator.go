package ingest

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramLocator resolves Telegram file identifiers into direct CDN URLs
// for the range proxy. The returned links expire after an hour on Telegram's
// side, so they are resolved per request and never stored.
type TelegramLocator struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramLocator creates a new Telegram locator instance
func NewTelegramLocator(bot *tgbotapi.BotAPI) *TelegramLocator {
	return &TelegramLocator{bot: bot}
}

// ResolveURL resolves a Telegram file id to a fetchable URL
func (l *TelegramLocator) ResolveURL(_ context.Context, fileID string) (string, error) {
	url, err := l.bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve telegram file %s: %w", fileID, err)
	}
	return url, nil
}
