package telegram

import (
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier defines the interface for a Telegram notifier.
type Notifier interface {
	SendMessage(text string) error
}

// client is an implementation of Notifier.
type client struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewClient creates a new Telegram notifier client.
func NewClient(botToken string, chatID int64) (Notifier, error) {
	return NewClientWithEndpoint(botToken, chatID, tgbotapi.APIEndpoint, &http.Client{})
}

// NewClientWithEndpoint creates a notifier against a custom Bot API endpoint,
// formatted like tgbotapi.APIEndpoint.
func NewClientWithEndpoint(botToken string, chatID int64, endpoint string, httpClient *http.Client) (Notifier, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(botToken, endpoint, httpClient)
	if err != nil {
		return nil, err
	}
	return &client{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// SendMessage sends a message to the configured Telegram chat.
func (c *client) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := c.bot.Send(msg)
	return err
}
