package notify

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers messages to the plant administrators.
type Notifier interface {
	SendText(text string) error
	SendDocument(name string, data []byte, caption string) error
}

// Sender is the part of *tgbotapi.BotAPI the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Telegram struct {
	api    Sender
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Telegram{api: api, chatID: chatID}, nil
}

func NewTelegramWithSender(api Sender, chatID int64) *Telegram {
	return &Telegram{api: api, chatID: chatID}
}

func (t *Telegram) SendText(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	_, err := t.api.Send(msg)
	return err
}

func (t *Telegram) SendDocument(name string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(t.chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	_, err := t.api.Send(doc)
	return err
}

// Log only writes what would have been sent. Used when no bot token is configured.
type Log struct{ log *slog.Logger }

func NewLog(log *slog.Logger) *Log { return &Log{log: log} }

func (l *Log) SendText(text string) error {
	l.log.Info("notification", "text", text)
	return nil
}

func (l *Log) SendDocument(name string, data []byte, caption string) error {
	l.log.Info("notification document", "name", name, "bytes", len(data), "caption", caption)
	return nil
}
