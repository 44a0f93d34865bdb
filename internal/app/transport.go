package app

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"premiumbot/core/telegram/keyboard"
	"premiumbot/internal/purchase"
)

// errNotBound is returned for sends attempted before the bot is running.
var errNotBound = errors.New("app: transport not bound to a bot yet")

// botTransport implements purchase.Transport over a running telebot instance.
// Sends are synchronous: the purchase service inspects delivery errors (e.g.
// to report a failed user notification back to the operator).
type botTransport struct {
	bot atomic.Pointer[tele.Bot]
}

// Bind attaches the live bot. Called from the OnStart hook.
func (t *botTransport) Bind(b *tele.Bot) {
	t.bot.Store(b)
}

func (t *botTransport) get() (*tele.Bot, error) {
	b := t.bot.Load()
	if b == nil {
		return nil, errNotBound
	}
	return b, nil
}

func markupFor(rows [][]purchase.Button) *tele.ReplyMarkup {
	if len(rows) == 0 {
		return nil
	}
	btnRows := make([][]keyboard.InlineBtn, len(rows))
	for i, row := range rows {
		r := make([]keyboard.InlineBtn, len(row))
		for j, b := range row {
			r[j] = keyboard.InlineBtn{Text: b.Text, Unique: b.Key, Data: b.Payload}
		}
		btnRows[i] = r
	}
	return keyboard.InlineButtonsRows(btnRows...)
}

func (t *botTransport) SendText(_ context.Context, chatID int64, text string) error {
	b, err := t.get()
	if err != nil {
		return err
	}
	_, err = b.Send(tele.ChatID(chatID), text, &tele.SendOptions{ParseMode: tele.ModeHTML})
	return err
}

func (t *botTransport) SendTextButtons(_ context.Context, chatID int64, text string, rows ...[]purchase.Button) error {
	b, err := t.get()
	if err != nil {
		return err
	}
	_, err = b.Send(tele.ChatID(chatID), text, &tele.SendOptions{
		ParseMode:   tele.ModeHTML,
		ReplyMarkup: markupFor(rows),
	})
	return err
}

func (t *botTransport) SendImage(_ context.Context, chatID int64, png []byte, caption string, rows ...[]purchase.Button) error {
	b, err := t.get()
	if err != nil {
		return err
	}
	photo := &tele.Photo{
		File:    tele.FromReader(bytes.NewReader(png)),
		Caption: caption,
	}
	_, err = b.Send(tele.ChatID(chatID), photo, &tele.SendOptions{
		ParseMode:   tele.ModeHTML,
		ReplyMarkup: markupFor(rows),
	})
	return err
}

func (t *botTransport) SendFileRef(_ context.Context, chatID int64, fileRef, caption string, rows ...[]purchase.Button) error {
	b, err := t.get()
	if err != nil {
		return err
	}
	photo := &tele.Photo{
		File:    tele.File{FileID: fileRef},
		Caption: caption,
	}
	_, err = b.Send(tele.ChatID(chatID), photo, &tele.SendOptions{
		ParseMode:   tele.ModeHTML,
		ReplyMarkup: markupFor(rows),
	})
	return err
}
