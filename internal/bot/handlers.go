package bot

import (
	"context"
	"errors"

	tg "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// onStart greets the user and shows the main reply keyboard.
func (b *Bot) onStart(ctx context.Context, api *tg.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	b.reply(ctx, update.Message.Chat.ID, greetingText, mainKeyboard())
}

// onStats reports how many images are in the library and how many are
// left to send.
func (b *Bot) onStats(ctx context.Context, api *tg.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	b.reply(ctx, update.Message.Chat.ID, formatStats(b.lib.Stats()), mainKeyboard())
}

// onSendNow sends one image to the configured destination chat
// immediately, outside the schedule, and reports the outcome back to
// whoever pressed the button.
func (b *Bot) onSendNow(ctx context.Context, api *tg.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	err := b.SendImage(ctx, b.cfg.ChatRecipient())
	switch {
	case errors.Is(err, ErrExhausted):
		b.reply(ctx, chatID, exhaustedText, mainKeyboard())
	case err != nil:
		b.logger.Error("manual send failed", "err", err)
		b.reply(ctx, chatID, sendFailedText, mainKeyboard())
	default:
		b.reply(ctx, chatID, sentOKText, mainKeyboard())
	}
}

// onSetInterval shows the interval picker keyboard.
func (b *Bot) onSetInterval(ctx context.Context, api *tg.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	b.reply(ctx, update.Message.Chat.ID, formatIntervalPrompt(b.sched.Interval()), intervalKeyboard())
}

// onResetHistory clears the sent ledger so every image becomes
// eligible again.
func (b *Bot) onResetHistory(ctx context.Context, api *tg.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	removed, err := b.lib.ResetHistory()
	if err != nil {
		b.logger.Error("failed to reset history", "err", err)
		b.reply(ctx, chatID, resetFailedText, mainKeyboard())
		return
	}
	b.logger.Info("history reset", "removed", removed)
	b.reply(ctx, chatID, formatResetDone(removed), mainKeyboard())
}

// onHelp lists the available commands.
func (b *Bot) onHelp(ctx context.Context, api *tg.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	b.reply(ctx, update.Message.Chat.ID, helpText, mainKeyboard())
}

// onMessage is the default handler: it maps reply-keyboard button
// presses (plain text, not slash commands) onto the command handlers.
func (b *Bot) onMessage(ctx context.Context, api *tg.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	text := update.Message.Text

	if d, ok := intervalFromLabel(text); ok {
		b.sched.SetInterval(d)
		b.reply(ctx, update.Message.Chat.ID, formatIntervalChanged(d), mainKeyboard())
		return
	}

	switch text {
	case btnStats:
		b.onStats(ctx, api, update)
	case btnSendNow:
		b.onSendNow(ctx, api, update)
	case btnInterval:
		b.onSetInterval(ctx, api, update)
	case btnReset:
		b.onResetHistory(ctx, api, update)
	case btnHelp:
		b.onHelp(ctx, api, update)
	case btnBack:
		b.reply(ctx, update.Message.Chat.ID, backText, mainKeyboard())
	}
	// Anything else is ignored: the bot only answers its own keyboard.
}

// reply sends a text message with a keyboard, logging failures instead
// of propagating them. Handler errors have nowhere useful to go.
func (b *Bot) reply(ctx context.Context, chatID int64, text string, kb *models.ReplyKeyboardMarkup) {
	_, err := b.api.SendMessage(ctx, &tg.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: kb,
	})
	if err != nil {
		b.logger.Error("failed to send reply", "chat", chatID, "err", err)
	}
}
