// Package bot wires the Telegram surface of picbot: command handlers,
// the reply keyboards, and the send pipeline that moves an image from
// the configured source into the destination chat.
//
// The package uses github.com/go-telegram/bot for the Telegram API.
// Handlers are registered per command; plain-text button presses from
// the reply keyboards arrive at the default handler.
package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	tg "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/shinji-kodama/picbot/internal/config"
	"github.com/shinji-kodama/picbot/internal/library"
	"github.com/shinji-kodama/picbot/internal/sched"
	"github.com/shinji-kodama/picbot/internal/source"
)

// Bot owns the Telegram client and the send pipeline.
type Bot struct {
	api    *tg.Bot
	cfg    *config.Config
	lib    *library.Library
	src    source.Source
	sched  *sched.Scheduler
	logger *log.Logger
}

// New creates the bot, validates the token against the Telegram API
// (getMe runs inside tg.New), and registers all handlers. The
// scheduler is created but not started; Run starts it.
func New(cfg *config.Config, lib *library.Library, src source.Source, logger *log.Logger) (*Bot, error) {
	b := &Bot{
		cfg:    cfg,
		lib:    lib,
		src:    src,
		logger: logger,
	}

	api, err := tg.New(cfg.BotToken, tg.WithDefaultHandler(b.onMessage))
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	b.api = api

	b.sched = sched.New(sched.Options{
		Interval:  time.Duration(cfg.SendInterval) * time.Minute,
		StartHour: cfg.StartHour,
		EndHour:   cfg.EndHour,
		Send:      b.scheduledSend,
		Logger:    logger.With("component", "scheduler"),
	})

	b.registerHandlers()
	return b, nil
}

// registerHandlers binds the slash commands. Keyboard button presses
// are plain text and fall through to the default handler.
func (b *Bot) registerHandlers() {
	b.api.RegisterHandler(tg.HandlerTypeMessageText, "/start", tg.MatchTypeExact, b.onStart)
	b.api.RegisterHandler(tg.HandlerTypeMessageText, "/stats", tg.MatchTypeExact, b.onStats)
	b.api.RegisterHandler(tg.HandlerTypeMessageText, "/send_now", tg.MatchTypeExact, b.onSendNow)
	b.api.RegisterHandler(tg.HandlerTypeMessageText, "/set_interval", tg.MatchTypeExact, b.onSetInterval)
	b.api.RegisterHandler(tg.HandlerTypeMessageText, "/reset_history", tg.MatchTypeExact, b.onResetHistory)
	b.api.RegisterHandler(tg.HandlerTypeMessageText, "/help", tg.MatchTypeExact, b.onHelp)
}

// API exposes the raw Telegram client for the CLI helper commands
// (chat-id uses getUpdates directly).
func (b *Bot) API() *tg.Bot {
	return b.api
}

// Run registers the command menu, starts the scheduler, and polls for
// updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if _, err := b.api.SetMyCommands(ctx, &tg.SetMyCommandsParams{Commands: botCommands()}); err != nil {
		// Not fatal: the bot works without the menu, it is just less
		// discoverable. Same tolerance the bot always had.
		b.logger.Error("failed to register command menu", "err", err)
	} else {
		b.logger.Info("command menu registered")
	}

	go func() {
		if err := b.sched.Run(ctx); err != nil && ctx.Err() == nil {
			b.logger.Error("scheduler exited", "err", err)
		}
	}()

	b.logger.Info("bot is running, press Ctrl+C to stop")
	b.api.Start(ctx)
	b.logger.Info("bot stopped")
	return nil
}

// scheduledSend is the scheduler callback: one send to the configured
// chat, errors logged but never propagated (the schedule keeps going).
func (b *Bot) scheduledSend(ctx context.Context) {
	b.logger.Info("executing scheduled send", "chat", b.cfg.ChatID)
	if err := b.SendImage(ctx, b.cfg.ChatRecipient()); err != nil {
		b.logger.Error("scheduled send failed", "err", err)
	}
}

// SendImage runs the full send pipeline against the given chat: pick a
// random unsent image, materialize it locally, upload it, and only
// after a successful upload record it in the history and drop any
// cached copy.
func (b *Bot) SendImage(ctx context.Context, chat any) error {
	img, ok := b.lib.Next()
	if !ok {
		stats := b.lib.Stats()
		b.logger.Warn("no unsent images available", "total_sent", stats.Sent)
		return ErrExhausted
	}

	path, cleanup, err := b.src.Fetch(ctx, img)
	if err != nil {
		return fmt.Errorf("failed to fetch image %s: %w", img.Name, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open image %s: %w", path, err)
	}

	_, err = b.api.SendPhoto(ctx, &tg.SendPhotoParams{
		ChatID: chat,
		Photo: &models.InputFileUpload{
			Filename: img.Name,
			Data:     f,
		},
	})
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to send photo %s: %w", img.Name, err)
	}

	if err := b.lib.MarkSent(img); err != nil {
		// The photo went out; losing the ledger entry means a possible
		// repeat later. Surface it loudly.
		b.logger.Error("failed to record sent image", "name", img.Name, "err", err)
	}
	b.logger.Info("image sent", "name", img.Name)

	if err := cleanup(); err != nil {
		b.logger.Warn("failed to clean cached image", "name", img.Name, "err", err)
	}
	return nil
}

// Interval returns the scheduler's current send interval.
func (b *Bot) Interval() time.Duration {
	return b.sched.Interval()
}

// ErrExhausted is returned by SendImage when every loaded image has
// already been sent.
var ErrExhausted = errors.New("all images have been sent")
