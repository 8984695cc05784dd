// Package cli — send.go implements the "picbot send" command.
//
// send is the one-shot path: load the configuration and the library,
// send exactly one unsent image to the configured chat, record it, and
// exit. Useful from cron or for smoke-testing a deployment.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/picbot/internal/bot"
	"github.com/shinji-kodama/picbot/internal/model"
)

// NewSendCommand creates the "send" cobra command.
func NewSendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "send",
		Short: "Send one image to the configured chat and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd.Context())
		},
	}
}

// runSend performs a single send outside the schedule.
func runSend(ctx context.Context) error {
	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	src, err := buildSource(ctx, cfg)
	if err != nil {
		return err
	}
	lib, err := loadLibrary(ctx, cfg, src, logger)
	if err != nil {
		return err
	}

	b, err := bot.New(cfg, lib, src, logger)
	if err != nil {
		return model.WrapCLIError(model.ExitTelegramError, "Telegram authentication failed", err)
	}

	if err := b.SendImage(ctx, cfg.ChatRecipient()); err != nil {
		if errors.Is(err, bot.ErrExhausted) {
			return model.WrapCLIError(model.ExitSourceUnavailable, "nothing to send", err)
		}
		return model.WrapCLIError(model.ExitTelegramError, "send failed", err)
	}

	stats := lib.Stats()
	logger.Info("sent one image", "sent", stats.Sent, "unsent", stats.Unsent)
	return nil
}
