// Package cli — run.go implements the "picbot run" command.
//
// run is the launcher and the main program in one: it walks the
// preflight sequence (environment, state directories, configuration,
// image source, Telegram auth) and then keeps the bot polling until
// the process is interrupted.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/picbot/internal/bot"
	"github.com/shinji-kodama/picbot/internal/config"
	"github.com/shinji-kodama/picbot/internal/launcher"
	"github.com/shinji-kodama/picbot/internal/library"
	"github.com/shinji-kodama/picbot/internal/model"
	"github.com/shinji-kodama/picbot/internal/source"
)

// NewRunCommand creates the "run" cobra command.
func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the preflight checks and start the bot",
		Long: `Run the full launcher sequence and start the bot.

The sequence fails fast: the first failing step aborts with its error
before any later step runs.

  1. Load environment (.env, process env, picbot.jsonc)
  2. Prepare state directories (history, Drive cache)
  3. Check configuration
  4. Verify image source
  5. Authenticate with Telegram
  6. Start the bot (polling + scheduler) until SIGINT/SIGTERM`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context())
		},
	}
}

// runRun executes the preflight pipeline and then hands control to the
// bot until the context is cancelled by a signal.
func runRun(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger()

	// State shared across steps. Each step fills in what the next
	// steps need; the Runner guarantees in-order, fail-fast execution.
	var (
		cfg *config.Config
		src source.Source
		lib *library.Library
		b   *bot.Bot
	)

	steps := []launcher.Step{
		{
			Name: "Loading environment",
			Run: func(ctx context.Context) (string, error) {
				var err error
				cfg, err = loadConfig()
				if err != nil {
					return "", err
				}
				return "", nil
			},
		},
		{
			// EnsureDirs is appended after the environment step loads
			// the paths, so this step just delegates.
			Name: "Preparing state directories",
			Run: func(ctx context.Context) (string, error) {
				return launcher.EnsureDirs(stateDirs(cfg)...).Run(ctx)
			},
		},
		{
			Name: "Checking configuration",
			Run: func(ctx context.Context) (string, error) {
				if err := validateConfig(cfg); err != nil {
					return "", err
				}
				return fmt.Sprintf("%s source, every %d min within %02d:00-%02d:00",
					cfg.Source, cfg.SendInterval, cfg.StartHour, cfg.EndHour), nil
			},
		},
		{
			Name: "Verifying image source",
			Run: func(ctx context.Context) (string, error) {
				var err error
				src, err = buildSource(ctx, cfg)
				if err != nil {
					return "", err
				}
				lib, err = loadLibrary(ctx, cfg, src, logger)
				if err != nil {
					return "", err
				}
				stats := lib.Stats()
				return fmt.Sprintf("%d images, %d unsent", stats.Total, stats.Unsent), nil
			},
		},
		{
			Name: "Authenticating with Telegram",
			Run: func(ctx context.Context) (string, error) {
				var err error
				b, err = bot.New(cfg, lib, src, logger)
				if err != nil {
					return "", model.WrapCLIError(model.ExitTelegramError, "Telegram authentication failed", err)
				}
				me, err := b.API().GetMe(ctx)
				if err != nil {
					return "", model.WrapCLIError(model.ExitTelegramError, "Telegram getMe failed", err)
				}
				return "@" + me.Username, nil
			},
		},
	}

	runner := launcher.NewRunner(os.Stdout)
	if err := runner.Run(ctx, steps); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Bot is running. Press Ctrl+C to stop.")
	return b.Run(ctx)
}

// stateDirs lists the directories the bot writes to at runtime. The
// history directory always; the Drive cache only for the Drive source.
func stateDirs(cfg *config.Config) []string {
	dirs := []string{filepath.Dir(cfg.HistoryFile)}
	if cfg.Source == model.SourceGoogleDrive {
		dirs = append(dirs, cfg.DriveCacheDir)
	}
	return dirs
}
