// Package cli — sync.go implements the "picbot sync" command.
//
// sync uploads local images that are missing from the configured
// Google Drive folder. One pass by default; --loop repeats the pass on
// an interval until interrupted.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/picbot/internal/model"
	"github.com/shinji-kodama/picbot/internal/source"
)

// syncFlags holds the flag values for the sync command.
type syncFlags struct {
	loop     bool          // --loop: keep syncing on an interval
	interval time.Duration // --interval: delay between loop passes
}

// NewSyncCommand creates the "sync" cobra command.
func NewSyncCommand() *cobra.Command {
	flags := &syncFlags{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Upload local images missing from the Google Drive folder",
		Long: `Upload images from the local folder that are not yet present in the
configured Google Drive folder. Files are matched by name.

Requires IMAGE_SOURCE=google_drive: the command exists to feed the
Drive folder the bot reads from.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.loop, "loop", false, "Keep syncing on an interval until interrupted")
	cmd.Flags().DurationVar(&flags.interval, "interval", source.DefaultSyncInterval, "Delay between sync passes with --loop")

	return cmd
}

// runSync performs one sync pass, or loops until a signal arrives.
func runSync(ctx context.Context, flags *syncFlags) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Source != model.SourceGoogleDrive {
		return model.NewCLIError(model.ExitConfigInvalid,
			"sync requires IMAGE_SOURCE=google_drive")
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if cfg.ImagesPath == "" {
		return model.NewCLIError(model.ExitConfigInvalid,
			"IMAGES_PATH must point at the local folder to upload from")
	}

	syncer, err := source.NewSyncer(ctx, cfg.DriveCredentials, cfg.DriveFolderID, cfg.ImagesPath,
		logger.With("component", "sync"))
	if err != nil {
		return model.WrapCLIError(model.ExitSourceUnavailable, "failed to connect to Google Drive", err)
	}

	if flags.loop {
		logger.Info("sync loop started", "interval", flags.interval)
		if err := syncer.Run(ctx, flags.interval); err != nil && ctx.Err() == nil {
			return model.WrapCLIError(model.ExitGeneralError, "sync loop failed", err)
		}
		return nil
	}

	uploaded, attempted, err := syncer.SyncOnce(ctx)
	if err != nil {
		return model.WrapCLIError(model.ExitSourceUnavailable, "sync failed", err)
	}
	if attempted == 0 {
		fmt.Println("Drive folder is up to date, nothing to upload.")
		return nil
	}
	fmt.Printf("Uploaded %d of %d missing image(s).\n", uploaded, attempted)
	if uploaded < attempted {
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("%d upload(s) failed, see log for details", attempted-uploaded))
	}
	return nil
}
