// Package cli — setup.go holds the wiring shared by the run and send
// commands: building the image source from the configuration, and
// loading the history-backed library from it.
package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/shinji-kodama/picbot/internal/config"
	"github.com/shinji-kodama/picbot/internal/history"
	"github.com/shinji-kodama/picbot/internal/library"
	"github.com/shinji-kodama/picbot/internal/model"
	"github.com/shinji-kodama/picbot/internal/source"
)

// buildSource constructs the configured image source. The Drive source
// dials the Google API during construction, so a bad credentials file
// surfaces here, not at first use.
func buildSource(ctx context.Context, cfg *config.Config) (source.Source, error) {
	switch cfg.Source {
	case model.SourceLocal:
		return source.NewLocal(cfg.ImagesPath), nil
	case model.SourceGoogleDrive:
		src, err := source.NewDrive(ctx, cfg.DriveCredentials, cfg.DriveFolderID, cfg.DriveCacheDir)
		if err != nil {
			return nil, model.WrapCLIError(model.ExitSourceUnavailable, "failed to connect to Google Drive", err)
		}
		return src, nil
	default:
		return nil, model.NewCLIError(model.ExitConfigInvalid,
			fmt.Sprintf("unknown image source %q", cfg.Source))
	}
}

// loadLibrary loads the sent-image history and the source's image list
// into a library. An empty source is an error: a bot with nothing to
// send is a deployment mistake, not a steady state. A corrupt history
// file is not: it is logged and treated as empty, the way the bot has
// always recovered from a damaged ledger. Only real I/O failures
// (unreadable file) abort.
func loadLibrary(ctx context.Context, cfg *config.Config, src source.Source, logger *log.Logger) (*library.Library, error) {
	hist, err := history.Load(cfg.HistoryFile)
	if err != nil {
		if hist == nil {
			return nil, model.WrapCLIError(model.ExitHistoryError, "failed to load sent history", err)
		}
		logger.Warn("history file is corrupt, starting with an empty ledger", "path", cfg.HistoryFile, "err", err)
	}

	images, err := src.Load(ctx)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitSourceUnavailable,
			fmt.Sprintf("failed to list images from %s source", src.Name()), err)
	}
	if len(images) == 0 {
		return nil, model.NewCLIError(model.ExitSourceUnavailable,
			fmt.Sprintf("no images found in %s source", src.Name()))
	}

	lib := library.New(hist)
	lib.SetImages(images)
	return lib, nil
}

// validateConfig runs Validate and folds the collected reports into a
// single configuration error. The check command formats the full list
// itself; everything else fails fast through here.
func validateConfig(cfg *config.Config) error {
	problems := cfg.Validate()
	if len(problems) == 0 {
		return nil
	}
	if len(problems) == 1 {
		return model.NewCLIError(model.ExitConfigInvalid, problems[0])
	}
	return model.NewCLIError(model.ExitConfigInvalid,
		fmt.Sprintf("%s (and %d more, see `picbot check`)", problems[0], len(problems)-1))
}
