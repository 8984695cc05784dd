package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/shinji-kodama/picbot/internal/model"
)

// DefaultConfigFile is the config file name probed in the working
// directory when --config is not given.
const DefaultConfigFile = "picbot.jsonc"

// fileConfig is the raw structure of picbot.jsonc. All fields are
// pointers so that an absent key leaves the default (or a lower layer)
// untouched, while an explicitly set key — even to a zero value —
// overrides it.
type fileConfig struct {
	BotToken         *string `json:"botToken,omitempty"`
	ChatID           *string `json:"chatId,omitempty"`
	ImageSource      *string `json:"imageSource,omitempty"`
	ImagesPath       *string `json:"imagesPath,omitempty"`
	DriveCredentials *string `json:"googleDriveCredentials,omitempty"`
	DriveFolderID    *string `json:"googleDriveFolderId,omitempty"`
	DriveCacheDir    *string `json:"googleDriveCacheDir,omitempty"`
	SendInterval     *int    `json:"sendInterval,omitempty"`
	StartHour        *int    `json:"startHour,omitempty"`
	EndHour          *int    `json:"endHour,omitempty"`
	HistoryFile      *string `json:"historyFile,omitempty"`
}

// applyFile overlays the JSONC config file onto cfg.
//
// The file format is JSONC (JSON with Comments): comments are stripped
// with github.com/tidwall/jsonc before parsing with the standard
// encoding/json, so users can annotate their configuration.
//
// A missing file is only an error when the path was given explicitly.
func applyFile(cfg *Config, path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.BotToken != nil {
		cfg.BotToken = *fc.BotToken
	}
	if fc.ChatID != nil {
		cfg.ChatID = *fc.ChatID
	}
	if fc.ImageSource != nil {
		cfg.Source = model.ImageSource(*fc.ImageSource)
	}
	if fc.ImagesPath != nil {
		cfg.ImagesPath = *fc.ImagesPath
	}
	if fc.DriveCredentials != nil {
		cfg.DriveCredentials = *fc.DriveCredentials
	}
	if fc.DriveFolderID != nil {
		cfg.DriveFolderID = *fc.DriveFolderID
	}
	if fc.DriveCacheDir != nil {
		cfg.DriveCacheDir = *fc.DriveCacheDir
	}
	if fc.SendInterval != nil {
		cfg.SendInterval = *fc.SendInterval
	}
	if fc.StartHour != nil {
		cfg.StartHour = *fc.StartHour
	}
	if fc.EndHour != nil {
		cfg.EndHour = *fc.EndHour
	}
	if fc.HistoryFile != nil {
		cfg.HistoryFile = *fc.HistoryFile
	}

	return nil
}
