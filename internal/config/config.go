// Package config loads and validates the picbot configuration.
//
// Configuration is assembled from three layers, later layers winning:
//
//  1. built-in defaults
//  2. an optional picbot.jsonc file (JSON with comments)
//  3. a .env file (if present) and the process environment
//
// The environment surface is a flat set of KEY=value pairs so that the
// same .env file a deployment already has keeps working. Validation
// collects every problem instead of stopping at the first one, because
// the check command reports the full list to the user.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/shinji-kodama/picbot/internal/model"
)

// Placeholder values from the shipped example configuration. A key
// still holding its placeholder counts as not configured.
const (
	placeholderToken      = "YOUR_BOT_TOKEN_HERE"
	placeholderImagesPath = "/path/to/your/images/folder"
	placeholderFolderID   = "your_folder_id_here"
)

// Defaults for optional keys.
const (
	DefaultCredentialsFile = "credentials.json"
	DefaultCacheDir        = "./image_cache"
	DefaultHistoryFile     = "sent_history.json"
	DefaultSendInterval    = 60 // minutes
	DefaultStartHour       = 9
	DefaultEndHour         = 21
)

// Config holds the effective picbot configuration.
type Config struct {
	// BotToken is the Telegram bot token issued by BotFather.
	BotToken string

	// ChatID is the destination chat: a numeric id or an "@channel" name.
	ChatID string

	// Source selects where images come from.
	Source model.ImageSource

	// ImagesPath is the local image folder. Required for the local
	// source; for the Drive source it is only used by the sync command.
	ImagesPath string

	// DriveCredentials is the path to the service-account JSON key.
	DriveCredentials string

	// DriveFolderID is the Google Drive folder to load images from.
	DriveFolderID string

	// DriveCacheDir is where Drive images are downloaded before sending.
	DriveCacheDir string

	// SendInterval is the scheduled send interval in minutes.
	SendInterval int

	// StartHour is the first hour (inclusive, local time) of the
	// sending window.
	StartHour int

	// EndHour is the end hour (exclusive, local time) of the sending
	// window.
	EndHour int

	// HistoryFile is the path of the sent-image ledger.
	HistoryFile string
}

// LoadOptions control where Load looks for its file-based layers.
type LoadOptions struct {
	// EnvFile is the dotenv file to load. Empty means ".env", and a
	// missing default file is not an error (a fresh checkout has none).
	// An explicitly named file that is missing IS an error.
	EnvFile string

	// ConfigFile is the JSONC config file. Same missing-file rules as
	// EnvFile, with default "picbot.jsonc".
	ConfigFile string
}

// Load assembles the configuration from defaults, the optional config
// file, the dotenv file, and the process environment.
//
// Load does not validate — callers decide whether to run Validate and
// how to present the collected errors (the check command prints all of
// them; run aborts on the first report).
func Load(opts LoadOptions) (*Config, error) {
	cfg := &Config{
		Source:           model.SourceLocal,
		DriveCredentials: DefaultCredentialsFile,
		DriveCacheDir:    DefaultCacheDir,
		SendInterval:     DefaultSendInterval,
		StartHour:        DefaultStartHour,
		EndHour:          DefaultEndHour,
		HistoryFile:      DefaultHistoryFile,
	}

	if err := applyFile(cfg, opts.ConfigFile); err != nil {
		return nil, err
	}

	if err := loadDotenv(opts.EnvFile); err != nil {
		return nil, err
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadDotenv loads the dotenv file into the process environment.
// godotenv never overrides variables that are already set, so real
// environment variables always win over .env contents.
func loadDotenv(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			// No .env in the working directory — fine, the process
			// environment may carry everything.
			return nil
		}
		return fmt.Errorf("env file %s: %w", path, err)
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to parse env file %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays environment variables onto cfg. Numeric keys that
// are set but not parseable are reported as errors rather than being
// silently ignored — a typo in SEND_INTERVAL should not yield a bot
// running on the default schedule.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.BotToken = v
	}
	if v := os.Getenv("CHAT_ID"); v != "" {
		cfg.ChatID = v
	}
	if v := os.Getenv("IMAGE_SOURCE"); v != "" {
		// Stored raw here; Validate reports unknown values with the
		// same message the check command has always shown.
		cfg.Source = model.ImageSource(v)
	}
	if v := os.Getenv("IMAGES_PATH"); v != "" {
		cfg.ImagesPath = v
	}
	if v := os.Getenv("GOOGLE_DRIVE_CREDENTIALS"); v != "" {
		cfg.DriveCredentials = v
	}
	if v := os.Getenv("GOOGLE_DRIVE_FOLDER_ID"); v != "" {
		cfg.DriveFolderID = v
	}
	if v := os.Getenv("GOOGLE_DRIVE_CACHE_DIR"); v != "" {
		cfg.DriveCacheDir = v
	}
	if v := os.Getenv("HISTORY_FILE"); v != "" {
		cfg.HistoryFile = v
	}

	for _, field := range []struct {
		key string
		dst *int
	}{
		{"SEND_INTERVAL", &cfg.SendInterval},
		{"START_HOUR", &cfg.StartHour},
		{"END_HOUR", &cfg.EndHour},
	} {
		v := os.Getenv(field.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", field.key, v)
		}
		*field.dst = n
	}

	return nil
}

// Validate checks the configuration and returns every problem found.
// An empty slice means the configuration is valid.
func (c *Config) Validate() []string {
	var errs []string

	if c.BotToken == "" || c.BotToken == placeholderToken {
		errs = append(errs, "BOT_TOKEN not configured")
	}

	if c.ChatID == "" {
		errs = append(errs, "CHAT_ID not set")
	}

	switch c.Source {
	case model.SourceLocal:
		if c.ImagesPath == "" || c.ImagesPath == placeholderImagesPath {
			errs = append(errs, "IMAGES_PATH not configured")
		} else if _, err := os.Stat(c.ImagesPath); err != nil {
			errs = append(errs, fmt.Sprintf("images path does not exist: %s", c.ImagesPath))
		}

	case model.SourceGoogleDrive:
		if c.DriveFolderID == "" || c.DriveFolderID == placeholderFolderID {
			errs = append(errs, "GOOGLE_DRIVE_FOLDER_ID not configured")
		}
		if _, err := os.Stat(c.DriveCredentials); err != nil {
			errs = append(errs, fmt.Sprintf("Google Drive credentials file not found: %s", c.DriveCredentials))
		}

	default:
		errs = append(errs, fmt.Sprintf("invalid IMAGE_SOURCE: %s (use 'local' or 'google_drive')", c.Source))
	}

	if c.SendInterval <= 0 {
		errs = append(errs, "SEND_INTERVAL must be greater than 0")
	}
	if c.StartHour < 0 || c.StartHour > 23 {
		errs = append(errs, "START_HOUR must be between 0 and 23")
	}
	if c.EndHour < 0 || c.EndHour > 23 {
		errs = append(errs, "END_HOUR must be between 0 and 23")
	}
	if c.StartHour >= c.EndHour {
		errs = append(errs, "START_HOUR must be less than END_HOUR")
	}

	return errs
}

// ChatRecipient returns the chat identifier in the form the Telegram
// API expects: an int64 for numeric ids, the raw string for "@channel"
// names.
func (c *Config) ChatRecipient() any {
	if id, err := strconv.ParseInt(c.ChatID, 10, 64); err == nil {
		return id
	}
	return c.ChatID
}

// MaskToken returns a token prefix safe for logs and reports.
// Only the first few characters are shown, never the secret part.
func MaskToken(token string) string {
	const visible = 10
	if token == "" {
		return "(not set)"
	}
	if len(token) <= visible {
		return token[:len(token)/2] + "..."
	}
	return token[:visible] + "..."
}
