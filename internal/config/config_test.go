package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/picbot/internal/model"
)

// clearPicbotEnv unsets every configuration key for the duration of the
// test so results do not depend on the developer's shell environment.
// t.Setenv is used (rather than os.Unsetenv) so the previous values are
// restored automatically.
func clearPicbotEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BOT_TOKEN", "CHAT_ID", "IMAGE_SOURCE", "IMAGES_PATH",
		"GOOGLE_DRIVE_CREDENTIALS", "GOOGLE_DRIVE_FOLDER_ID",
		"GOOGLE_DRIVE_CACHE_DIR", "SEND_INTERVAL", "START_HOUR",
		"END_HOUR", "HISTORY_FILE",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

// TestLoad_Defaults verifies the built-in defaults when no file or
// environment layer contributes anything.
func TestLoad_Defaults(t *testing.T) {
	clearPicbotEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, model.SourceLocal, cfg.Source)
	assert.Equal(t, DefaultCredentialsFile, cfg.DriveCredentials)
	assert.Equal(t, DefaultCacheDir, cfg.DriveCacheDir)
	assert.Equal(t, DefaultHistoryFile, cfg.HistoryFile)
	assert.Equal(t, DefaultSendInterval, cfg.SendInterval)
	assert.Equal(t, DefaultStartHour, cfg.StartHour)
	assert.Equal(t, DefaultEndHour, cfg.EndHour)
	assert.Empty(t, cfg.BotToken)
}

// TestLoad_EnvOverlay verifies that process environment variables land
// in the right fields, including integer parsing.
func TestLoad_EnvOverlay(t *testing.T) {
	clearPicbotEnv(t)
	t.Chdir(t.TempDir())

	t.Setenv("BOT_TOKEN", "123456:abcdef")
	t.Setenv("CHAT_ID", "-1001234")
	t.Setenv("IMAGE_SOURCE", "google_drive")
	t.Setenv("GOOGLE_DRIVE_FOLDER_ID", "folder-1")
	t.Setenv("SEND_INTERVAL", "15")
	t.Setenv("START_HOUR", "8")
	t.Setenv("END_HOUR", "22")

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "123456:abcdef", cfg.BotToken)
	assert.Equal(t, "-1001234", cfg.ChatID)
	assert.Equal(t, model.SourceGoogleDrive, cfg.Source)
	assert.Equal(t, "folder-1", cfg.DriveFolderID)
	assert.Equal(t, 15, cfg.SendInterval)
	assert.Equal(t, 8, cfg.StartHour)
	assert.Equal(t, 22, cfg.EndHour)
}

// TestLoad_InvalidInteger verifies that non-numeric values for numeric
// keys are an error instead of silently falling back to defaults.
func TestLoad_InvalidInteger(t *testing.T) {
	clearPicbotEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("SEND_INTERVAL", "two hours")

	_, err := Load(LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SEND_INTERVAL")
}

// TestLoad_DotenvFile verifies that a .env file in the working
// directory is read, and that a real environment variable wins over it.
func TestLoad_DotenvFile(t *testing.T) {
	clearPicbotEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	env := "BOT_TOKEN=from-dotenv\nCHAT_ID=42\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644))

	t.Setenv("BOT_TOKEN", "from-environment")

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "from-environment", cfg.BotToken, "process env must win over .env")
	assert.Equal(t, "42", cfg.ChatID, ".env must fill keys the env leaves unset")
}

// TestLoad_MissingExplicitEnvFile verifies that an explicitly requested
// env file that does not exist is an error, while the implicit default
// is allowed to be absent (covered by TestLoad_Defaults).
func TestLoad_MissingExplicitEnvFile(t *testing.T) {
	clearPicbotEnv(t)
	t.Chdir(t.TempDir())

	_, err := Load(LoadOptions{EnvFile: "nope.env"})
	assert.Error(t, err)
}

// TestLoad_JSONCFile verifies the config file layer: comments are
// stripped, values land in fields, and the environment still overrides
// the file.
func TestLoad_JSONCFile(t *testing.T) {
	clearPicbotEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	content := `{
  // telegram credentials
  "botToken": "file-token",
  "chatId": "@mychannel",
  "sendInterval": 30, // minutes
  "historyFile": "state/history.json"
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(content), 0o644))

	t.Setenv("SEND_INTERVAL", "45")

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.BotToken)
	assert.Equal(t, "@mychannel", cfg.ChatID)
	assert.Equal(t, 45, cfg.SendInterval, "environment must win over the config file")
	assert.Equal(t, "state/history.json", cfg.HistoryFile)
}

// TestLoad_MalformedJSONC verifies that a syntactically broken config
// file is reported as an error naming the file.
func TestLoad_MalformedJSONC(t *testing.T) {
	clearPicbotEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("{nope"), 0o644))

	_, err := Load(LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), DefaultConfigFile)
}

// TestValidate_CollectsAllErrors verifies that validation reports every
// problem in one pass — the check command shows users the full list.
func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Source:       model.SourceLocal,
		SendInterval: 0,
		StartHour:    25,
		EndHour:      21,
	}

	errs := cfg.Validate()

	assert.Contains(t, errs, "BOT_TOKEN not configured")
	assert.Contains(t, errs, "CHAT_ID not set")
	assert.Contains(t, errs, "IMAGES_PATH not configured")
	assert.Contains(t, errs, "SEND_INTERVAL must be greater than 0")
	assert.Contains(t, errs, "START_HOUR must be between 0 and 23")
	assert.GreaterOrEqual(t, len(errs), 5)
}

// TestValidate_PlaceholdersRejected verifies that the example values
// shipped in documentation are treated as unset.
func TestValidate_PlaceholdersRejected(t *testing.T) {
	cfg := &Config{
		BotToken:     placeholderToken,
		ChatID:       "42",
		Source:       model.SourceLocal,
		ImagesPath:   placeholderImagesPath,
		SendInterval: 60,
		StartHour:    9,
		EndHour:      21,
	}

	errs := cfg.Validate()
	assert.Contains(t, errs, "BOT_TOKEN not configured")
	assert.Contains(t, errs, "IMAGES_PATH not configured")
}

// TestValidate_LocalSourceValid verifies a fully valid local-source
// configuration produces no errors.
func TestValidate_LocalSourceValid(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		BotToken:     "123:abc",
		ChatID:       "42",
		Source:       model.SourceLocal,
		ImagesPath:   dir,
		SendInterval: 60,
		StartHour:    9,
		EndHour:      21,
	}

	assert.Empty(t, cfg.Validate())
}

// TestValidate_DriveSource verifies the Drive-specific requirements:
// folder id present and credentials file on disk.
func TestValidate_DriveSource(t *testing.T) {
	dir := t.TempDir()
	creds := filepath.Join(dir, "credentials.json")
	require.NoError(t, os.WriteFile(creds, []byte("{}"), 0o600))

	cfg := &Config{
		BotToken:         "123:abc",
		ChatID:           "42",
		Source:           model.SourceGoogleDrive,
		DriveCredentials: creds,
		DriveFolderID:    "folder-1",
		SendInterval:     60,
		StartHour:        9,
		EndHour:          21,
	}
	assert.Empty(t, cfg.Validate())

	cfg.DriveFolderID = ""
	cfg.DriveCredentials = filepath.Join(dir, "missing.json")
	errs := cfg.Validate()
	assert.Len(t, errs, 2)
}

// TestValidate_UnknownSource verifies the error message for an
// unrecognized IMAGE_SOURCE value.
func TestValidate_UnknownSource(t *testing.T) {
	cfg := &Config{
		BotToken:     "123:abc",
		ChatID:       "42",
		Source:       model.ImageSource("dropbox"),
		SendInterval: 60,
		StartHour:    9,
		EndHour:      21,
	}

	errs := cfg.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "invalid IMAGE_SOURCE: dropbox")
}

// TestChatRecipient verifies the numeric/username split used when
// addressing Telegram API calls.
func TestChatRecipient(t *testing.T) {
	numeric := &Config{ChatID: "-1001234567890"}
	assert.Equal(t, int64(-1001234567890), numeric.ChatRecipient())

	channel := &Config{ChatID: "@drunklinked"}
	assert.Equal(t, "@drunklinked", channel.ChatRecipient())
}

// TestMaskToken verifies that only a short prefix of the token is ever
// exposed.
func TestMaskToken(t *testing.T) {
	assert.Equal(t, "(not set)", MaskToken(""))
	assert.Equal(t, "123456789A...", MaskToken("123456789ABCDEFGH"))
	assert.NotContains(t, MaskToken("123456789ABCDEFGH"), "BCDEFGH")
	assert.Equal(t, "sh...", MaskToken("short"))
}
