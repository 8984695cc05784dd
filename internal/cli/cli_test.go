package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/picbot/internal/config"
	"github.com/shinji-kodama/picbot/internal/model"
	"github.com/shinji-kodama/picbot/internal/source"
)

// TestSendsPerDay verifies the daily send count computed by the check
// report for typical and degenerate windows.
func TestSendsPerDay(t *testing.T) {
	tests := []struct {
		name     string
		interval int
		start    int
		end      int
		want     int
	}{
		{"hourly in 12h window", 60, 9, 21, 12},
		{"every 30 min in 12h window", 30, 9, 21, 24},
		{"interval longer than window", 120 * 60, 9, 21, 0},
		{"zero interval", 0, 9, 21, 0},
		{"inverted window", 60, 21, 9, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				SendInterval: tt.interval,
				StartHour:    tt.start,
				EndHour:      tt.end,
			}
			assert.Equal(t, tt.want, sendsPerDay(cfg))
		})
	}
}

// TestStateDirs verifies the run preflight prepares the history
// directory always and the Drive cache only for the Drive source.
func TestStateDirs(t *testing.T) {
	local := &config.Config{
		Source:      model.SourceLocal,
		HistoryFile: "/var/lib/picbot/sent_history.json",
	}
	assert.Equal(t, []string{"/var/lib/picbot"}, stateDirs(local))

	drive := &config.Config{
		Source:        model.SourceGoogleDrive,
		HistoryFile:   "/var/lib/picbot/sent_history.json",
		DriveCacheDir: "/var/cache/picbot",
	}
	assert.Equal(t, []string{"/var/lib/picbot", "/var/cache/picbot"}, stateDirs(drive))
}

// TestValidateConfigFoldsProblems verifies that the fail-fast paths
// surface validation problems as a configuration CLIError, mentioning
// the remaining problem count when there is more than one.
func TestValidateConfigFoldsProblems(t *testing.T) {
	valid := &config.Config{
		BotToken:     "123456:token",
		ChatID:       "42",
		Source:       model.SourceLocal,
		ImagesPath:   t.TempDir(),
		SendInterval: 60,
		StartHour:    9,
		EndHour:      21,
		HistoryFile:  "sent_history.json",
	}
	assert.NoError(t, validateConfig(valid))

	broken := &config.Config{Source: model.SourceLocal}
	err := validateConfig(broken)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitConfigInvalid, cliErr.Code)
	assert.Contains(t, cliErr.Message, "more")
}

// testLibraryConfig builds a config pointing at a fresh image folder
// with one image and the given history file.
func testLibraryConfig(t *testing.T, historyFile string) *config.Config {
	t.Helper()

	imagesDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(imagesDir, "cat.jpg"), []byte("jpg"), 0o644))

	return &config.Config{
		Source:      model.SourceLocal,
		ImagesPath:  imagesDir,
		HistoryFile: historyFile,
	}
}

// TestLoadLibraryCorruptHistory verifies that a history file that
// cannot be parsed does not abort startup: the library comes up with
// an empty ledger and every image eligible, matching how the bot has
// always recovered from a damaged ledger.
func TestLoadLibraryCorruptHistory(t *testing.T) {
	historyFile := filepath.Join(t.TempDir(), "sent_history.json")
	require.NoError(t, os.WriteFile(historyFile, []byte("{not json"), 0o644))

	cfg := testLibraryConfig(t, historyFile)
	lib, err := loadLibrary(context.Background(), cfg, source.NewLocal(cfg.ImagesPath), log.New(io.Discard))
	require.NoError(t, err)
	require.NotNil(t, lib)

	stats := lib.Stats()
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Unsent)
}

// TestLoadLibraryUnreadableHistory verifies that a real I/O failure on
// the ledger (here: the path is a directory) still aborts with the
// history exit code — only parse damage is tolerated.
func TestLoadLibraryUnreadableHistory(t *testing.T) {
	cfg := testLibraryConfig(t, t.TempDir())

	_, err := loadLibrary(context.Background(), cfg, source.NewLocal(cfg.ImagesPath), log.New(io.Discard))
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitHistoryError, cliErr.Code)
}

// TestChatRecorder verifies the chat-id watcher prints each chat once,
// ignores update types without a message, and keeps an accurate count.
func TestChatRecorder(t *testing.T) {
	var out bytes.Buffer
	rec := newChatRecorder(&out)

	private := &models.Update{Message: &models.Message{
		Chat: models.Chat{ID: 987654321, Type: "private", FirstName: "Ivan"},
	}}
	channel := &models.Update{Message: &models.Message{
		Chat: models.Chat{ID: -1001234, Type: "channel", Title: "Pics"},
	}}

	rec.handle(context.Background(), nil, private)
	rec.handle(context.Background(), nil, private) // duplicate chat
	rec.handle(context.Background(), nil, channel)
	rec.handle(context.Background(), nil, &models.Update{}) // no message

	assert.Equal(t, 2, rec.count())
	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("987654321")))
	assert.Contains(t, out.String(), "Ivan")
	assert.Contains(t, out.String(), "Pics")
}
