// Package cli — check.go implements the "picbot check" command.
//
// check validates the effective configuration and prints a formatted
// report: the configuration summary with sends-per-day on success, the
// full numbered error list with next-step guidance on failure.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/picbot/internal/config"
	"github.com/shinji-kodama/picbot/internal/model"
)

// Report styles. The header bar matches the launcher's step colors so
// run and check look like the same tool.
var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	validStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	labelStyle  = lipgloss.NewStyle().Width(14)
)

// NewCheckCommand creates the "check" cobra command.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and print a report",
		Long: `Validate the effective configuration.

On success, prints the configuration summary and the computed number of
scheduled sends per day. On failure, lists every problem found plus
guidance for fixing them, and exits with code 2.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck()
		},
	}
}

// runCheck loads the configuration, collects every validation problem,
// and prints the report.
func runCheck() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	problems := cfg.Validate()

	if IsJSONOutput() {
		return printCheckJSON(cfg, problems)
	}
	return printCheckText(cfg, problems)
}

// sendsPerDay computes how many scheduled sends fit into the daily
// window at the configured interval.
func sendsPerDay(cfg *config.Config) int {
	if cfg.SendInterval <= 0 {
		return 0
	}
	windowMinutes := (cfg.EndHour - cfg.StartHour) * 60
	if windowMinutes < 0 {
		return 0
	}
	return windowMinutes / cfg.SendInterval
}

// printCheckJSON emits the machine-readable report.
func printCheckJSON(cfg *config.Config, problems []string) error {
	type reportJSON struct {
		Valid       bool     `json:"valid"`
		Errors      []string `json:"errors,omitempty"`
		Source      string   `json:"source,omitempty"`
		ChatID      string   `json:"chatId,omitempty"`
		Interval    int      `json:"sendIntervalMinutes,omitempty"`
		StartHour   int      `json:"startHour,omitempty"`
		EndHour     int      `json:"endHour,omitempty"`
		SendsPerDay int      `json:"sendsPerDay,omitempty"`
	}

	report := reportJSON{Valid: len(problems) == 0, Errors: problems}
	if report.Valid {
		report.Source = cfg.Source.String()
		report.ChatID = cfg.ChatID
		report.Interval = cfg.SendInterval
		report.StartHour = cfg.StartHour
		report.EndHour = cfg.EndHour
		report.SendsPerDay = sendsPerDay(cfg)
	}

	data, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(data))

	if !report.Valid {
		return model.NewCLIError(model.ExitConfigInvalid, "configuration has errors")
	}
	return nil
}

// printCheckText emits the human-readable report in the layout the
// original launcher scripts printed.
func printCheckText(cfg *config.Config, problems []string) error {
	printHeader("Picture Bot - Configuration Check")

	if len(problems) == 0 {
		fmt.Println(validStyle.Render("✓ Configuration is valid!"))
		fmt.Println()
		fmt.Println("Current Configuration:")
		printField("Bot Token:", config.MaskToken(cfg.BotToken))
		printField("Chat ID:", cfg.ChatID)
		printField("Source:", cfg.Source.String())
		if cfg.Source == model.SourceLocal {
			printField("Images Path:", cfg.ImagesPath)
		} else {
			printField("Drive Folder:", cfg.DriveFolderID)
			printField("Credentials:", cfg.DriveCredentials)
			printField("Cache Dir:", cfg.DriveCacheDir)
		}
		printField("Interval:", fmt.Sprintf("%d minutes", cfg.SendInterval))
		printField("Schedule:", fmt.Sprintf("%02d:00 - %02d:00", cfg.StartHour, cfg.EndHour))
		printField("History:", cfg.HistoryFile)

		fmt.Printf("\nSends per day: %d\n", sendsPerDay(cfg))

		printHeader("Setup Complete!")
		fmt.Println("You can now run: picbot run")
		return nil
	}

	fmt.Println(errStyle.Render("✗ Configuration has errors!"))
	fmt.Println()
	fmt.Println("Issues found:")
	for i, p := range problems {
		fmt.Printf("  %d. %s\n", i+1, p)
	}

	printHeader("Next Steps")
	fmt.Println(`1. Open the .env file in your editor
2. Update the missing/invalid configuration values
3. Run this check again to verify

Configuration file: .env
Example values for .env:
  BOT_TOKEN=123456789:ABCDefGHIjklMNOpqrsTUVwxyz
  CHAT_ID=987654321
  IMAGE_SOURCE=local
  IMAGES_PATH=/home/user/my_images
  SEND_INTERVAL=60
  START_HOUR=9
  END_HOUR=21`)

	return model.NewCLIError(model.ExitConfigInvalid, "configuration has errors")
}

// printHeader prints a banner line framed by separators.
func printHeader(text string) {
	bar := headerStyle.Render("============================================================")
	fmt.Println()
	fmt.Println(bar)
	fmt.Println(headerStyle.Render(" " + text))
	fmt.Println(bar)
	fmt.Println()
}

// printField prints one aligned "label value" line of the summary.
func printField(label, value string) {
	fmt.Fprintf(os.Stdout, "  %s %s\n", labelStyle.Render(label), value)
}
