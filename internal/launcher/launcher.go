// Package launcher runs the startup preflight: an ordered list of
// named steps executed sequentially with colorized status output,
// aborting at the first failure.
//
// This is the bootstrap contract the bot has always had — check the
// prerequisites, prepare the environment (creating state directories
// once and reusing them on later runs), verify the configuration, and
// only then hand control to the main program. A step failure stops the
// pipeline immediately; nothing after it runs.
package launcher

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/shinji-kodama/picbot/internal/model"
)

// Step is a single named preflight action. Run returns an optional
// note shown next to the success mark (e.g. "already exists, reusing")
// and an error that aborts the whole pipeline.
type Step struct {
	// Name is the progress line label, e.g. "Checking configuration".
	Name string

	// Run performs the step.
	Run func(ctx context.Context) (note string, err error)
}

// Styles for the status lines. Plain ANSI palette indexes, same colors
// the old shell launcher used.
var (
	stepStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")) // cyan
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	noteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
)

// Runner executes steps and writes progress to out.
type Runner struct {
	out io.Writer
}

// NewRunner creates a Runner writing status lines to out.
func NewRunner(out io.Writer) *Runner {
	return &Runner{out: out}
}

// Run executes the steps in order, failing fast. The returned error is
// the failing step's error wrapped with the step name; its CLIError
// exit code (if any) survives for errors.As at the CLI boundary.
func (r *Runner) Run(ctx context.Context, steps []Step) error {
	total := len(steps)
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		prefix := fmt.Sprintf("[%d/%d]", i+1, total)
		fmt.Fprintf(r.out, "%s %s... ", prefix, stepStyle.Render(step.Name))

		note, err := step.Run(ctx)
		if err != nil {
			fmt.Fprintln(r.out, failStyle.Render("failed"))
			fmt.Fprintf(r.out, "%s %v\n", failStyle.Render("✗"), err)
			return fmt.Errorf("%s: %w", step.Name, err)
		}

		if note != "" {
			fmt.Fprintf(r.out, "%s %s\n", okStyle.Render("ok"), noteStyle.Render("("+note+")"))
		} else {
			fmt.Fprintln(r.out, okStyle.Render("ok"))
		}
	}
	return nil
}

// EnsureDirs is a convenience step builder: it creates the given
// directories if needed, reporting whether anything had to be created.
// A second run over existing directories is a no-op with a note, never
// an error.
func EnsureDirs(dirs ...string) Step {
	return Step{
		Name: "Preparing state directories",
		Run: func(_ context.Context) (string, error) {
			created := 0
			for _, dir := range dirs {
				if dir == "" {
					continue
				}
				existed, err := ensureDir(dir)
				if err != nil {
					return "", model.WrapCLIError(model.ExitGeneralError,
						fmt.Sprintf("failed to create directory %s", dir), err)
				}
				if !existed {
					created++
				}
			}
			if created == 0 {
				return "already exist, reusing", nil
			}
			return fmt.Sprintf("created %d", created), nil
		},
	}
}

// ensureDir creates dir if missing and reports whether it already
// existed.
func ensureDir(dir string) (existed bool, err error) {
	if info, statErr := os.Stat(dir); statErr == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("%s exists but is not a directory", dir)
		}
		return true, nil
	}
	return false, os.MkdirAll(dir, 0o755)
}
