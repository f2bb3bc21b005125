package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/procdesk/internal/adapters/driving/tui"
)

var tuiArchiveDir string

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal panel",
	Long: `Launch the interactive terminal panel for procdesk.

The panel asks for the access key, then lets the operator pick a process,
run it on a PDF and review or clear the usage ledger.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Select / Run
  Tab      - Next field
  Esc      - Back
  ?        - Help
  q        - Quit`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVarP(&tuiArchiveDir, "out", "o", ".", "directory for result archives")
	rootCmd.AddCommand(tuiCmd)
}

// newTUIPorts builds the panel's ports from the configured services.
func newTUIPorts() (*tui.Ports, error) {
	if processService == nil || ledgerService == nil || sessionGate == nil {
		return nil, errors.New("services not configured")
	}
	return &tui.Ports{
		Process:    processService,
		Ledger:     ledgerService,
		Sessions:   sessionGate,
		User:       operatorName(),
		ArchiveDir: tuiArchiveDir,
	}, nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ports, err := newTUIPorts()
	if err != nil {
		return err
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(commandContext(cmd))

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
