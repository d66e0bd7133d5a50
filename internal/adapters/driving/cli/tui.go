package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/noteseek/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive search UI",
	Long: `Launch the interactive terminal user interface for noteseek.

Type a query, press enter to search, then navigate the ranked passages.
Selecting a result prints its location (path:offset) to stdout on exit,
ready for editor integration.

Controls:
  Enter    - Search / Select
  Tab      - Switch between input and results
  ↑/k, ↓/j - Navigate results
  Esc, q   - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Panic recovery keeps the terminal usable and shows the stack
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if err := wireServices(); err != nil {
		return err
	}

	app, err := tui.NewApp(&tui.Ports{Search: searchService})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	model, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	// Print the accepted location for editor integration.
	if final, ok := model.(*tui.App); ok {
		if sel := final.Selection(); sel != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s:%d\n", sel.Path, sel.StartOffset)
		}
	}

	return nil
}
