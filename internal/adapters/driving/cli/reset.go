package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/noteseek/internal/core/domain"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the entire index",
	Long: `Drops every document record and embedding and recreates the empty
schema. Notes on disk are untouched. Asks for confirmation on a
terminal; use --force to skip the prompt (required when not a TTY).`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	if err := wireServices(); err != nil {
		return err
	}
	if indexService == nil {
		return errors.New("index service not configured")
	}

	force := resetForce
	if !force {
		confirmed, err := confirmReset(cmd)
		if err != nil {
			return err
		}
		force = confirmed
	}

	err := indexService.ResetIndex(context.Background(), force)
	if errors.Is(err, domain.ErrNotConfirmed) {
		cmd.Println("Reset aborted.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}

	cmd.Println("Index reset. Run 'noteseek index --all' to rebuild.")
	return nil
}

// confirmReset asks for confirmation on a terminal. Off-terminal callers
// must pass --force; scripted pipes never destroy an index by accident.
func confirmReset(cmd *cobra.Command) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New("refusing to reset without --force on a non-interactive session")
	}

	cmd.Print("This deletes the entire index (notes are untouched). Continue? [y/N] ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
