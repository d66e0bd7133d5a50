package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [note-id]",
	Short: "Show index statistics",
	Long: `Shows what the index currently holds. With a note ID, reports how
many documents that note has; otherwise reports totals for the whole
index.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := wireServices(); err != nil {
		return err
	}
	if docStore == nil {
		return errors.New("document store not configured")
	}

	ctx := context.Background()

	if len(args) == 1 {
		noteID := args[0]
		count, err := docStore.CountForNote(ctx, noteID)
		if err != nil {
			return fmt.Errorf("status failed: %w", err)
		}
		cmd.Printf("Note %s: %d documents.\n", noteID, count)
		return nil
	}

	stats, err := docStore.Stats(ctx)
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	cmd.Printf("Documents:  %d\n", stats.Documents)
	cmd.Printf("Notes:      %d\n", stats.Notes)
	cmd.Printf("Dimensions: %d\n", stats.Dimensions)
	if embedService != nil {
		cmd.Printf("Model:      %s\n", embedService.ModelName())
	}
	return nil
}
