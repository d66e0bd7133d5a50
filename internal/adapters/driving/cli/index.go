package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/noteseek/internal/core/ports/driving"
)

var indexAll bool

var indexCmd = &cobra.Command{
	Use:   "index [note-id]",
	Short: "Index notes into the embedding store",
	Long: `Reindexes notes: each note is cleared from the index, chunked,
embedded, and inserted again. With a note ID only that note is
reindexed; with --all (or no arguments) the whole notes directory is.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexAll, "all", false, "reindex every note")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if err := wireServices(); err != nil {
		return err
	}
	if indexService == nil {
		return errors.New("index service not configured")
	}

	ctx := context.Background()

	if len(args) == 1 && !indexAll {
		noteID := args[0]
		cmd.Printf("Indexing note: %s...\n", noteID)

		report, err := indexService.ReindexNote(ctx, noteID)
		if err != nil {
			return fmt.Errorf("index failed: %w", err)
		}

		printFailures(cmd, report.Failures)
		cmd.Printf("Note %s indexed: %d documents (%d failures).\n",
			noteID, report.Indexed, len(report.Failures))
		return nil
	}

	cmd.Println("Indexing all notes...")

	report, err := reindexAllWithProgress(ctx, cmd, indexService)
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	printFailures(cmd, report.Failures)
	cmd.Printf("Indexed %d notes: %d documents (%d failures).\n",
		report.Notes, report.Indexed, len(report.Failures))
	return nil
}

// printFailures lists per-document failures, if any.
func printFailures(cmd *cobra.Command, failures []driving.DocumentFailure) {
	for _, f := range failures {
		cmd.Printf("  failed: %s@%d: %v\n", f.NoteID, f.StartOffset, f.Err)
	}
}

// reindexAllWithProgress runs a full reindex while displaying progress.
func reindexAllWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	indexer driving.Indexer,
) (*driving.RunReport, error) {
	type outcome struct {
		report *driving.RunReport
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		report, err := indexer.ReindexAll(ctx)
		done <- outcome{report: report, err: err}
	}()

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case res := <-done:
			if lastCount > 0 {
				cmd.Printf("\r")
			}
			return res.report, res.err
		case <-ticker.C:
			// Best effort; a status error never aborts the run
			status, err := indexer.Status(ctx)
			if err == nil && status != nil && status.NotesProcessed > lastCount {
				cmd.Printf("\rProcessing... %d notes", status.NotesProcessed)
				lastCount = status.NotesProcessed
			}
		}
	}
}
