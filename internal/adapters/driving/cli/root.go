// Package cli implements the noteseek command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/noteseek/internal/adapters/driven/config/file"
	"github.com/custodia-labs/noteseek/internal/adapters/driven/embedding"
	"github.com/custodia-labs/noteseek/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/noteseek/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/noteseek/internal/adapters/driven/notes"
	"github.com/custodia-labs/noteseek/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/noteseek/internal/chunker"
	"github.com/custodia-labs/noteseek/internal/core/ports/driven"
	"github.com/custodia-labs/noteseek/internal/core/ports/driving"
	"github.com/custodia-labs/noteseek/internal/core/services"
	"github.com/custodia-labs/noteseek/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// verbose toggles debug logging.
var verbose bool

// Services wired by wireServices. Tests inject mocks by assigning these
// directly before executing a command.
var (
	indexService  driving.Indexer
	searchService driving.SearchService
	noteSource    driven.NoteSource
	docStore      driven.DocumentStore
	embedService  driven.EmbeddingService
	settings      file.Settings
)

var rootCmd = &cobra.Command{
	Use:   "noteseek",
	Short: "Semantic search over your notes",
	Long: `Noteseek keeps an embedding index of a directory of plain-text notes
and answers similarity searches against it. Notes are chunked, embedded
via a configured provider, and stored in a single SQLite file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetVersion records the binary version for the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

// wireServices builds the adapter stack from configuration. Idempotent:
// already-assigned services (including test mocks) are left alone.
func wireServices() error {
	if indexService != nil && searchService != nil {
		return nil
	}

	logger.Section("Service Wiring")

	cfg, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger.Debug("Config: %s", cfg.Path())

	settings = file.SettingsFrom(cfg)
	if err := settings.Validate(); err != nil {
		return err
	}

	source, err := notes.NewSource(settings.NotesDir)
	if err != nil {
		return fmt.Errorf("opening notes directory: %w", err)
	}
	logger.Debug("Notes: %s", source.Root())

	dataDir, err := settings.ResolveDataDir()
	if err != nil {
		return fmt.Errorf("resolving data directory: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	store, err := sqlite.NewStore(dataDir, settings.Dimensions)
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	logger.Debug("Index: %s (%d dimensions)", dataDir, settings.Dimensions)

	embedder, err := buildEmbedder(settings)
	if err != nil {
		store.Close() //nolint:errcheck
		return err
	}
	logger.Debug("Embedding: %s via %s", embedder.ModelName(), settings.Provider)

	policy, err := chunker.PolicyByName(settings.ChunkPolicy)
	if err != nil {
		store.Close() //nolint:errcheck
		return fmt.Errorf("chunk policy: %w", err)
	}

	docStore = store
	embedService = embedder
	noteSource = source
	indexService = services.NewIndexService(store, embedder, source, policy, settings.Workers)
	searchService = services.NewSearchService(store, embedder, source)
	return nil
}

// buildEmbedder constructs the configured embedding provider, wrapped with
// the rate limiter when a limit is set.
func buildEmbedder(s file.Settings) (driven.EmbeddingService, error) {
	var svc driven.EmbeddingService

	switch s.Provider {
	case file.ProviderOpenAI:
		apiKey := os.Getenv(s.APIKeyEnv)
		openaiSvc, err := openai.NewEmbeddingService(openai.Config{
			APIKey:     apiKey,
			BaseURL:    s.BaseURL,
			Model:      s.Model,
			Dimensions: s.Dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("openai (set %s): %w", s.APIKeyEnv, err)
		}
		svc = openaiSvc
	case file.ProviderOllama:
		svc = ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    s.BaseURL,
			Model:      s.Model,
			Dimensions: s.Dimensions,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", s.Provider)
	}

	return embedding.RateLimited(svc, s.EmbedRPS, 1), nil
}

// closeServices releases the store and provider connections.
func closeServices() {
	if docStore != nil {
		if err := docStore.Close(); err != nil {
			logger.Warn("Closing store: %v", err)
		}
	}
	if embedService != nil {
		if err := embedService.Close(); err != nil {
			logger.Warn("Closing embedding service: %v", err)
		}
	}
}
