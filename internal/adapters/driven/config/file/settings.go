package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/noteseek/internal/core/domain"
	"github.com/custodia-labs/noteseek/internal/core/ports/driven"
)

// Configuration keys.
const (
	KeyNotesDir     = "notes.dir"
	KeyChunkPolicy  = "index.chunk_policy"
	KeyEmbedWorkers = "index.workers"
	KeyDataDir      = "storage.data_dir"
	KeyProvider     = "embedding.provider"
	KeyModel        = "embedding.model"
	KeyDimensions   = "embedding.dimensions"
	KeyBaseURL      = "embedding.base_url"
	KeyAPIKeyEnv    = "embedding.api_key_env"
	KeyEmbedRPS     = "embedding.rate_limit_rps"
)

// Supported embedding providers.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Defaults applied when the config file leaves a key unset.
const (
	DefaultProvider   = ProviderOllama
	DefaultModel      = "nomic-embed-text"
	DefaultDimensions = 768
	DefaultAPIKeyEnv  = "OPENAI_API_KEY"
)

// Settings is the resolved noteseek configuration: every key read once,
// defaults applied, ready to wire adapters from.
type Settings struct {
	// NotesDir is the root of the notes tree. Empty means ~/notes.
	NotesDir string

	// DataDir holds the index database. Empty means ~/.noteseek/data.
	DataDir string

	// ChunkPolicy names the chunking policy ("whole" or "paragraph").
	ChunkPolicy string

	// Workers bounds concurrent embedding requests during reindex.
	Workers int

	// Provider selects the embedding backend ("openai" or "ollama").
	Provider string

	// Model is the embedding model name.
	Model string

	// Dimensions is the embedding vector size. Must match the model.
	Dimensions int

	// BaseURL overrides the provider endpoint, for local gateways.
	BaseURL string

	// APIKeyEnv names the environment variable holding the OpenAI key.
	APIKeyEnv string

	// EmbedRPS throttles embedding requests per second. Zero disables.
	EmbedRPS float64
}

// SettingsFrom resolves Settings from a config store, applying defaults.
func SettingsFrom(store driven.ConfigStore) Settings {
	s := Settings{
		NotesDir:    store.GetString(KeyNotesDir),
		DataDir:     store.GetString(KeyDataDir),
		ChunkPolicy: store.GetString(KeyChunkPolicy),
		Workers:     store.GetInt(KeyEmbedWorkers),
		Provider:    store.GetString(KeyProvider),
		Model:       store.GetString(KeyModel),
		Dimensions:  store.GetInt(KeyDimensions),
		BaseURL:     store.GetString(KeyBaseURL),
		APIKeyEnv:   store.GetString(KeyAPIKeyEnv),
		EmbedRPS:    store.GetFloat(KeyEmbedRPS),
	}

	if s.Provider == "" {
		s.Provider = DefaultProvider
	}
	if s.Model == "" {
		s.Model = DefaultModel
	}
	if s.Dimensions <= 0 {
		s.Dimensions = DefaultDimensions
	}
	if s.APIKeyEnv == "" {
		s.APIKeyEnv = DefaultAPIKeyEnv
	}
	return s
}

// Validate checks provider selection before any adapter is built.
func (s Settings) Validate() error {
	switch s.Provider {
	case ProviderOpenAI, ProviderOllama:
		return nil
	default:
		return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, s.Provider)
	}
}

// ResolveDataDir returns the data directory, defaulting to ~/.noteseek/data.
func (s Settings) ResolveDataDir() (string, error) {
	if s.DataDir != "" {
		return s.DataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".noteseek", "data"), nil
}
