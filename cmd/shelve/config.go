package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/lthms/shelve/internal/embed"
	"github.com/lthms/shelve/internal/vault"
)

// UserConfig holds user-level configuration loaded from
// ~/.config/shelve/config.toml. Every field is optional; defaults fill the
// gaps and flags override the file.
type UserConfig struct {
	Vault     VaultConfig     `toml:"vault"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Analysis  AnalysisConfig  `toml:"analysis"`
}

// VaultConfig locates the vault and its derived artifacts.
type VaultConfig struct {
	Root  string `toml:"root"`
	DB    string `toml:"db"`
	Cache string `toml:"cache"`
}

// EmbeddingConfig selects the embedding backend.
type EmbeddingConfig struct {
	URL   string `toml:"url"`
	Model string `toml:"model"`
	Task  string `toml:"task"`
}

// AnalysisConfig mirrors the engine tunables.
type AnalysisConfig struct {
	DistanceThreshold   float64 `toml:"distance_threshold"`
	ZThreshold          float64 `toml:"z_threshold"`
	MinFilesForRanking  int     `toml:"min_files_for_ranking"`
	MinFilesForOutliers int     `toml:"min_files_for_outliers"`
	TopK                int     `toml:"top_k"`
	MinSimilarity       float64 `toml:"min_similarity"`
	Inbox               string  `toml:"inbox"`
}

// settings is the fully resolved runtime configuration: config file merged
// with defaults, command flags applied on top by the individual commands.
type settings struct {
	VaultRoot string
	DBPath    string
	CachePath string

	OllamaURL string
	Model     embed.Model
	Task      string

	Params vault.Params
}

// modelRegistry maps short model names to their registry entries.
var modelRegistry = map[string]embed.Model{
	"Qwen3-Embedding": embed.Qwen3Embedding(),
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "shelve", "config.toml")
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "shelve.db"
	}
	return filepath.Join(home, ".local", "share", "shelve", "shelve.db")
}

// loadConfig reads the config file and resolves it to runtime settings.
// A missing file is fine; a present but unparseable file is not.
func loadConfig(path string) (settings, error) {
	if path == "" {
		path = defaultConfigPath()
	}

	var cfg UserConfig
	if path != "" {
		_, err := toml.DecodeFile(path, &cfg)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return settings{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return resolveConfig(cfg)
}

func resolveConfig(cfg UserConfig) (settings, error) {
	st := settings{
		VaultRoot: cfg.Vault.Root,
		DBPath:    cfg.Vault.DB,
		CachePath: cfg.Vault.Cache,
		OllamaURL: cfg.Embedding.URL,
		Task:      cfg.Embedding.Task,
		Params: vault.Params{
			DistanceThreshold:   cfg.Analysis.DistanceThreshold,
			ZThreshold:          cfg.Analysis.ZThreshold,
			MinFilesForRanking:  cfg.Analysis.MinFilesForRanking,
			MinFilesForOutliers: cfg.Analysis.MinFilesForOutliers,
			TopK:                cfg.Analysis.TopK,
			MinSimilarity:       cfg.Analysis.MinSimilarity,
			InboxPrefix:         cfg.Analysis.Inbox,
		},
	}

	if st.VaultRoot == "" {
		st.VaultRoot = "."
	}
	if st.DBPath == "" {
		st.DBPath = defaultDBPath()
	}
	if st.OllamaURL == "" {
		st.OllamaURL = "http://localhost:11434"
	}
	if st.Task == "" {
		st.Task = "clustering"
	}
	if st.Params.InboxPrefix == "" {
		st.Params.InboxPrefix = "inbox"
	}

	name := cfg.Embedding.Model
	if name == "" {
		name = "Qwen3-Embedding"
	}
	model, ok := modelRegistry[name]
	if !ok {
		return settings{}, fmt.Errorf("unknown embedding model %q", name)
	}
	st.Model = model
	return st, nil
}
