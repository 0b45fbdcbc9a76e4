package main

import (
	"fmt"
	"log/slog"

	"github.com/lthms/shelve/internal/vault"
)

// AuditCmd runs the whole-vault coherence analysis.
type AuditCmd struct {
	Output        string  `short:"o" help:"Write the JSON report to this file ('-' for stdout)."`
	Cache         string  `help:"Folder-embedding cache file (overrides config)." type:"path"`
	Recompute     bool    `help:"Ignore the cache and recompute folder embeddings."`
	ZThreshold    float64 `help:"Outlier z-score cutoff."`
	TopK          int     `help:"Candidate folders per suggestion."`
	MinSimilarity float64 `help:"Minimum candidate similarity."`
}

func (cmd *AuditCmd) Run(st settings) error {
	params := st.Params
	if cmd.ZThreshold != 0 {
		params.ZThreshold = cmd.ZThreshold
	}
	if cmd.TopK != 0 {
		params.TopK = cmd.TopK
	}
	if cmd.MinSimilarity != 0 {
		params.MinSimilarity = cmd.MinSimilarity
	}

	s, err := openStore(st)
	if err != nil {
		return err
	}
	defer s.Close()

	embeddings, err := s.Embeddings()
	if err != nil {
		return err
	}
	slog.Debug("loaded embeddings", "files", len(embeddings))

	cachePath, cached, err := loadCache(cmd.Cache, cmd.Recompute, st)
	if err != nil {
		return err
	}

	report, folderEmb, err := vault.Audit(embeddings, cached, params)
	if err != nil {
		return err
	}
	if err := saveCache(cachePath, cached, folderEmb); err != nil {
		return err
	}
	return emitAuditReport(cmd.Output, report)
}

// loadCache resolves the cache path and loads it unless a recompute was
// requested. A missing cache file means recompute; a broken one is fatal.
func loadCache(flag string, recompute bool, st settings) (string, map[string][]float32, error) {
	path := flag
	if path == "" {
		path = st.CachePath
	}
	if path == "" || recompute {
		return path, nil, nil
	}
	cached, err := vault.LoadFolderCache(path)
	if err != nil {
		return "", nil, err
	}
	if cached != nil {
		slog.Debug("using cached folder embeddings", "path", path, "folders", len(cached))
	}
	return path, cached, nil
}

// saveCache persists freshly computed folder embeddings. Nothing is
// written when the run was served from the cache.
func saveCache(path string, cached, folderEmb map[string][]float32) error {
	if path == "" || cached != nil || folderEmb == nil {
		return nil
	}
	if err := vault.SaveFolderCache(path, folderEmb); err != nil {
		return fmt.Errorf("saving folder cache: %w", err)
	}
	slog.Info("folder cache written", "path", path, "folders", len(folderEmb))
	return nil
}
