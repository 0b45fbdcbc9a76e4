package main

import (
	"log/slog"

	"github.com/lthms/shelve/internal/vault"
)

// TriageCmd clusters the inbox and matches clusters to destinations.
type TriageCmd struct {
	Inbox             string  `arg:"" optional:"" help:"Inbox prefix to triage (default from config)."`
	Output            string  `short:"o" help:"Write the JSON report to this file ('-' for stdout)."`
	Cache             string  `help:"Folder-embedding cache file (overrides config)." type:"path"`
	Recompute         bool    `help:"Ignore the cache and recompute folder embeddings."`
	DistanceThreshold float64 `help:"Clustering merge cutoff."`
	TopK              int     `help:"Candidate folders per cluster."`
	MinSimilarity     float64 `help:"Minimum candidate similarity."`
}

func (cmd *TriageCmd) Run(st settings) error {
	params := st.Params
	if cmd.Inbox != "" {
		params.InboxPrefix = cmd.Inbox
	}
	if cmd.DistanceThreshold != 0 {
		params.DistanceThreshold = cmd.DistanceThreshold
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
	slog.Debug("loaded embeddings", "files", len(embeddings), "inbox", params.InboxPrefix)

	cachePath, cached, err := loadCache(cmd.Cache, cmd.Recompute, st)
	if err != nil {
		return err
	}

	report, folderEmb, err := vault.Triage(embeddings, cached, params)
	if err != nil {
		return err
	}
	if err := saveCache(cachePath, cached, folderEmb); err != nil {
		return err
	}
	return emitInboxReport(cmd.Output, report)
}
