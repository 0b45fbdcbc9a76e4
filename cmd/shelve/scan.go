package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lthms/shelve/internal/scan"
	"github.com/lthms/shelve/internal/store"
)

// ScanCmd indexes markdown snippets into the document store.
type ScanCmd struct {
	Root      string `arg:"" optional:"" help:"Vault root to scan (default from config)." type:"path"`
	WordLimit int    `help:"Words taken from each file body." default:"200"`
	NoPrune   bool   `help:"Keep store rows for files that disappeared from the vault."`
}

func (cmd *ScanCmd) Run(st settings) error {
	root := cmd.Root
	if root == "" {
		root = st.VaultRoot
	}

	snippets, err := scan.Vault(root, scan.Options{WordLimit: cmd.WordLimit})
	if err != nil {
		return fmt.Errorf("scanning %s: %w", root, err)
	}

	s, err := openStore(st)
	if err != nil {
		return err
	}
	defer s.Close()

	paths := make([]string, 0, len(snippets))
	for _, sn := range snippets {
		if err := s.UpsertSnippet(sn.Path, sn.Text); err != nil {
			return err
		}
		paths = append(paths, sn.Path)
	}

	pruned := 0
	if !cmd.NoPrune {
		pruned, err = s.Prune(paths)
		if err != nil {
			return err
		}
	}

	slog.Info("scan complete", "root", root, "indexed", len(paths), "pruned", pruned)
	return nil
}

// openStore opens the document store, creating its parent directory first.
func openStore(st settings) (*store.Store, error) {
	if dir := filepath.Dir(st.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	s, err := store.Open(st.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", st.DBPath, err)
	}
	return s, nil
}
