package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path"

	"github.com/lthms/shelve/internal/vault"
)

// MovesCmd turns a saved report back into shell move commands. Nothing is
// executed; the commands are printed for the user to review and run.
type MovesCmd struct {
	Report string `arg:"" help:"Path to a report written by audit or triage." type:"path"`
	Root   string `help:"Vault root to prefix onto every path."`
}

func (cmd *MovesCmd) Run(st settings) error {
	moves, err := loadMovePairs(cmd.Report)
	if err != nil {
		return err
	}
	if len(moves) == 0 {
		fmt.Println("# report contains no actionable moves")
		return nil
	}

	for _, m := range moves {
		src := m.Source
		dst := m.Destination + "/"
		if cmd.Root != "" {
			src = path.Join(cmd.Root, src)
			dst = path.Join(cmd.Root, m.Destination) + "/"
		}
		fmt.Printf("mv %q %q\n", src, dst)
	}
	return nil
}

// loadMovePairs detects the report flavor by its top-level keys: triage
// reports carry "clusters", audit reports carry "suggestions".
func loadMovePairs(reportPath string) ([]vault.MovePair, error) {
	data, err := os.ReadFile(reportPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", reportPath, err)
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", reportPath, err)
	}

	if _, ok := probe["clusters"]; ok {
		r, err := vault.LoadInboxReport(reportPath)
		if err != nil {
			return nil, err
		}
		return r.MovePairs(), nil
	}
	if _, ok := probe["suggestions"]; ok {
		r, err := vault.LoadAuditReport(reportPath)
		if err != nil {
			return nil, err
		}
		return r.MovePairs(), nil
	}
	return nil, fmt.Errorf("%s: not a shelve report", reportPath)
}
