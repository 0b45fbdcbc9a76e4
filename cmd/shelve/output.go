package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/lthms/shelve/internal/vault"
)

type savable interface {
	Save(path string) error
}

// emitReport routes a report: to a file with -o, raw JSON when stdout is a
// pipe or with '-o -', and a human-readable rendering on a terminal.
// Rounding happens only in the human rendering; stored JSON keeps full
// precision.
func emitReport(output string, r savable, human func(io.Writer)) error {
	switch {
	case output == "-":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case output != "":
		if err := r.Save(output); err != nil {
			return err
		}
		slog.Info("report written", "path", output)
		return nil
	case term.IsTerminal(int(os.Stdout.Fd())):
		human(os.Stdout)
		return nil
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
}

func emitAuditReport(output string, r *vault.AuditReport) error {
	return emitReport(output, r, func(w io.Writer) { printAuditReport(w, r) })
}

func emitInboxReport(output string, r *vault.InboxReport) error {
	return emitReport(output, r, func(w io.Writer) { printInboxReport(w, r) })
}

func printAuditReport(w io.Writer, r *vault.AuditReport) {
	fmt.Fprintf(w, "Audited %d files across %d folders.\n", r.TotalFiles, r.TotalFolders)

	if len(r.Rankings) > 0 {
		fmt.Fprintf(w, "\nFolder coherence (most incoherent first):\n")
		for _, rank := range r.Rankings {
			fmt.Fprintf(w, "  %6.3f  %s (%d files)\n", rank.Coherence, rank.Folder, rank.FileCount)
		}
	}

	if len(r.Suggestions) == 0 {
		fmt.Fprintf(w, "\nNo outliers with viable destinations (z > %.1f).\n", r.ZThreshold)
		return
	}
	fmt.Fprintf(w, "\nRelocation suggestions (%d outliers):\n", r.OutlierCount)
	for i, s := range r.Suggestions {
		fmt.Fprintf(w, "%d. %s\n", i+1, s.FilePath)
		fmt.Fprintf(w, "   current: %s  deviation: %.3f  z: %.2f\n", s.CurrentFolder, s.Deviation, s.ZScore)
		for _, c := range s.Candidates {
			fmt.Fprintf(w, "   -> %s (%.3f)\n", c.Folder, c.Similarity)
		}
	}
}

func printInboxReport(w io.Writer, r *vault.InboxReport) {
	if r.TotalFiles == 0 {
		fmt.Fprintf(w, "No files under %q.\n", r.InboxPath)
		return
	}
	fmt.Fprintf(w, "%d files in %q form %d clusters (threshold %.2f):\n",
		r.TotalFiles, r.InboxPath, r.ClusterCount, r.DistanceThreshold)

	for _, c := range r.Clusters {
		label := c.Label
		if label == "" {
			label = fmt.Sprintf("cluster %d", c.ClusterID)
		}
		fmt.Fprintf(w, "\n[%d] %s: %d files, coherence %.3f\n", c.ClusterID, label, c.FileCount, c.Coherence)
		for _, f := range c.Files {
			fmt.Fprintf(w, "   %s\n", f)
		}
		if len(c.Candidates) == 0 {
			fmt.Fprintf(w, "   (no destination above the similarity floor)\n")
			continue
		}
		for _, cand := range c.Candidates {
			fmt.Fprintf(w, "   -> %s (%.3f)\n", cand.Folder, cand.Similarity)
		}
	}
}
