package vault

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// FolderRanking is the serializable projection of a FolderAnalysis.
type FolderRanking struct {
	Folder    string  `json:"folder"`
	Coherence float64 `json:"coherence"`
	Variance  float64 `json:"variance"`
	FileCount int     `json:"file_count"`
}

// AuditReport is the result of a whole-vault coherence audit. Scores are
// stored at full precision; rounding happens only when printing.
type AuditReport struct {
	AnalysisDate time.Time       `json:"analysis_date"`
	TotalFiles   int             `json:"total_files"`
	TotalFolders int             `json:"total_folders"`
	ZThreshold   float64         `json:"z_threshold"`
	OutlierCount int             `json:"outlier_count"`
	Rankings     []FolderRanking `json:"rankings"`
	Suggestions  []Suggestion    `json:"suggestions"`
}

// InboxReport is the result of an inbox triage run.
type InboxReport struct {
	AnalysisDate      time.Time           `json:"analysis_date"`
	InboxPath         string              `json:"inbox_path"`
	TotalFiles        int                 `json:"total_files"`
	ClusterCount      int                 `json:"cluster_count"`
	DistanceThreshold float64             `json:"distance_threshold"`
	Clusters          []ClusterSuggestion `json:"clusters"`
}

// MovePair is one (source, destination) move derived from the top-ranked
// candidate of a suggestion.
type MovePair struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// MovePairs derives the flat move list from the audit suggestions, using
// only the top candidate per file. Suggestions without candidates never
// reach a report, so every entry here has a destination.
func (r *AuditReport) MovePairs() []MovePair {
	var out []MovePair
	for _, s := range r.Suggestions {
		if len(s.Candidates) == 0 {
			continue
		}
		out = append(out, MovePair{Source: s.FilePath, Destination: s.Candidates[0].Folder})
	}
	return out
}

// MovePairs derives the flat move list from the triage clusters. Every
// member of a cluster moves to the cluster's top candidate; clusters with
// no candidate contribute nothing.
func (r *InboxReport) MovePairs() []MovePair {
	var out []MovePair
	for _, c := range r.Clusters {
		if len(c.Candidates) == 0 {
			continue
		}
		for _, f := range c.Files {
			out = append(out, MovePair{Source: f, Destination: c.Candidates[0].Folder})
		}
	}
	return out
}

// Save writes the report as indented JSON.
func (r *AuditReport) Save(path string) error {
	return saveJSON(path, r)
}

// Save writes the report as indented JSON.
func (r *InboxReport) Save(path string) error {
	return saveJSON(path, r)
}

// LoadAuditReport reads a report previously written by Save. The round
// trip is lossless: paths, scores, and candidate ordering come back
// exactly as stored.
func LoadAuditReport(path string) (*AuditReport, error) {
	var r AuditReport
	if err := loadJSON(path, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// LoadInboxReport reads a triage report previously written by Save.
func LoadInboxReport(path string) (*InboxReport, error) {
	var r InboxReport
	if err := loadJSON(path, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
