package vault

import (
	"fmt"
	"strings"
	"time"
)

// Params carries the tunables recognized by the organization pipelines.
// The zero value of a field means "use the default".
type Params struct {
	DistanceThreshold   float64 // clustering merge cutoff
	ZThreshold          float64 // outlier z-score cutoff
	MinFilesForRanking  int     // direct files required to rank a folder
	MinFilesForOutliers int     // direct files required to scan a folder
	TopK                int     // candidates per suggestion
	MinSimilarity       float64 // candidate similarity floor
	InboxPrefix         string  // triage subtree, inbox workflow only
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{
		DistanceThreshold:   0.3,
		ZThreshold:          2.0,
		MinFilesForRanking:  2,
		MinFilesForOutliers: 3,
		TopK:                3,
		MinSimilarity:       0.5,
	}
}

func (p Params) withDefaults() Params {
	def := DefaultParams()
	if p.DistanceThreshold == 0 {
		p.DistanceThreshold = def.DistanceThreshold
	}
	if p.ZThreshold == 0 {
		p.ZThreshold = def.ZThreshold
	}
	if p.MinFilesForRanking == 0 {
		p.MinFilesForRanking = def.MinFilesForRanking
	}
	if p.MinFilesForOutliers == 0 {
		p.MinFilesForOutliers = def.MinFilesForOutliers
	}
	if p.TopK == 0 {
		p.TopK = def.TopK
	}
	if p.MinSimilarity == 0 {
		p.MinSimilarity = def.MinSimilarity
	}
	return p
}

// Audit runs the whole-vault pipeline: build the tree, aggregate (or apply
// cached) folder embeddings, rank folders by coherence, flag outliers, and
// suggest relocations for them. It returns the report together with the
// folder embeddings so the caller can persist them as a cache. The run is
// pure over its input: identical input yields a byte-identical report
// apart from the timestamp.
func Audit(embeddings, cachedFolders map[string][]float32, p Params) (*AuditReport, map[string][]float32, error) {
	p = p.withDefaults()

	report := &AuditReport{
		AnalysisDate: time.Now().UTC(),
		ZThreshold:   p.ZThreshold,
	}
	if len(embeddings) == 0 {
		return report, nil, nil
	}

	root, err := BuildTree(embeddings)
	if err != nil {
		return nil, nil, fmt.Errorf("building folder tree: %w", err)
	}
	if cachedFolders != nil {
		ApplyFolderEmbeddings(root, cachedFolders)
	} else {
		AggregateEmbeddings(root)
	}
	folderEmb := FolderEmbeddings(root)

	rankings := RankFolders(root, p.MinFilesForRanking)
	for _, a := range rankings {
		report.Rankings = append(report.Rankings, FolderRanking{
			Folder:    a.Folder.Path,
			Coherence: a.Coherence,
			Variance:  a.Variance,
			FileCount: a.FileCount,
		})
	}

	outliers := CollectOutliers(root, p.ZThreshold, p.MinFilesForOutliers)
	report.TotalFiles = len(Files(root))
	report.TotalFolders = len(Folders(root))
	report.OutlierCount = len(outliers)
	report.Suggestions = SuggestFiles(outliers, folderEmb, p)
	return report, folderEmb, nil
}

// Triage runs the inbox pipeline: select the inbox subset, cluster it,
// label the clusters, and match each cluster against folder centroids
// aggregated over the rest of the vault. Folder embeddings come from the
// cache when one is supplied.
func Triage(embeddings, cachedFolders map[string][]float32, p Params) (*InboxReport, map[string][]float32, error) {
	p = p.withDefaults()

	report := &InboxReport{
		AnalysisDate:      time.Now().UTC(),
		InboxPath:         strings.TrimRight(p.InboxPrefix, "/"),
		DistanceThreshold: p.DistanceThreshold,
	}

	inbox := InboxFiles(embeddings, p.InboxPrefix)
	report.TotalFiles = len(inbox)
	if len(inbox) == 0 {
		return report, nil, nil
	}

	// Folder centroids are computed over the vault minus the inbox, so the
	// inbox files cannot pull their own ancestors toward the clusters they
	// form.
	rest := embeddings
	if cachedFolders == nil {
		rest = make(map[string][]float32, len(embeddings)-len(inbox))
		for path, emb := range embeddings {
			if _, ok := inbox[path]; !ok {
				rest[path] = emb
			}
		}
	}
	root, err := BuildTree(rest)
	if err != nil {
		return nil, nil, fmt.Errorf("building folder tree: %w", err)
	}
	if cachedFolders != nil {
		ApplyFolderEmbeddings(root, cachedFolders)
	} else {
		AggregateEmbeddings(root)
	}
	folderEmb := FolderEmbeddings(root)

	clusters := ClusterFiles(inbox, p.DistanceThreshold)
	LabelClusters(clusters)
	report.ClusterCount = len(clusters)
	report.Clusters = SuggestClusters(clusters, folderEmb, p.InboxPrefix, p)
	return report, folderEmb, nil
}

// InboxFiles selects the triage subset: files whose path equals the inbox
// prefix, starts with it, or carries it as a directory component at any
// depth.
func InboxFiles(embeddings map[string][]float32, inboxPrefix string) map[string][]float32 {
	prefix := strings.TrimRight(inboxPrefix, "/")
	if prefix == "" {
		return nil
	}
	out := make(map[string][]float32)
	for path, emb := range embeddings {
		if path == prefix || strings.HasPrefix(path, prefix+"/") || strings.Contains(path, "/"+prefix+"/") {
			out[path] = emb
		}
	}
	return out
}
