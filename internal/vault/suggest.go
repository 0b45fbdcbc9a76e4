package vault

import (
	"sort"
	"strings"
)

// Candidate is one potential destination folder, scored by cosine
// similarity between the source and the folder centroid.
type Candidate struct {
	Folder     string  `json:"folder"`
	Similarity float64 `json:"similarity"`
}

// Suggestion is a relocation suggestion for a single outlier file.
type Suggestion struct {
	FilePath      string      `json:"file_path"`
	CurrentFolder string      `json:"current_folder"`
	Deviation     float64     `json:"deviation"`
	ZScore        float64     `json:"z_score"`
	Candidates    []Candidate `json:"candidates"`
}

// ClusterSuggestion is a relocation suggestion for a whole cluster of
// inbox files.
type ClusterSuggestion struct {
	ClusterID  int         `json:"cluster_id"`
	Label      string      `json:"label,omitempty"`
	Files      []string    `json:"files"`
	FileCount  int         `json:"file_count"`
	Coherence  float64     `json:"coherence"`
	Candidates []Candidate `json:"candidates"`
}

// SuggestFiles generates relocation suggestions for outlier files. Each
// file's own folder and every path ancestor (including the root) are
// excluded from candidacy; a file must never be offered the folder it is
// already in, nor a folder that contains that folder.
func SuggestFiles(outliers []FileOutlier, folderEmb map[string][]float32, p Params) []Suggestion {
	var out []Suggestion
	for _, o := range outliers {
		excluded := ancestorFolders(o.File.Path)
		candidates := rankCandidates(o.File.Embedding, folderEmb, p, func(folder string) bool {
			return excluded[folder]
		})
		if len(candidates) == 0 {
			continue
		}
		out = append(out, Suggestion{
			FilePath:      o.File.Path,
			CurrentFolder: o.Folder.Path,
			Deviation:     o.Deviation,
			ZScore:        o.ZScore,
			Candidates:    candidates,
		})
	}
	return out
}

// SuggestClusters matches each cluster centroid against the folder
// centroids. Folders inside the inbox subtree are excluded at any depth, in
// addition to the root. Clusters with no surviving candidate keep an empty
// list; that is a result, not an error.
func SuggestClusters(clusters []*FileCluster, folderEmb map[string][]float32, inboxPrefix string, p Params) []ClusterSuggestion {
	out := make([]ClusterSuggestion, 0, len(clusters))
	for _, c := range clusters {
		candidates := rankCandidates(c.Centroid, folderEmb, p, func(folder string) bool {
			return withinInbox(folder, inboxPrefix)
		})
		out = append(out, ClusterSuggestion{
			ClusterID:  c.ID,
			Label:      c.Label,
			Files:      c.Files,
			FileCount:  len(c.Files),
			Coherence:  c.Coherence,
			Candidates: candidates,
		})
	}
	return out
}

// rankCandidates scores every known folder centroid against emb, drops the
// root, excluded folders, and anything below the similarity floor, then
// returns the top-K by similarity descending. Equal similarity breaks by
// path order. An empty result is legal.
func rankCandidates(emb []float32, folderEmb map[string][]float32, p Params, exclude func(string) bool) []Candidate {
	if emb == nil {
		return nil
	}

	folders := make([]string, 0, len(folderEmb))
	for f := range folderEmb {
		folders = append(folders, f)
	}
	sort.Strings(folders)

	var candidates []Candidate
	for _, folder := range folders {
		if folder == "" || exclude(folder) {
			continue
		}
		sim := cosineSimilarity(emb, folderEmb[folder])
		if sim < p.MinSimilarity {
			continue
		}
		candidates = append(candidates, Candidate{Folder: folder, Similarity: sim})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if len(candidates) > p.TopK {
		candidates = candidates[:p.TopK]
	}
	return candidates
}

// ancestorFolders returns the owning folder of a file path plus every
// ancestor above it: "A/B/c.md" → {"A/B", "A"}. The root is excluded
// separately by rankCandidates.
func ancestorFolders(filePath string) map[string]bool {
	out := make(map[string]bool)
	p := parentPath(filePath)
	for p != "" {
		out[p] = true
		p = parentPath(p)
	}
	return out
}

// withinInbox reports whether a folder path falls inside the inbox subtree:
// an exact match, a prefix match, or the inbox name occurring as a path
// component at any depth.
func withinInbox(folder, inboxPrefix string) bool {
	prefix := strings.TrimRight(inboxPrefix, "/")
	if prefix == "" {
		return false
	}
	if folder == prefix || strings.HasPrefix(folder, prefix+"/") {
		return true
	}
	return strings.Contains("/"+folder+"/", "/"+prefix+"/")
}
