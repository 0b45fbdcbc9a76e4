package vault

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// FileCluster is a group of semantically similar files. IDs are reassigned
// after sorting by size and are not stable across differing inputs.
type FileCluster struct {
	ID        int       `json:"id"`
	Files     []string  `json:"files"`
	Centroid  []float32 `json:"-"`
	Coherence float64   `json:"coherence"`
	Label     string    `json:"label,omitempty"`
}

// ClusterFiles groups files by average-linkage agglomerative clustering
// under cosine distance. Pairs keep merging while the linkage distance stays
// at or below distanceThreshold, so the cluster count adapts to how tight
// the input is. All vectors are L2-normalized before distance computation.
// Clusters come back sorted by member count descending (ties broken by
// first member path) with IDs reassigned 0..N-1 in that order.
func ClusterFiles(embeddings map[string][]float32, distanceThreshold float64) []*FileCluster {
	if len(embeddings) == 0 {
		return nil
	}

	paths := make([]string, 0, len(embeddings))
	for p := range embeddings {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	if len(paths) == 1 {
		return []*FileCluster{{
			ID:        0,
			Files:     paths,
			Centroid:  normalizeL2(embeddings[paths[0]]),
			Coherence: 1.0,
		}}
	}

	normalized := make([][]float32, len(paths))
	for i, p := range paths {
		normalized[i] = normalizeL2(embeddings[p])
	}

	groups := mergeByAverageLinkage(normalized, distanceThreshold)

	clusters := make([]*FileCluster, 0, len(groups))
	for _, members := range groups {
		files := make([]string, len(members))
		raw := make([][]float32, len(members))
		for i, idx := range members {
			files[i] = paths[idx]
			raw[i] = embeddings[paths[idx]]
		}
		clusters = append(clusters, &FileCluster{
			Files:     files,
			Centroid:  normalizeL2(meanVector(raw)),
			Coherence: pairwiseCoherence(raw),
		})
	}

	sort.Slice(clusters, func(i, j int) bool {
		if len(clusters[i].Files) != len(clusters[j].Files) {
			return len(clusters[i].Files) > len(clusters[j].Files)
		}
		return clusters[i].Files[0] < clusters[j].Files[0]
	})
	for i, c := range clusters {
		c.ID = i
	}
	return clusters
}

// mergeByAverageLinkage runs the agglomerative merge loop over normalized
// vectors and returns the surviving groups as sorted index lists. The
// closest pair is merged first; equal distances are broken by the lowest
// index pair, which keeps runs over identical input byte-identical.
func mergeByAverageLinkage(vecs [][]float32, threshold float64) [][]int {
	n := len(vecs)
	active := make([]bool, n)
	size := make([]int, n)
	members := make([][]int, n)
	for i := range vecs {
		active[i] = true
		size[i] = 1
		members[i] = []int{i}
	}

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := cosineDistance(vecs[i], vecs[j])
			dist[i][j] = d
			dist[j][i] = d
		}
	}

	for {
		bi, bj := -1, -1
		best := 0.0
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if !active[j] {
					continue
				}
				if bi < 0 || dist[i][j] < best {
					best = dist[i][j]
					bi, bj = i, j
				}
			}
		}
		if bi < 0 || best > threshold {
			break
		}

		// Lance-Williams update for average linkage.
		for k := 0; k < n; k++ {
			if !active[k] || k == bi || k == bj {
				continue
			}
			d := (float64(size[bi])*dist[bi][k] + float64(size[bj])*dist[bj][k]) /
				float64(size[bi]+size[bj])
			dist[bi][k] = d
			dist[k][bi] = d
		}
		members[bi] = append(members[bi], members[bj]...)
		size[bi] += size[bj]
		active[bj] = false
	}

	var groups [][]int
	for i := 0; i < n; i++ {
		if active[i] {
			sort.Ints(members[i])
			groups = append(groups, members[i])
		}
	}
	return groups
}

// pairwiseCoherence is the mean cosine similarity over all member pairs.
// Fewer than two members is trivially coherent: 1.0 by convention.
func pairwiseCoherence(vecs [][]float32) float64 {
	if len(vecs) < 2 {
		return 1.0
	}
	var sum float64
	var count int
	for i := 0; i < len(vecs); i++ {
		for j := i + 1; j < len(vecs); j++ {
			sum += cosineSimilarity(vecs[i], vecs[j])
			count++
		}
	}
	return sum / float64(count)
}

var labelStopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true,
}

// maxLabelWords caps the auto-generated label length.
const maxLabelWords = 4

// LabelClusters assigns an auto-generated label to every cluster that does
// not already carry one.
func LabelClusters(clusters []*FileCluster) {
	for _, c := range clusters {
		if c.Label == "" {
			c.Label = labelCluster(c)
		}
	}
}

// labelCluster derives a label from the most frequent filename tokens
// across the cluster. Frequency ties are broken by first-seen order, which
// an ordered table makes explicit; map iteration order would not be
// reproducible.
func labelCluster(c *FileCluster) string {
	type tokenCount struct {
		token string
		count int
	}
	var counts []tokenCount
	index := make(map[string]int)

	for _, p := range c.Files {
		for _, tok := range filenameTokens(p) {
			if i, ok := index[tok]; ok {
				counts[i].count++
				continue
			}
			index[tok] = len(counts)
			counts = append(counts, tokenCount{token: tok, count: 1})
		}
	}

	sort.SliceStable(counts, func(i, j int) bool { return counts[i].count > counts[j].count })

	var words []string
	for _, tc := range counts {
		if len(words) == maxLabelWords {
			break
		}
		words = append(words, tc.token)
	}
	if len(words) == 0 {
		return fmt.Sprintf("cluster %d", c.ID)
	}
	return strings.Join(words, " ")
}

// filenameTokens tokenizes a file's base name: the extension is stripped,
// the rest splits on '-', '_', and whitespace, case-folded, with tokens of
// length <= 2 and stopwords dropped.
func filenameTokens(path string) []string {
	name := path
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	var out []string
	for _, f := range fields {
		if len(f) <= 2 || labelStopwords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}
