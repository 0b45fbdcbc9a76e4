package vault

import (
	"testing"
)

func TestClusterFiles_ZeroThresholdKeepsSingletons(t *testing.T) {
	embeddings := map[string][]float32{
		"a.md": {1, 0, 0},
		"b.md": {0, 1, 0},
		"c.md": {0, 0, 1},
	}
	clusters := ClusterFiles(embeddings, 0)
	if len(clusters) != 3 {
		t.Fatalf("got %d clusters, want 3 singletons", len(clusters))
	}
	for _, c := range clusters {
		if len(c.Files) != 1 {
			t.Fatalf("cluster %d has %d files, want 1", c.ID, len(c.Files))
		}
		if c.Coherence != 1.0 {
			t.Fatalf("singleton coherence = %v, want 1.0", c.Coherence)
		}
	}
}

func TestClusterFiles_MaxThresholdMergesEverything(t *testing.T) {
	embeddings := map[string][]float32{
		"a.md": {1, 0},
		"b.md": {-1, 0},
		"c.md": {0, 1},
	}
	clusters := ClusterFiles(embeddings, 2)
	if len(clusters) != 1 {
		t.Fatalf("got %d clusters, want 1", len(clusters))
	}
	if len(clusters[0].Files) != 3 {
		t.Fatalf("cluster size = %d, want 3", len(clusters[0].Files))
	}
}

func TestClusterFiles_SeparatesDistinctGroups(t *testing.T) {
	embeddings := map[string][]float32{
		"go1.md":   {1, 0},
		"go2.md":   {1, 0},
		"cook1.md": {0, 1},
		"cook2.md": {0, 1},
		"cook3.md": {0, 1},
	}
	clusters := ClusterFiles(embeddings, 0.3)
	if len(clusters) != 2 {
		t.Fatalf("got %d clusters, want 2", len(clusters))
	}

	// Largest first, IDs reassigned in sorted order.
	if clusters[0].ID != 0 || len(clusters[0].Files) != 3 {
		t.Fatalf("cluster 0 = %+v, want the 3-member group", clusters[0])
	}
	if clusters[1].ID != 1 || len(clusters[1].Files) != 2 {
		t.Fatalf("cluster 1 = %+v, want the 2-member group", clusters[1])
	}
	if clusters[0].Files[0] != "cook1.md" {
		t.Fatalf("cluster members out of order: %v", clusters[0].Files)
	}
	if !almostEq(clusters[0].Coherence, 1.0) {
		t.Fatalf("identical members should cohere at 1.0, got %v", clusters[0].Coherence)
	}
}

func TestClusterFiles_SizeTieBreaksByFirstPath(t *testing.T) {
	embeddings := map[string][]float32{
		"b.md": {1, 0},
		"a.md": {0, 1},
	}
	clusters := ClusterFiles(embeddings, 0)
	if clusters[0].Files[0] != "a.md" || clusters[1].Files[0] != "b.md" {
		t.Fatalf("tie-break order wrong: %v then %v", clusters[0].Files, clusters[1].Files)
	}
}

func TestClusterFiles_Empty(t *testing.T) {
	if got := ClusterFiles(nil, 0.3); got != nil {
		t.Fatalf("ClusterFiles(nil) = %v, want nil", got)
	}
}

func TestClusterFiles_Deterministic(t *testing.T) {
	embeddings := map[string][]float32{
		"a.md": {1, 0.1},
		"b.md": {1, 0.2},
		"c.md": {0.1, 1},
		"d.md": {0.2, 1},
		"e.md": {1, 1},
	}
	first := ClusterFiles(embeddings, 0.3)
	for range 10 {
		again := ClusterFiles(embeddings, 0.3)
		if len(again) != len(first) {
			t.Fatalf("cluster count changed between runs: %d vs %d", len(again), len(first))
		}
		for i := range first {
			if again[i].ID != first[i].ID || len(again[i].Files) != len(first[i].Files) {
				t.Fatalf("cluster %d changed between runs", i)
			}
			for j := range first[i].Files {
				if again[i].Files[j] != first[i].Files[j] {
					t.Fatalf("member order changed: %v vs %v", again[i].Files, first[i].Files)
				}
			}
		}
	}
}

func TestLabelClusters_FrequentTokensFirst(t *testing.T) {
	c := &FileCluster{Files: []string{
		"inbox/machine-learning-notes.md",
		"inbox/machine-learning-intro.md",
	}}
	LabelClusters([]*FileCluster{c})
	if c.Label != "machine learning notes intro" {
		t.Fatalf("label = %q", c.Label)
	}
}

func TestLabelClusters_FallbackWhenNoTokensSurvive(t *testing.T) {
	c := &FileCluster{ID: 3, Files: []string{"the-ml-of.md"}}
	LabelClusters([]*FileCluster{c})
	if c.Label != "cluster 3" {
		t.Fatalf("label = %q, want fallback", c.Label)
	}
}

func TestLabelClusters_KeepsExistingLabel(t *testing.T) {
	c := &FileCluster{Files: []string{"notes.md"}, Label: "curated"}
	LabelClusters([]*FileCluster{c})
	if c.Label != "curated" {
		t.Fatalf("label = %q, want curated untouched", c.Label)
	}
}

func TestFilenameTokens(t *testing.T) {
	cases := []struct {
		path string
		want []string
	}{
		{"inbox/deep_learning-survey.md", []string{"deep", "learning", "survey"}},
		{"the-and-for-with.md", nil},
		{"a/b/ml.md", nil},
		{"Recipe For Bread.md", []string{"recipe", "bread"}},
	}
	for _, tc := range cases {
		got := filenameTokens(tc.path)
		if len(got) != len(tc.want) {
			t.Fatalf("filenameTokens(%q) = %v, want %v", tc.path, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("filenameTokens(%q) = %v, want %v", tc.path, got, tc.want)
			}
		}
	}
}
