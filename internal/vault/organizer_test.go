package vault

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

// auditFixture has one incoherent folder whose stray file belongs in
// archive, plus a tight archive folder that should report nothing.
func auditFixture() map[string][]float32 {
	embeddings := map[string][]float32{
		"notes/weird.md": {-1, 0},
		"archive/n1.md":  {-1, 0},
		"archive/n2.md":  {-1, 0},
		"archive/n3.md":  {-1, 0},
	}
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		embeddings["notes/"+name+".md"] = []float32{1, 0}
	}
	return embeddings
}

func TestAudit_EmptyInput(t *testing.T) {
	report, folderEmb, err := Audit(nil, nil, Params{})
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if report.TotalFiles != 0 || len(report.Suggestions) != 0 {
		t.Fatalf("empty input should yield an empty report, got %+v", report)
	}
	if report.ZThreshold != 2.0 {
		t.Fatalf("defaults not applied: z = %v", report.ZThreshold)
	}
	if folderEmb != nil {
		t.Fatalf("no folders to embed, got %v", folderEmb)
	}
}

func TestAudit_FullPipeline(t *testing.T) {
	report, folderEmb, err := Audit(auditFixture(), nil, Params{})
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}

	if report.TotalFiles != 9 || report.TotalFolders != 2 {
		t.Fatalf("counts = %d files %d folders, want 9 and 2",
			report.TotalFiles, report.TotalFolders)
	}
	if report.OutlierCount != 1 {
		t.Fatalf("outlier count = %d, want 1", report.OutlierCount)
	}

	// notes is less coherent than archive and ranks first.
	if len(report.Rankings) != 2 || report.Rankings[0].Folder != "notes" {
		t.Fatalf("rankings = %+v", report.Rankings)
	}

	if len(report.Suggestions) != 1 {
		t.Fatalf("suggestions = %+v, want 1", report.Suggestions)
	}
	s := report.Suggestions[0]
	if s.FilePath != "notes/weird.md" || s.CurrentFolder != "notes" {
		t.Fatalf("suggestion identity = %+v", s)
	}
	if len(s.Candidates) != 1 || s.Candidates[0].Folder != "archive" {
		t.Fatalf("candidates = %+v, want archive only", s.Candidates)
	}

	if folderEmb["notes"] == nil || folderEmb["archive"] == nil {
		t.Fatalf("folder embeddings incomplete: %v", folderEmb)
	}
}

func TestAudit_UsesCachedFolderEmbeddings(t *testing.T) {
	embeddings := map[string][]float32{
		"docs/a.md": {1, 0},
		"docs/b.md": {1, 0},
	}
	// A cache that deliberately disagrees with recomputation.
	cached := map[string][]float32{"docs": {0, 1}}

	report, folderEmb, err := Audit(embeddings, cached, Params{})
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if folderEmb["docs"][1] != 1 {
		t.Fatalf("cache ignored: %v", folderEmb["docs"])
	}
	// Against the cached centroid both files sit at similarity 0.
	if len(report.Rankings) != 1 || !almostEq(report.Rankings[0].Coherence, 0) {
		t.Fatalf("rankings = %+v, want coherence 0 from the cache", report.Rankings)
	}
}

func TestAudit_Deterministic(t *testing.T) {
	first, _, err := Audit(auditFixture(), nil, Params{})
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	second, _, err := Audit(auditFixture(), nil, Params{})
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}

	// Timestamps differ by construction; everything else must not.
	first.AnalysisDate = time.Time{}
	second.AnalysisDate = time.Time{}
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if !bytes.Equal(a, b) {
		t.Fatalf("two runs over identical input diverged:\n%s\n%s", a, b)
	}
}

func TestTriage_FullPipeline(t *testing.T) {
	embeddings := map[string][]float32{
		"inbox/go-notes-1.md":  {1, 0},
		"inbox/go-notes-2.md":  {1, 0},
		"inbox/cooking-1.md":   {0, 1},
		"inbox/cooking-2.md":   {0, 1},
		"inbox/cooking-3.md":   {0, 1},
		"projects/golang/x.md": {1, 0},
		"recipes/r1.md":        {0, 1},
	}

	report, _, err := Triage(embeddings, nil, Params{InboxPrefix: "inbox"})
	if err != nil {
		t.Fatalf("Triage: %v", err)
	}

	if report.InboxPath != "inbox" || report.TotalFiles != 5 {
		t.Fatalf("report metadata = %+v", report)
	}
	if report.ClusterCount != 2 || len(report.Clusters) != 2 {
		t.Fatalf("cluster count = %d, want 2", report.ClusterCount)
	}

	cooking := report.Clusters[0]
	if cooking.FileCount != 3 || cooking.Label != "cooking" {
		t.Fatalf("largest cluster = %+v, want the 3 cooking files", cooking)
	}
	if len(cooking.Candidates) == 0 || cooking.Candidates[0].Folder != "recipes" {
		t.Fatalf("cooking candidates = %+v, want recipes first", cooking.Candidates)
	}

	golang := report.Clusters[1]
	if golang.FileCount != 2 || golang.Label != "notes" {
		t.Fatalf("second cluster = %+v", golang)
	}
	for _, c := range golang.Candidates {
		if c.Folder == "inbox" {
			t.Fatal("inbox offered as a destination")
		}
	}
	if golang.Candidates[0].Folder != "projects" || golang.Candidates[1].Folder != "projects/golang" {
		t.Fatalf("golang candidates = %+v", golang.Candidates)
	}
}

func TestTriage_NestedInboxExcludedFromAggregation(t *testing.T) {
	embeddings := map[string][]float32{
		"notes/a.md":        {1, 0},
		"notes/inbox/x1.md": {0, 1},
		"notes/inbox/x2.md": {0, 1},
		"ideas/i1.md":       {0, 1},
	}

	report, folderEmb, err := Triage(embeddings, nil, Params{InboxPrefix: "notes/inbox"})
	if err != nil {
		t.Fatalf("Triage: %v", err)
	}

	// The inbox files must not pull their own parent's centroid toward the
	// cluster: notes is defined by notes/a.md alone.
	notes := folderEmb["notes"]
	if notes == nil || !almostEq(float64(notes[0]), 1) || !almostEq(float64(notes[1]), 0) {
		t.Fatalf("notes centroid = %v, want [1 0]", notes)
	}
	if _, ok := folderEmb["notes/inbox"]; ok {
		t.Fatal("inbox folder must not carry a centroid")
	}

	if report.TotalFiles != 2 || len(report.Clusters) != 1 {
		t.Fatalf("report = %+v, want one cluster of the two inbox files", report)
	}
	cands := report.Clusters[0].Candidates
	if len(cands) != 1 || cands[0].Folder != "ideas" {
		t.Fatalf("candidates = %+v, want ideas only", cands)
	}
	if !almostEq(cands[0].Similarity, 1) {
		t.Fatalf("ideas similarity = %v, want 1", cands[0].Similarity)
	}
}

func TestTriage_NoInboxFiles(t *testing.T) {
	embeddings := map[string][]float32{"notes/a.md": {1, 0}}
	report, _, err := Triage(embeddings, nil, Params{InboxPrefix: "inbox"})
	if err != nil {
		t.Fatalf("Triage: %v", err)
	}
	if report.TotalFiles != 0 || report.ClusterCount != 0 {
		t.Fatalf("empty inbox should yield an empty report, got %+v", report)
	}
}

func TestInboxFiles_Matching(t *testing.T) {
	embeddings := map[string][]float32{
		"inbox/a.md":       {1},
		"notes/inbox/b.md": {1},
		"inboxes/c.md":     {1},
		"notes/d.md":       {1},
		"inbox":            {1},
	}
	got := InboxFiles(embeddings, "inbox")
	if len(got) != 3 {
		t.Fatalf("selected %d files, want 3: %v", len(got), got)
	}
	for _, path := range []string{"inbox/a.md", "notes/inbox/b.md", "inbox"} {
		if got[path] == nil {
			t.Fatalf("missing %q", path)
		}
	}
}

func TestParams_Defaults(t *testing.T) {
	p := Params{}.withDefaults()
	if p != DefaultParams() {
		t.Fatalf("withDefaults() = %+v, want %+v", p, DefaultParams())
	}

	p = Params{TopK: 5, InboxPrefix: "inbox"}.withDefaults()
	if p.TopK != 5 || p.MinSimilarity != 0.5 || p.InboxPrefix != "inbox" {
		t.Fatalf("partial overrides mishandled: %+v", p)
	}
}
