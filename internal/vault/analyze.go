package vault

import "sort"

// CoherenceUndefined is the sentinel returned when a folder's coherence
// cannot be computed (no embedding or no direct files).
const CoherenceUndefined = -1.0

// FolderAnalysis holds the coherence metrics for one folder, computed over
// its direct files only.
type FolderAnalysis struct {
	Folder    *FolderNode
	Coherence float64
	Variance  float64
	FileCount int
}

// FileOutlier is a direct file whose deviation from its folder's centroid
// is statistically anomalous within that folder.
type FileOutlier struct {
	File      *FileNode
	Folder    *FolderNode
	Deviation float64 // 1 - cosine similarity to the folder centroid
	ZScore    float64
}

// directSimilarities returns the cosine similarity of each direct file
// (with an embedding) to the folder's centroid. Subfolder contents are
// deliberately excluded: coherence measures whether a folder's immediate
// contents agree with its own centroid.
func directSimilarities(folder *FolderNode) []float64 {
	if folder.Embedding == nil {
		return nil
	}
	var sims []float64
	for _, f := range folder.Files {
		if f.Embedding != nil {
			sims = append(sims, cosineSimilarity(f.Embedding, folder.Embedding))
		}
	}
	return sims
}

// FolderCoherence is the mean similarity of direct files to the folder
// centroid, or CoherenceUndefined when it cannot be computed.
func FolderCoherence(folder *FolderNode) float64 {
	sims := directSimilarities(folder)
	if len(sims) == 0 {
		return CoherenceUndefined
	}
	mean, _ := meanStd(sims)
	return mean
}

// FolderVariance is the population standard deviation of the direct-file
// similarities, 0 with fewer than two files, or CoherenceUndefined when the
// folder has no embedding or no direct files.
func FolderVariance(folder *FolderNode) float64 {
	sims := directSimilarities(folder)
	if len(sims) == 0 {
		return CoherenceUndefined
	}
	if len(sims) < 2 {
		return 0
	}
	_, std := meanStd(sims)
	return std
}

// RankFolders analyzes every folder with at least minFiles direct files and
// returns them ranked ascending by coherence, most incoherent first. Equal
// coherence breaks by lexicographic path order.
func RankFolders(root *FolderNode, minFiles int) []FolderAnalysis {
	var out []FolderAnalysis
	for _, folder := range Folders(root) {
		if len(folder.Files) < minFiles {
			continue
		}
		coherence := FolderCoherence(folder)
		if coherence == CoherenceUndefined {
			continue
		}
		out = append(out, FolderAnalysis{
			Folder:    folder,
			Coherence: coherence,
			Variance:  FolderVariance(folder),
			FileCount: len(folder.Files),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Coherence != out[j].Coherence {
			return out[i].Coherence < out[j].Coherence
		}
		return out[i].Folder.Path < out[j].Folder.Path
	})
	return out
}

// FolderOutliers flags direct files whose deviation from the folder
// centroid exceeds zThreshold standard deviations above the folder's mean
// deviation. When the deviations have zero spread there is no basis to
// discriminate and nothing is flagged.
func FolderOutliers(folder *FolderNode, zThreshold float64) []FileOutlier {
	if folder.Embedding == nil {
		return nil
	}

	type fileDev struct {
		file *FileNode
		dev  float64
	}
	var pairs []fileDev
	var devs []float64
	for _, f := range folder.Files {
		if f.Embedding != nil {
			d := 1 - cosineSimilarity(f.Embedding, folder.Embedding)
			pairs = append(pairs, fileDev{file: f, dev: d})
			devs = append(devs, d)
		}
	}
	if len(devs) < 2 {
		return nil
	}

	mean, std := meanStd(devs)
	if std == 0 {
		return nil
	}

	var out []FileOutlier
	for _, p := range pairs {
		z := (p.dev - mean) / std
		if z > zThreshold {
			out = append(out, FileOutlier{
				File:      p.file,
				Folder:    folder,
				Deviation: p.dev,
				ZScore:    z,
			})
		}
	}
	sortOutliers(out)
	return out
}

// CollectOutliers pools outliers from every folder with at least minFiles
// direct files, sorted by z-score descending across the whole tree.
func CollectOutliers(root *FolderNode, zThreshold float64, minFiles int) []FileOutlier {
	var out []FileOutlier
	for _, folder := range Folders(root) {
		if len(folder.Files) < minFiles {
			continue
		}
		out = append(out, FolderOutliers(folder, zThreshold)...)
	}
	sortOutliers(out)
	return out
}

func sortOutliers(out []FileOutlier) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].ZScore != out[j].ZScore {
			return out[i].ZScore > out[j].ZScore
		}
		return out[i].File.Path < out[j].File.Path
	})
}
