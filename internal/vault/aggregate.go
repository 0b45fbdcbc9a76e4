package vault

// AggregateEmbeddings computes folder embeddings bottom-up. Children are
// processed strictly before parents, so each folder's embedding is the
// L2-normalized mean of its direct file embeddings and its subfolders'
// already-computed embeddings. A folder with no contributing embeddings is
// left with a nil embedding; a degenerate all-zero mean is stored raw
// rather than divided by its zero norm.
func AggregateEmbeddings(root *FolderNode) {
	for _, sub := range root.Subfolders {
		AggregateEmbeddings(sub)
	}

	var members [][]float32
	for _, f := range root.Files {
		if f.Embedding != nil {
			members = append(members, f.Embedding)
		}
	}
	for _, sub := range root.Subfolders {
		if sub.Embedding != nil {
			members = append(members, sub.Embedding)
		}
	}

	if len(members) == 0 {
		return
	}
	root.Embedding = normalizeL2(meanVector(members))
}

// FolderEmbeddings flattens the computed folder-embedding layer into a
// path→vector map, suitable for the suggester or for persisting as a cache.
// The root and folders without an embedding are omitted.
func FolderEmbeddings(root *FolderNode) map[string][]float32 {
	out := make(map[string][]float32)
	for _, folder := range Folders(root) {
		if folder.Embedding != nil {
			out[folder.Path] = folder.Embedding
		}
	}
	return out
}

// ApplyFolderEmbeddings assigns a previously persisted folder-embedding
// layer onto matching tree nodes by path, bypassing recomputation. Folders
// absent from the cache keep a nil embedding.
func ApplyFolderEmbeddings(root *FolderNode, cached map[string][]float32) {
	var walk func(*FolderNode)
	walk = func(n *FolderNode) {
		if emb, ok := cached[n.Path]; ok {
			n.Embedding = emb
		}
		for _, sub := range n.Subfolders {
			walk(sub)
		}
	}
	walk(root)
}
