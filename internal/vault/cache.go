package vault

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFolderCache reads a folder-path→embedding map written by
// SaveFolderCache. A missing file reports (nil, nil) so callers can fall
// back to recomputation; a file that exists but cannot be parsed is an
// error, because a caller that asked for the cache must not silently get
// different numbers.
func LoadFolderCache(path string) (map[string][]float32, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading folder cache %s: %w", path, err)
	}

	var cache map[string][]float32
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("decoding folder cache %s: %w", path, err)
	}
	return cache, nil
}

// SaveFolderCache writes the folder embeddings as a flat JSON object.
func SaveFolderCache(path string, folderEmb map[string][]float32) error {
	data, err := json.MarshalIndent(folderEmb, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding folder cache: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing folder cache %s: %w", path, err)
	}
	return nil
}
