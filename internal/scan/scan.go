// Package scan walks a vault directory and extracts a short text snippet
// from every markdown file, to be embedded downstream.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// base64Pattern catches lines carrying inline base64 image payloads, which
// would otherwise dominate the word budget with noise.
var base64Pattern = regexp.MustCompile(`data:image[^;]*;base64,|\]\(data:image/svg\+xml;base64`)

// Options tunes snippet extraction. The zero value of a field means "use
// the default".
type Options struct {
	WordLimit int // max words taken from the body (default 200)
	MinLength int // snippets shorter than this many bytes are discarded (default 30)
}

func (o Options) withDefaults() Options {
	if o.WordLimit == 0 {
		o.WordLimit = 200
	}
	if o.MinLength == 0 {
		o.MinLength = 30
	}
	return o
}

// Snippet is one indexed file: its vault-relative path (forward slashes)
// and the extracted text.
type Snippet struct {
	Path string
	Text string
}

// Vault walks root for .md files and extracts a snippet from each.
// Dot-directories are skipped. Files whose snippet comes back empty are
// silently dropped. Results are sorted by path.
func Vault(root string, opts Options) ([]Snippet, error) {
	opts = opts.withDefaults()

	var snippets []Snippet
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}

		text, err := FileSnippet(path, opts)
		if err != nil {
			return fmt.Errorf("snippet %s: %w", path, err)
		}
		if text == "" {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}
		snippets = append(snippets, Snippet{
			Path: filepath.ToSlash(rel),
			Text: text,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Slice(snippets, func(i, j int) bool { return snippets[i].Path < snippets[j].Path })
	return snippets, nil
}

// FileSnippet extracts the snippet for a single markdown file. A YAML
// frontmatter description field wins outright; otherwise the first
// WordLimit words of the body are taken, skipping base64 image lines.
// Snippets below MinLength are discarded and reported as "".
func FileSnippet(path string, opts Options) (string, error) {
	opts = opts.withDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	content := string(data)

	if desc, ok := frontmatterDescription(content); ok {
		return desc, nil
	}

	var words []string
	for _, line := range strings.Split(content, "\n") {
		if base64Pattern.MatchString(line) {
			continue
		}
		words = append(words, strings.Fields(line)...)
		if len(words) >= opts.WordLimit {
			words = words[:opts.WordLimit]
			break
		}
	}

	snippet := strings.Join(words, " ")
	if len(snippet) < opts.MinLength {
		return "", nil
	}
	return snippet, nil
}

// frontmatterDescription parses a leading YAML frontmatter block and
// returns its description field. A missing block, an unterminated block,
// or unparseable YAML all simply mean "no description"; the body fallback
// handles those files.
func frontmatterDescription(content string) (string, bool) {
	rest, ok := strings.CutPrefix(content, "---\n")
	if !ok {
		return "", false
	}
	block, _, ok := strings.Cut(rest, "\n---")
	if !ok {
		return "", false
	}

	var meta struct {
		Description string `yaml:"description"`
	}
	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		return "", false
	}
	desc := strings.TrimSpace(meta.Description)
	return desc, desc != ""
}
