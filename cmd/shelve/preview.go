package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lthms/shelve/internal/vault"
)

// PreviewCmd prints the folder tree reconstructed from the store.
type PreviewCmd struct {
	Depth int  `help:"Maximum folder depth to print (0 = unlimited)."`
	Files bool `help:"Also list individual files."`
}

func (cmd *PreviewCmd) Run(st settings) error {
	s, err := openStore(st)
	if err != nil {
		return err
	}
	defer s.Close()

	embeddings, err := s.Embeddings()
	if err != nil {
		return err
	}
	if len(embeddings) == 0 {
		fmt.Println("Store is empty. Run 'shelve scan' and 'shelve embed' first.")
		return nil
	}

	root, err := vault.BuildTree(embeddings)
	if err != nil {
		return err
	}
	printTree(os.Stdout, root, 0, cmd.Depth, cmd.Files)
	return nil
}

func printTree(w io.Writer, n *vault.FolderNode, depth, maxDepth int, files bool) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%s/ (%d files)\n", indent, n.Name(), n.TotalFiles())

	if maxDepth > 0 && depth+1 > maxDepth {
		return
	}
	if files {
		for _, f := range n.Files {
			fmt.Fprintf(w, "%s  %s\n", indent, f.Name())
		}
	}
	for _, sub := range n.Subfolders {
		printTree(w, sub, depth+1, maxDepth, files)
	}
}
