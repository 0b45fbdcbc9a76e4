package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/lthms/shelve/internal/embed"
)

// EmbedCmd computes embeddings for documents that still need one.
type EmbedCmd struct {
	Limit int    `help:"Stop after this many documents (0 = all)."`
	Batch int    `help:"Documents per request." default:"16"`
	URL   string `help:"Ollama base URL (overrides config)."`
}

func (cmd *EmbedCmd) Run(st settings) error {
	s, err := openStore(st)
	if err != nil {
		return err
	}
	defer s.Close()

	pending, err := s.Pending(st.Model.FullName)
	if err != nil {
		return err
	}
	if cmd.Limit > 0 && len(pending) > cmd.Limit {
		pending = pending[:cmd.Limit]
	}
	if len(pending) == 0 {
		slog.Info("nothing to embed")
		return nil
	}

	url := cmd.URL
	if url == "" {
		url = st.OllamaURL
	}
	client := embed.NewOllama(url, st.Model, st.Task)

	// An interrupt finishes the current batch and stops; everything stored
	// so far stays stored.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := 0
	for start := 0; start < len(pending); start += cmd.Batch {
		end := min(start+cmd.Batch, len(pending))
		batch := pending[start:end]

		texts := make([]string, len(batch))
		for i, doc := range batch {
			texts[i] = doc.Snippet
		}

		vecs, err := client.Embed(ctx, texts)
		if err != nil {
			if ctx.Err() != nil {
				slog.Warn("interrupted", "embedded", done, "pending", len(pending)-done)
				return nil
			}
			return fmt.Errorf("embedding batch at %s: %w", batch[0].Path, err)
		}

		for i, doc := range batch {
			if err := s.SetEmbedding(doc.Path, st.Model.FullName, vecs[i]); err != nil {
				return err
			}
			done++
		}
		slog.Info("embedded", "done", done, "total", len(pending))
	}
	return nil
}
