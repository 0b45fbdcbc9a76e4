// Package embed fetches text embeddings from a local model server.
package embed

import (
	"context"
	"fmt"
)

// Embedder is the contract the pipelines consume: a batch of texts in,
// one vector per text out, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Model describes one embedding model: the name the API expects, the
// suffix the model wants appended to every input, and per-task instruction
// prompts. Registries are plain values handed in as configuration.
type Model struct {
	Name        string            // short registry name
	FullName    string            // model name sent to the API
	Suffix      string            // appended to every input
	TaskPrompts map[string]string // task name → instruction, "" means no template
}

// Prompt renders content through the model's instruction template for the
// given task. Tasks without an instruction pass the content through with
// only the suffix appended.
func (m Model) Prompt(task, content string) string {
	instruction := m.TaskPrompts[task]
	if instruction == "" {
		return content + m.Suffix
	}
	return fmt.Sprintf("Instruct: %s\nQuery: %s%s", instruction, content, m.Suffix)
}

// Qwen3Embedding is the stock model registry entry.
func Qwen3Embedding() Model {
	return Model{
		Name:     "Qwen3-Embedding",
		FullName: "dengcao/Qwen3-Embedding-0.6B:Q8_0",
		Suffix:   "<|endoftext|>",
		TaskPrompts: map[string]string{
			"clustering":      "Identify the topic or theme of the given text",
			"retrieval_query": "Given a search query, retrieve relevant passages",
			"retrieval_doc":   "",
		},
	}
}
