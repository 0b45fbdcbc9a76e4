package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Ollama talks to a local Ollama server's /api/embed endpoint. Transient
// failures are retried here with exponential backoff; callers see either a
// complete batch or an error.
type Ollama struct {
	BaseURL string
	Model   Model
	Task    string // task prompt applied to every input, e.g. "clustering"

	Client     *http.Client
	Tries      int           // total attempts per batch (0 = default 3)
	RetryDelay time.Duration // first backoff step (0 = default 1s)
}

// NewOllama returns a client with the stock retry policy.
func NewOllama(baseURL string, model Model, task string) *Ollama {
	return &Ollama{
		BaseURL: baseURL,
		Model:   model,
		Task:    task,
		Client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed renders each text through the model's task template and fetches
// the batch in one request.
func (o *Ollama) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	input := make([]string, len(texts))
	for i, t := range texts {
		input[i] = o.Model.Prompt(o.Task, t)
	}
	body, err := json.Marshal(embedRequest{Model: o.Model.FullName, Input: input})
	if err != nil {
		return nil, fmt.Errorf("encoding embed request: %w", err)
	}

	tries := o.Tries
	if tries == 0 {
		tries = 3
	}
	delay := o.RetryDelay
	if delay == 0 {
		delay = time.Second
	}

	var lastErr error
	for attempt := 0; attempt < tries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		result, err := o.post(ctx, body)
		if err == nil {
			if len(result) != len(texts) {
				return nil, fmt.Errorf("embed: got %d embeddings for %d texts", len(result), len(texts))
			}
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}
	return nil, fmt.Errorf("embed: giving up after %d attempts: %w", tries, lastErr)
}

func (o *Ollama) post(ctx context.Context, body []byte) ([][]float32, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var decoded embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding embed response: %w", err)
	}
	return decoded.Embeddings, nil
}
