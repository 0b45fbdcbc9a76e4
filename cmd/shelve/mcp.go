package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lthms/shelve/internal/vault"
)

// MCPCmd serves the audit and triage pipelines as MCP tools over stdio.
type MCPCmd struct{}

func (cmd *MCPCmd) Run(st settings) error {
	return runMCPServer(st)
}

type auditArgs struct {
	ZThreshold float64 `json:"z_threshold,omitempty" jsonschema:"Outlier z-score cutoff (default 2.0)"`
	TopK       int     `json:"top_k,omitempty" jsonschema:"Candidate folders per suggestion (default 3)"`
}

type triageArgs struct {
	Inbox             string  `json:"inbox,omitempty" jsonschema:"Inbox prefix to triage (default from config)"`
	DistanceThreshold float64 `json:"distance_threshold,omitempty" jsonschema:"Clustering merge cutoff (default 0.3)"`
}

func runMCPServer(st settings) error {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "shelve",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "vault_audit",
		Description: "Analyze the vault's folder coherence and flag outlier files with relocation suggestions. Returns the full JSON report.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args auditArgs) (*mcp.CallToolResult, any, error) {
		return handleAudit(st, args)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "vault_triage",
		Description: "Cluster the inbox by similarity and suggest a destination folder per cluster. Returns the full JSON report.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args triageArgs) (*mcp.CallToolResult, any, error) {
		return handleTriage(st, args)
	})

	slog.Debug("starting MCP server")
	return server.Run(context.Background(), &mcp.StdioTransport{})
}

func handleAudit(st settings, args auditArgs) (*mcp.CallToolResult, any, error) {
	slog.Debug("vault_audit called", "z_threshold", args.ZThreshold, "top_k", args.TopK)

	params := st.Params
	if args.ZThreshold != 0 {
		params.ZThreshold = args.ZThreshold
	}
	if args.TopK != 0 {
		params.TopK = args.TopK
	}

	embeddings, err := loadStoredEmbeddings(st)
	if err != nil {
		return nil, nil, err
	}
	report, _, err := vault.Audit(embeddings, nil, params)
	if err != nil {
		return nil, nil, fmt.Errorf("audit failed: %w", err)
	}
	return reportResult(report)
}

func handleTriage(st settings, args triageArgs) (*mcp.CallToolResult, any, error) {
	slog.Debug("vault_triage called", "inbox", args.Inbox)

	params := st.Params
	if args.Inbox != "" {
		params.InboxPrefix = args.Inbox
	}
	if args.DistanceThreshold != 0 {
		params.DistanceThreshold = args.DistanceThreshold
	}

	embeddings, err := loadStoredEmbeddings(st)
	if err != nil {
		return nil, nil, err
	}
	report, _, err := vault.Triage(embeddings, nil, params)
	if err != nil {
		return nil, nil, fmt.Errorf("triage failed: %w", err)
	}
	return reportResult(report)
}

func loadStoredEmbeddings(st settings) (map[string][]float32, error) {
	s, err := openStore(st)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Embeddings()
}

func reportResult(report any) (*mcp.CallToolResult, any, error) {
	out, err := json.Marshal(report)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding report: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(out)},
		},
	}, nil, nil
}
