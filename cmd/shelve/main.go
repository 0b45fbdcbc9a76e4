// Command shelve organizes a markdown vault by embedding similarity: it
// indexes files, fetches embeddings, audits folder coherence, and sorts an
// inbox into suggested destinations.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

// CLI is the top-level command structure for shelve.
type CLI struct {
	Debug  bool   `env:"SHELVE_DEBUG" help:"Enable debug logging."`
	Config string `help:"Path to the config file." type:"path"`
	DB     string `help:"Path to the document store (overrides config)." type:"path"`

	Scan    ScanCmd    `cmd:"" help:"Index markdown snippets from the vault."`
	Embed   EmbedCmd   `cmd:"" help:"Compute embeddings for pending documents."`
	Audit   AuditCmd   `cmd:"" help:"Rank folders by coherence and flag outlier files."`
	Triage  TriageCmd  `cmd:"" help:"Cluster inbox files and suggest destinations."`
	Preview PreviewCmd `cmd:"" help:"Print the vault folder tree."`
	Moves   MovesCmd   `cmd:"" help:"Regenerate move commands from a saved report."`
	MCP     MCPCmd     `cmd:"" name:"mcp" help:"Serve audit and triage as MCP tools over stdio."`
}

func main() {
	cli := CLI{}
	parser, err := kong.New(&cli,
		kong.Name("shelve"),
		kong.Description("Semantic organizer for markdown vaults."),
		kong.UsageOnError(),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "shelve: %v\n", err)
		os.Exit(1)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	setupLogger(cli.Debug)

	st, err := loadConfig(cli.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "shelve: %v\n", err)
		os.Exit(1)
	}
	if cli.DB != "" {
		st.DBPath = cli.DB
	}

	ctx.Bind(st)
	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
