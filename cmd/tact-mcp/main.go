// Package main provides the tact-mcp binary, an MCP server exposing
// tact's classification and translation tools to AI agents.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ormasoftchile/tact/pkg/config"
	tmcp "github.com/ormasoftchile/tact/pkg/ecosystem/mcp"
	"github.com/ormasoftchile/tact/pkg/translator"
)

var version = "dev"

func main() {
	cfg, err := config.Load(os.Getenv("TACT_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Translation is optional; without a key the server still serves
	// classify and schema.
	var tr translator.Client
	if cfg.Translator.APIKey() != "" {
		llm, err := translator.NewOpenAI(translator.Options{
			Model:       cfg.Translator.Model,
			BaseURL:     cfg.Translator.BaseURL,
			APIKey:      cfg.Translator.APIKey(),
			Temperature: cfg.Translator.Temperature,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		tr = llm
	}

	s := tmcp.NewServer(version, tr)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
