package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ormasoftchile/tact/pkg/translator"
)

// NewServer creates an MCP server with tact tools registered. The
// tools are deliberately side-effect free: an AI agent can classify
// and translate through MCP, but execution stays behind the
// interactive frontend and its safety gate.
func NewServer(version string, tr translator.Client) *server.MCPServer {
	s := server.NewMCPServer(
		"tact",
		version,
		server.WithToolCapabilities(true),
	)

	h := &Handlers{Translator: tr}

	s.AddTool(
		mcp.NewTool("tact/classify",
			mcp.WithDescription("Classify free text as automation request or conversation"),
			mcp.WithString("text", mcp.Required(), mcp.Description("The text to classify")),
		),
		h.HandleClassify,
	)

	s.AddTool(
		mcp.NewTool("tact/translate",
			mcp.WithDescription("Translate an instruction into a command plan without executing it"),
			mcp.WithString("instruction", mcp.Required(), mcp.Description("Natural-language automation instruction")),
		),
		h.HandleTranslate,
	)

	s.AddTool(
		mcp.NewTool("tact/schema",
			mcp.WithDescription("Export the JSON Schema of the translator reply format"),
		),
		h.HandleSchema,
	)

	return s
}
