package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/tact/pkg/intent"
	"github.com/ormasoftchile/tact/pkg/plan"
	"github.com/ormasoftchile/tact/pkg/translator"
)

// Handlers bundle the tool implementations with their dependencies.
type Handlers struct {
	Translator translator.Client
}

// HandleClassify implements the tact/classify MCP tool.
func (h *Handlers) HandleClassify(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	text, _ := args["text"].(string)
	if text == "" {
		return errorResult("text argument is required"), nil
	}

	res := intent.Classify(text)
	payload, err := json.MarshalIndent(map[string]any{
		"score":      res.Score,
		"automation": res.Automation(),
		"categories": res.Categories,
		"matched":    res.Matched,
	}, "", "  ")
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(payload)), nil
}

// HandleTranslate implements the tact/translate MCP tool. The plan is
// returned as YAML and never executed.
func (h *Handlers) HandleTranslate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	instruction, _ := args["instruction"].(string)
	if instruction == "" {
		return errorResult("instruction argument is required"), nil
	}
	if h.Translator == nil {
		return errorResult("no translator configured"), nil
	}

	p, err := h.Translator.Translate(ctx, instruction)
	if err != nil {
		return errorResult(fmt.Sprintf("translate: %v", err)), nil
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

// HandleSchema implements the tact/schema MCP tool.
func (h *Handlers) HandleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := plan.ReplySchemaJSON()
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
