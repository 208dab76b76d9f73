package api

import (
	"context"

	"github.com/hazyhaar/jawab/pkg/kit"
	"github.com/hazyhaar/jawab/pkg/match"
	"github.com/hazyhaar/jawab/pkg/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCPTools registers the three Jawab MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, m *match.Matcher, st *store.DB) {
	registerAskQuestion(srv, m)
	registerTeachAnswer(srv, m)
	registerStats(srv, st)
}

func registerAskQuestion(srv *server.MCPServer, m *match.Matcher) {
	tool := mcp.NewTool("ask_question",
		mcp.WithDescription("Look up an answer to a free-text question in the crowd-sourced Q/A store, with fuzzy fallback when no exact match exists."),
		mcp.WithString("question", mcp.Required(), mcp.Description("The question to answer")),
	)

	kit.RegisterMCPTool(srv, tool, askEndpoint(m), func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		question, _ := args["question"].(string)
		return &kit.MCPDecodeResult{Request: &askReq{Question: question}}, nil
	})
}

func registerTeachAnswer(srv *server.MCPServer, m *match.Matcher) {
	tool := mcp.NewTool("teach_answer",
		mcp.WithDescription("Store a question/answer pair. Rejected as duplicate when a record with the same normalized question already exists."),
		mcp.WithString("question", mcp.Required(), mcp.Description("The question text, stored verbatim")),
		mcp.WithString("answer", mcp.Required(), mcp.Description("The answer text")),
		mcp.WithString("source", mcp.Description("Provenance tag (default: manual)")),
	)

	kit.RegisterMCPTool(srv, tool, teachEndpoint(m), func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		question, _ := args["question"].(string)
		answer, _ := args["answer"].(string)
		source, _ := args["source"].(string)

		decoded := &kit.MCPDecodeResult{Request: &teachReq{Question: question, Answer: answer}}
		if source != "" {
			decoded.EnrichCtx = func(ctx context.Context) context.Context {
				return kit.WithSource(ctx, source)
			}
		}
		return decoded, nil
	})
}

func registerStats(srv *server.MCPServer, st *store.DB) {
	tool := mcp.NewTool("qa_stats",
		mcp.WithDescription("Report the number of stored question/answer records."),
	)

	kit.RegisterMCPTool(srv, tool, statsEndpoint(st), func(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	})
}
