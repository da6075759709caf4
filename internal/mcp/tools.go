package mcp

import "github.com/mark3labs/mcp-go/mcp"

// checkDangerTool defines the check_immediate_danger MCP tool.
var checkDangerTool = mcp.NewTool("check_immediate_danger",
	mcp.WithDescription("Screen a message for signs that the writer is in immediate danger. Returns whether it matched and which pattern."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("The message to screen"),
	),
)

// parseResponseTool defines the parse_coach_response MCP tool.
var parseResponseTool = mcp.NewTool("parse_coach_response",
	mcp.WithDescription("Split a raw model reply into the message shown to the user and the structured ```json metadata block."),
	mcp.WithString("raw",
		mcp.Required(),
		mcp.Description("The raw model reply"),
	),
)

// coachTurnTool defines the coach_turn MCP tool.
var coachTurnTool = mcp.NewTool("coach_turn",
	mcp.WithDescription("Run one Order of Protection coaching turn. The caller supplies the full case state; nothing is stored."),
	mcp.WithString("request",
		mcp.Required(),
		mcp.Description(`Turn request as JSON: {"sessionId", "userMessage", "opFacts", "jurisdiction", "timeline", "conversationHistory", "tone", "mode"}`),
	),
)
