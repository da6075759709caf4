package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/elilinden/Support-bot/internal/coach"
	"github.com/elilinden/Support-bot/internal/danger"
	"github.com/elilinden/Support-bot/internal/response"
)

type dangerResult struct {
	Danger         bool   `json:"danger"`
	Pattern        string `json:"pattern,omitempty"`
	PatternVersion string `json:"patternVersion"`
}

// handleCheckDanger runs the danger classifier on a message.
func (s *Server) handleCheckDanger(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}

	pattern, ok := danger.Match(text)
	return jsonResult(dangerResult{Danger: ok, Pattern: pattern, PatternVersion: danger.PatternVersion})
}

type parsedResult struct {
	AssistantMessage string `json:"assistant_message"`
	Structured       bool   `json:"structured"`
	response.Metadata
}

// handleParseResponse splits a raw reply into message and metadata.
func (s *Server) handleParseResponse(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("raw")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: raw"), nil
	}

	p := response.Parse(raw)
	return jsonResult(parsedResult{AssistantMessage: p.Message, Structured: p.Structured, Metadata: p.Metadata})
}

// handleCoachTurn runs a stateless coaching turn.
func (s *Server) handleCoachTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("request")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: request"), nil
	}

	var req coach.Request
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid request JSON: %v", err)), nil
	}

	res, err := s.coach.HandleTurn(ctx, req)
	switch {
	case errors.Is(err, coach.ErrInvalidRequest):
		return mcp.NewToolResultError(err.Error()), nil
	case err != nil:
		s.logger.Warn("coach turn failed", zap.String("session_id", req.SessionID), zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("coaching service unavailable: %v", err)), nil
	}
	return jsonResult(res)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}
