// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes deck review tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/memyaml/internal/apperr"
	"github.com/starford/memyaml/internal/deckservice"
)

// CardFormatURI is the resource URI of CardFormatContract.
const CardFormatURI = "memyaml://card-format"

// Server wraps the MCP server with deck tools.
type Server struct {
	mcp *server.MCPServer
	svc *deckservice.Service
}

// New creates a new MCP server with all deck tools registered.
func New(svc *deckservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"memyaml",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("next_card",
		mcp.WithDescription("Pick a random card that is due for review and return its question side "+
			"(name and optional glance). The answer is hidden until reveal_card is called."),
	), s.nextCard)

	s.mcp.AddTool(mcp.NewTool("reveal_card",
		mcp.WithDescription("Return the full card, answer and tags included."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Card id as returned by next_card")),
	), s.revealCard)

	s.mcp.AddTool(mcp.NewTool("review_card",
		mcp.WithDescription("Record how well the user recalled the card and schedule its next review."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Card id")),
		mcp.WithString("outcome", mcp.Required(),
			mcp.Description("Recall quality"),
			mcp.Enum("Again", "Hard", "Good", "Easy")),
	), s.reviewCard)

	s.mcp.AddTool(mcp.NewTool("ignore_card",
		mcp.WithDescription("Exclude a card from all future reviews."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Card id")),
	), s.ignoreCard)

	s.mcp.AddTool(mcp.NewTool("deck_status",
		mcp.WithDescription("Deck metadata plus counts of unseen, due, scheduled and ignored cards."),
	), s.deckStatus)

	s.mcp.AddTool(mcp.NewTool("get_card_format",
		mcp.WithDescription("Returns the deck and card file format and the review protocol."),
	), s.getCardFormat)

	s.mcp.AddResource(
		mcp.NewResource(CardFormatURI, "Deck Format",
			mcp.WithResourceDescription("Deck metadata and card file format, and the review protocol."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readCardFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) nextCard(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	card, err := s.svc.Next(ctx)
	if errors.Is(err, apperr.ErrNoCardsDue) {
		return mcp.NewToolResultText("All cards are done!"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(card)
}

func (s *Server) revealCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	card, err := s.svc.Card(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(card)
}

func (s *Server) reviewCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outcome, err := req.RequireString("outcome")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Review(ctx, id, outcome)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) ignoreCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Ignore(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Card ignored"), nil
}

func (s *Server) deckStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.svc.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"deck":  s.svc.Deck(ctx),
		"stats": st,
	})
}

func (s *Server) getCardFormat(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(CardFormatContract), nil
}

func (s *Server) readCardFormatResource(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      CardFormatURI,
			MIMEType: "text/markdown",
			Text:     CardFormatContract,
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
