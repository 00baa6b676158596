// Package mcp exposes duels as Model Context Protocol tools.
package mcp

import (
	"context"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	duelnet "github.com/peterkuimelis/chainduel/internal/net"
)

// NewServer builds an MCP server with every duel tool registered.
func NewServer(m *Manager, name, version string) *server.MCPServer {
	s := server.NewMCPServer(name, version)
	m.RegisterTools(s)
	return s
}

// RegisterTools adds all duel tools to the MCP server.
func (m *Manager) RegisterTools(s *server.MCPServer) {
	s.AddTool(startDuelTool(), m.handleStartDuel)
	s.AddTool(executeCommandTool(), m.handleExecuteCommand)
	s.AddTool(selectCardsTool(), m.handleSelectCards)
	s.AddTool(cancelSelectionTool(), m.handleCancelSelection)
	s.AddTool(passPriorityTool(), m.handlePassPriority)
	s.AddTool(getStateTool(), m.handleGetState)
	s.AddTool(endDuelTool(), m.handleEndDuel)
}

// --- Tool definitions ---

func sessionParam() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id returned by start_duel"))
}

func startDuelTool() mcp.Tool {
	return mcp.NewTool("start_duel",
		mcp.WithDescription("Start a new duel. Returns the session id, the initial state and the actions available. "+
			"Every other tool takes the session id."),
		mcp.WithNumber("deck", mcp.Required(), mcp.Description("Deck number (1-indexed from the decks file)")),
	)
}

func executeCommandTool() mcp.Tool {
	return mcp.NewTool("execute_command",
		mcp.WithDescription("Run a duel command. Commands: draw (count), summon, set_monster, set_spell_trap, activate, "+
			"ignition (card, effect), next_phase, or action (index into the actions list). "+
			"card is a card instance id such as 'main-3'."),
		sessionParam(),
		mcp.WithString("command", mcp.Required(), mcp.Description("Command name")),
		mcp.WithString("card", mcp.Description("Card instance id")),
		mcp.WithString("effect", mcp.Description("Effect id for ignition; empty picks the card's first ignition effect")),
		mcp.WithNumber("count", mcp.Description("Cards to draw")),
		mcp.WithNumber("index", mcp.Description("0-based index into the actions list, for the action command")),
	)
}

func selectCardsTool() mcp.Tool {
	return mcp.NewTool("select_cards",
		mcp.WithDescription("Answer the pending card selection."),
		sessionParam(),
		mcp.WithString("indices", mcp.Required(), mcp.Description("Space-separated 0-based indices of cards to select (e.g. '0 2 3'), or empty string for no selection")),
	)
}

func cancelSelectionTool() mcp.Tool {
	return mcp.NewTool("cancel_selection",
		mcp.WithDescription("Cancel the pending card selection when it is cancelable. A canceled activation does "+
			"not join the chain; during chain resolution the rest of the chain is dropped."),
		sessionParam(),
	)
}

func passPriorityTool() mcp.Tool {
	return mcp.NewTool("pass_priority",
		mcp.WithDescription("Decline to respond to the open chain and resolve it, last link first."),
		sessionParam(),
	)
}

func getStateTool() mcp.Tool {
	return mcp.NewTool("get_state",
		mcp.WithDescription("Get the current state, unread events and pending decision without changing anything."),
		sessionParam(),
	)
}

func endDuelTool() mcp.Tool {
	return mcp.NewTool("end_duel",
		mcp.WithDescription("Discard a duel session."),
		sessionParam(),
	)
}

// --- Tool handlers ---

func (m *Manager) handleStartDuel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deck := request.GetInt("deck", 0)
	if deck < 1 {
		return mcp.NewToolResultError("deck must be >= 1"), nil
	}
	resp, err := m.Start(deck)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start duel: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (m *Manager) handleExecuteCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cmd := request.GetString("command", "")
	msg := duelnet.ClientMessage{Type: duelnet.TypeCommand, Command: cmd}
	switch cmd {
	case "":
		return mcp.NewToolResultError("command is required"), nil
	case "action":
		msg = duelnet.ClientMessage{Type: duelnet.TypeAction, Index: request.GetInt("index", -1)}
	default:
		msg.Card = request.GetString("card", "")
		msg.Effect = request.GetString("effect", "")
		msg.Count = request.GetInt("count", 1)
	}
	return m.send(ctx, request, msg)
}

func (m *Manager) handleSelectCards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	indicesStr := request.GetString("indices", "")
	var indices []int
	for _, p := range strings.Fields(indicesStr) {
		idx, err := strconv.Atoi(p)
		if err != nil {
			return mcp.NewToolResultErrorf("Invalid index '%s': must be an integer.", p), nil
		}
		indices = append(indices, idx)
	}
	return m.send(ctx, request, duelnet.ClientMessage{Type: duelnet.TypeCards, Indices: indices})
}

func (m *Manager) handleCancelSelection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return m.send(ctx, request, duelnet.ClientMessage{Type: duelnet.TypeCancel})
}

func (m *Manager) handlePassPriority(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return m.send(ctx, request, duelnet.ClientMessage{Type: duelnet.TypePass})
}

func (m *Manager) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := m.State(request.GetString("session_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (m *Manager) handleEndDuel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("session_id", "")
	if err := m.End(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(`{"ended": "` + id + `"}`), nil
}

func (m *Manager) send(ctx context.Context, request mcp.CallToolRequest, msg duelnet.ClientMessage) (*mcp.CallToolResult, error) {
	resp, err := m.Send(ctx, request.GetString("session_id", ""), msg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}
