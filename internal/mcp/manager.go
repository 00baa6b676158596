package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/peterkuimelis/chainduel/internal/app"
	"github.com/peterkuimelis/chainduel/internal/log"
	duelnet "github.com/peterkuimelis/chainduel/internal/net"
)

var ErrUnknownSession = errors.New("unknown session")

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	SessionID string               `json:"session_id"`
	Events    []duelnet.EventView  `json:"events"`
	State     *duelnet.StateView   `json:"state,omitempty"`
	Actions   []duelnet.ActionView `json:"actions,omitempty"`
	ChainOpen bool                 `json:"chain_open,omitempty"`
	Pending   *PendingView         `json:"pending,omitempty"`
	Rejected  *Rejection           `json:"rejected,omitempty"`
	Error     string               `json:"error,omitempty"`
	GameOver  bool                 `json:"game_over"`
	Winner    string               `json:"winner,omitempty"`
	Result    string               `json:"result,omitempty"`
}

// PendingView is a card selection the duel is waiting for.
type PendingView struct {
	Prompt     string             `json:"prompt"`
	Candidates []duelnet.CardView `json:"candidates"`
	Min        int                `json:"min"`
	Max        int                `json:"max"`
	Cancelable bool               `json:"cancelable"`
}

// Rejection is a command that failed validation.
type Rejection struct {
	Code   string            `json:"code"`
	Params map[string]string `json:"params,omitempty"`
}

type duel struct {
	mu sync.Mutex
	h  *duelnet.Handler
}

// Manager holds the running duels of one MCP server, keyed by session id.
type Manager struct {
	app    *app.App
	logger *zap.Logger

	mu    sync.Mutex
	duels map[string]*duel
}

func NewManager(a *app.App, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{app: a, logger: logger, duels: make(map[string]*duel)}
}

// Start begins a duel with the given deck and returns its first response.
func (m *Manager) Start(deckNumber int) (*ToolResponse, error) {
	journal := log.NewMemoryLogger()
	sess, err := m.app.Start(deckNumber, journal)
	if err != nil {
		return nil, err
	}
	d := &duel{h: duelnet.NewHandler(sess, journal, m.logger)}

	m.mu.Lock()
	m.duels[sess.ID()] = d
	m.mu.Unlock()
	m.logger.Info("mcp duel started", zap.String("session", sess.ID()), zap.Int("deck", deckNumber))

	return fold(sess.ID(), d.h.Greeting()), nil
}

// Send runs one client message against the duel id.
func (m *Manager) Send(ctx context.Context, id string, msg duelnet.ClientMessage) (*ToolResponse, error) {
	d, err := m.get(id)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return fold(id, d.h.Handle(ctx, msg)), nil
}

// State returns the current view of a duel and any unread events.
func (m *Manager) State(id string) (*ToolResponse, error) {
	d, err := m.get(id)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return fold(id, d.h.Greeting()), nil
}

// End forgets a duel.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.duels[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	delete(m.duels, id)
	return nil
}

// Len is the number of running duels.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.duels)
}

func (m *Manager) get(id string) (*duel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.duels[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	return d, nil
}

// fold collapses a reply batch into one response. Later state messages
// replace earlier ones.
func fold(id string, msgs []duelnet.ServerMessage) *ToolResponse {
	resp := &ToolResponse{SessionID: id, Events: []duelnet.EventView{}}
	for _, msg := range msgs {
		switch msg.Type {
		case duelnet.TypeNotify:
			resp.Events = append(resp.Events, *msg.Event)
		case duelnet.TypeState:
			resp.State, resp.Actions, resp.ChainOpen = msg.State, msg.Actions, msg.ChainOpen
			resp.Pending = nil
		case duelnet.TypeChooseCards:
			resp.State, resp.Actions = msg.State, nil
			resp.Pending = &PendingView{
				Prompt:     msg.Prompt,
				Candidates: msg.Candidates,
				Min:        msg.Min,
				Max:        msg.Max,
				Cancelable: msg.Cancelable,
			}
		case duelnet.TypeRejected:
			resp.Rejected = &Rejection{Code: msg.Code, Params: msg.Params}
		case duelnet.TypeError:
			resp.Error = msg.Result
		case duelnet.TypeGameOver:
			resp.GameOver, resp.Winner, resp.Result = true, msg.Winner, msg.Result
		}
	}
	return resp
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
