package net

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/peterkuimelis/chainduel/internal/app"
	"github.com/peterkuimelis/chainduel/internal/config"
	"github.com/peterkuimelis/chainduel/internal/log"
)

const testDecks = `decks:
  - name: Greedy
    main:
      - name: Pot of Greed
        count: 3
      - name: Celtic Guardian
        count: 7
  - name: Charity
    main:
      - name: Graceful Charity
      - name: Pot of Greed
        count: 2
      - name: Celtic Guardian
        count: 7
`

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	path := filepath.Join(t.TempDir(), "decks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testDecks), 0o644))
	a, err := app.New(config.Config{
		DecksFile:          path,
		StartingLifePoints: 8000,
		SkipShuffle:        true,
		AutoPass:           true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return a
}

func newTestHandler(t *testing.T, deck int) *Handler {
	t.Helper()
	journal := log.NewMemoryLogger()
	sess, err := newTestApp(t).Start(deck, journal)
	require.NoError(t, err)
	return NewHandler(sess, journal, zaptest.NewLogger(t))
}

func last(t *testing.T, msgs []ServerMessage) ServerMessage {
	t.Helper()
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1]
}

func ofType(msgs []ServerMessage, typ string) []ServerMessage {
	var out []ServerMessage
	for _, m := range msgs {
		if m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

func toMain(t *testing.T, h *Handler) []ServerMessage {
	t.Helper()
	ctx := context.Background()
	h.Handle(ctx, ClientMessage{Type: TypeCommand, Command: CmdNextPhase})
	msgs := h.Handle(ctx, ClientMessage{Type: TypeCommand, Command: CmdNextPhase})
	require.Equal(t, "Main Phase 1", last(t, msgs).State.Phase)
	return msgs
}

func TestGreeting(t *testing.T) {
	h := newTestHandler(t, 1)
	msgs := h.Greeting()

	m := last(t, msgs)
	assert.Equal(t, TypeState, m.Type)
	require.NotNil(t, m.State)
	assert.Equal(t, 8000, m.State.LP)
	assert.Equal(t, 8000, m.State.OpponentLP)
	assert.Len(t, m.State.Hand, 5)
	assert.Equal(t, 5, m.State.Deck)
	assert.Equal(t, "Pot of Greed", m.State.Hand[0].Name)
	assert.Equal(t, "main-0", m.State.Hand[0].ID)
	assert.Empty(t, m.Actions, "spells need a main phase")
}

func TestActivateFromActionList(t *testing.T) {
	h := newTestHandler(t, 1)
	msgs := toMain(t, h)
	actions := last(t, msgs).Actions
	require.Len(t, actions, 3)
	assert.Equal(t, "main-0", actions[0].Card)
	assert.Contains(t, actions[0].Desc, "Pot of Greed")

	msgs = h.Handle(context.Background(), ClientMessage{Type: TypeAction, Index: 0})
	m := last(t, msgs)
	require.Equal(t, TypeState, m.Type)
	assert.Len(t, m.State.Hand, 6)
	assert.Equal(t, 3, m.State.Deck)
	assert.Equal(t, 1, m.State.Graveyard)
	assert.False(t, m.ChainOpen)

	var details []string
	for _, n := range ofType(msgs, TypeNotify) {
		details = append(details, n.Event.Details)
	}
	assert.Contains(t, details, "activates Pot of Greed")
	assert.Contains(t, details, "chain resolved")
}

func TestRejectedCommand(t *testing.T) {
	h := newTestHandler(t, 1)
	toMain(t, h)

	msgs := h.Handle(context.Background(), ClientMessage{Type: TypeCommand, Command: CmdSummon, Card: "main-0"})
	rej := ofType(msgs, TypeRejected)
	require.Len(t, rej, 1)
	assert.Equal(t, "NOT_MONSTER_CARD", rej[0].Code)
	assert.Equal(t, TypeState, last(t, msgs).Type)
}

func TestBadMessages(t *testing.T) {
	tests := []struct {
		name string
		msg  ClientMessage
		want string
	}{
		{"unknown type", ClientMessage{Type: "dance"}, "unknown type"},
		{"unknown command", ClientMessage{Type: TypeCommand, Command: "attack"}, "unknown command"},
		{"action out of range", ClientMessage{Type: TypeAction, Index: 9}, "action 9"},
		{"pass without chain", ClientMessage{Type: TypePass}, "no chain"},
		{"cards without selection", ClientMessage{Type: TypeCards}, "no pending selection"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, 1)
			msgs := h.Handle(context.Background(), tt.msg)
			require.GreaterOrEqual(t, len(msgs), 2)
			assert.Equal(t, TypeError, msgs[0].Type)
			assert.Contains(t, msgs[0].Result, tt.want)
			assert.Equal(t, TypeState, last(t, msgs).Type)
		})
	}
}

func TestSelectionRoundTrip(t *testing.T) {
	h := newTestHandler(t, 2)
	msgs := toMain(t, h)
	actions := last(t, msgs).Actions
	idx := -1
	for _, a := range actions {
		if a.Card == "main-0" {
			idx = a.Index
		}
	}
	require.GreaterOrEqual(t, idx, 0, "Graceful Charity is playable")

	ctx := context.Background()
	m := last(t, h.Handle(ctx, ClientMessage{Type: TypeAction, Index: idx}))
	require.Equal(t, TypeChooseCards, m.Type)
	assert.Equal(t, 2, m.Min)
	assert.Equal(t, 2, m.Max)
	assert.False(t, m.Cancelable)
	assert.Len(t, m.Candidates, 7)

	msgs = h.Handle(ctx, ClientMessage{Type: TypeCancel})
	assert.Equal(t, TypeError, msgs[0].Type)
	assert.Equal(t, TypeChooseCards, last(t, msgs).Type, "still waiting for the discard")

	msgs = h.Handle(ctx, ClientMessage{Type: TypeCards, Indices: []int{0}})
	assert.Contains(t, msgs[0].Result, "invalid selection")

	m = last(t, h.Handle(ctx, ClientMessage{Type: TypeCards, Indices: []int{0, 1}}))
	require.Equal(t, TypeState, m.Type)
	assert.Len(t, m.State.Hand, 5)
	assert.Equal(t, 3, m.State.Graveyard)
}

func TestGameOverMessage(t *testing.T) {
	h := newTestHandler(t, 1)
	ctx := context.Background()
	msgs := h.Handle(ctx, ClientMessage{Type: TypeCommand, Command: CmdDraw, Count: 5})
	require.Equal(t, TypeState, last(t, msgs).Type)

	// Draw -> Standby -> Main -> End -> next turn's draw decks out.
	for range 4 {
		msgs = h.Handle(ctx, ClientMessage{Type: TypeCommand, Command: CmdNextPhase})
	}
	m := last(t, msgs)
	require.Equal(t, TypeGameOver, m.Type)
	assert.Equal(t, "opponent", m.Winner)
	assert.True(t, msgs[len(msgs)-2].State.GameOver)
}
