package net

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/peterkuimelis/chainduel/internal/chain"
	"github.com/peterkuimelis/chainduel/internal/command"
	"github.com/peterkuimelis/chainduel/internal/engine"
	"github.com/peterkuimelis/chainduel/internal/log"
)

var ErrBadMessage = errors.New("bad message")

// Handler maps client messages onto one duel session and renders the
// results as server messages. Indices in "action" and "cards" messages refer
// to the lists sent in the last reply.
type Handler struct {
	sess    *engine.Session
	journal *log.MemoryLogger
	logger  *zap.Logger

	sent       int
	actions    []chain.Candidate
	candidates []string
	token      string
}

// NewHandler serves sess. journal must be the logger the session writes to.
func NewHandler(sess *engine.Session, journal *log.MemoryLogger, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{sess: sess, journal: journal, logger: logger.With(zap.String("session", sess.ID()))}
}

func (h *Handler) Session() *engine.Session { return h.sess }

// Greeting is the first reply on a new connection.
func (h *Handler) Greeting() []ServerMessage {
	out := h.drain()
	if sel, token, ok := h.sess.Pending(); ok {
		return append(out, h.choose(sel.Prompt, sel.Pool, sel.Min, sel.Max, sel.Cancelable, token))
	}
	return append(out, h.stateMessage(h.sess.LegalActions())...)
}

// Handle runs one client message. Protocol and engine errors come back as an
// "error" message followed by the current prompt.
func (h *Handler) Handle(ctx context.Context, msg ClientMessage) []ServerMessage {
	out, err := h.dispatch(ctx, msg)
	if err != nil {
		h.logger.Debug("message failed", zap.String("type", msg.Type), zap.Error(err))
		return append([]ServerMessage{{Type: TypeError, Result: err.Error()}}, h.Greeting()...)
	}
	return h.render(out)
}

func (h *Handler) dispatch(ctx context.Context, msg ClientMessage) (engine.Outcome, error) {
	switch msg.Type {
	case TypeCommand:
		cmd, err := h.command(msg)
		if err != nil {
			return engine.Outcome{}, err
		}
		return h.sess.Execute(ctx, cmd)

	case TypeAction:
		if msg.Index < 0 || msg.Index >= len(h.actions) {
			return engine.Outcome{}, fmt.Errorf("%w: action %d of %d", ErrBadMessage, msg.Index, len(h.actions))
		}
		c := h.actions[msg.Index]
		env := h.sess.Env()
		if c.Action.Subtype.IsCardActivation() {
			return h.sess.Execute(ctx, command.NewActivateSpell(env, c.Instance.InstanceID))
		}
		return h.sess.Execute(ctx, command.NewActivateIgnition(env, c.Instance.InstanceID, c.Action.EffectID))

	case TypePass:
		return h.sess.Pass(ctx)

	case TypeCards:
		ids := make([]string, 0, len(msg.Indices))
		for _, i := range msg.Indices {
			if i < 0 || i >= len(h.candidates) {
				return engine.Outcome{}, fmt.Errorf("%w: card %d of %d", ErrBadMessage, i, len(h.candidates))
			}
			ids = append(ids, h.candidates[i])
		}
		return h.sess.Resume(ctx, h.token, ids)

	case TypeCancel:
		return h.sess.Cancel(ctx, h.token)
	}
	return engine.Outcome{}, fmt.Errorf("%w: unknown type %q", ErrBadMessage, msg.Type)
}

func (h *Handler) command(msg ClientMessage) (command.Command, error) {
	env := h.sess.Env()
	switch msg.Command {
	case CmdDraw:
		return command.NewDraw(env, max(msg.Count, 1)), nil
	case CmdSummon:
		return command.NewNormalSummon(env, msg.Card), nil
	case CmdSetMonster:
		return command.NewSetMonster(env, msg.Card), nil
	case CmdSetSpellTrap:
		return command.NewSetSpellTrap(env, msg.Card), nil
	case CmdActivate:
		return command.NewActivateSpell(env, msg.Card), nil
	case CmdIgnition:
		return command.NewActivateIgnition(env, msg.Card, msg.Effect), nil
	case CmdNextPhase:
		return command.NewAdvancePhase(env), nil
	}
	return nil, fmt.Errorf("%w: unknown command %q", ErrBadMessage, msg.Command)
}

func (h *Handler) render(o engine.Outcome) []ServerMessage {
	out := h.drain()
	switch o.Kind {
	case engine.Rejected:
		v := o.Validation
		out = append(out, ServerMessage{Type: TypeRejected, Code: string(v.Code), Params: v.Params})
		return append(out, h.stateMessage(h.sess.LegalActions())...)
	case engine.NeedsSelection:
		sel := o.Selection
		return append(out, h.choose(o.Prompt, sel.Pool, sel.Min, sel.Max, sel.Cancelable, o.Token))
	}
	if o.Err != nil {
		out = append(out, ServerMessage{Type: TypeError, Result: o.Err.Error()})
	}
	actions := o.Responses
	if !o.ChainOpen {
		actions = h.sess.LegalActions()
	}
	return append(out, h.stateMessage(actions)...)
}

// drain turns journal entries written since the last reply into notifies.
func (h *Handler) drain() []ServerMessage {
	if h.journal == nil {
		return nil
	}
	entries := h.journal.Entries()
	var out []ServerMessage
	for _, e := range entries[min(h.sent, len(entries)):] {
		ev := EventViewOf(e)
		out = append(out, ServerMessage{Type: TypeNotify, Event: &ev})
	}
	h.sent = len(entries)
	return out
}

func (h *Handler) stateMessage(actions []chain.Candidate) []ServerMessage {
	snap := h.sess.State()
	cards := h.sess.Env().Cards
	h.candidates, h.token = nil, ""
	if snap.IsOver() {
		h.actions = nil
		return []ServerMessage{
			{Type: TypeState, State: BuildStateView(snap, cards)},
			{Type: TypeGameOver, Winner: snap.Result.Winner.String(), Result: snap.Result.Reason},
		}
	}
	h.actions = actions
	return []ServerMessage{{
		Type:      TypeState,
		State:     BuildStateView(snap, cards),
		Actions:   ActionViews(actions, cards),
		ChainOpen: snap.ChainOpen(),
	}}
}

func (h *Handler) choose(prompt string, pool []string, lo, hi int, cancelable bool, token string) ServerMessage {
	snap := h.sess.State()
	cards := h.sess.Env().Cards
	h.actions = nil
	h.candidates, h.token = pool, token

	views := make([]CardView, 0, len(pool))
	for i, id := range pool {
		c, _ := snap.Find(id)
		views = append(views, CardViewOf(i, c, cards))
	}
	return ServerMessage{
		Type:       TypeChooseCards,
		State:      BuildStateView(snap, cards),
		Prompt:     prompt,
		Candidates: views,
		Min:        lo,
		Max:        hi,
		Cancelable: cancelable,
	}
}
