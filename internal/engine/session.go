// Package engine runs a duel: it feeds commands into the step pipeline,
// builds and unwinds the chain, and routes events to trigger rules.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peterkuimelis/chainduel/internal/chain"
	"github.com/peterkuimelis/chainduel/internal/command"
	"github.com/peterkuimelis/chainduel/internal/event"
	"github.com/peterkuimelis/chainduel/internal/log"
	"github.com/peterkuimelis/chainduel/internal/state"
	"github.com/peterkuimelis/chainduel/internal/step"
)

var (
	ErrAwaitingSelection = errors.New("a selection is pending")
	ErrChainEmpty        = errors.New("no chain to resolve")
)

// Option configures a Session.
type Option func(*Session)

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithJournal records every step and event as a human-readable entry.
func WithJournal(j log.EventLogger) Option {
	return func(s *Session) { s.journal = j }
}

// WithAutoPass resolves a chain as soon as nothing can respond to it.
func WithAutoPass(on bool) Option {
	return func(s *Session) { s.autoPass = on }
}

func WithInfoDelay(d time.Duration) Option {
	return func(s *Session) { s.infoDelay = d }
}

func WithTokenSource(fn func() string) Option {
	return func(s *Session) { s.newToken = fn }
}

// Session is one running duel. It is safe for concurrent use; operations
// are serialized.
type Session struct {
	mu sync.Mutex

	id       string
	env      *command.Env
	pipe     *step.Pipeline
	stack    chain.Stack
	timeline event.Timeline

	// resolving is set while the chain unwinds; events are held back in
	// deferred until the chain_resolved event flushes them.
	resolving bool
	deferred  []event.TimeSnapshot
	announced bool

	logger    *zap.Logger
	journal   log.EventLogger
	autoPass  bool
	infoDelay time.Duration
	newToken  func() string
}

// New starts a session from an initial snapshot.
func New(env *command.Env, initial state.Snapshot, opts ...Option) *Session {
	s := &Session{
		id:       uuid.NewString(),
		env:      env,
		logger:   zap.NewNop(),
		autoPass: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session", s.id))

	popts := []step.Option{
		step.WithEventHandler(s.onEvents),
		step.WithStateCheck(func(snap state.Snapshot) state.Snapshot { return command.CheckVictory(env, snap) }),
		step.WithNotifier(step.NotifierFunc(s.notify)),
		step.WithInfoDelay(s.infoDelay),
	}
	if s.newToken != nil {
		popts = append(popts, step.WithTokenSource(s.newToken))
	}
	s.pipe = step.NewPipeline(initial, popts...)
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Env() *command.Env { return s.env }

func (s *Session) State() state.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pipe.State()
}

func (s *Session) Timeline() event.Timeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.View()
}

// Pending returns the outstanding selection and its resume token.
func (s *Session) Pending() (step.Selection, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pipe.Pending()
}

// LegalActions lists what could be activated now, at the spell speed the
// current chain requires. Cards already on the chain are skipped.
func (s *Session) LegalActions() []chain.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.responses()
}

func (s *Session) responses() []chain.Candidate {
	snap := s.pipe.State()
	if snap.IsOver() {
		return nil
	}
	return s.env.Actions.CollectChainableActions(snap, snap.RequiredSpellSpeed(), s.stack.InstanceIDs())
}

// Execute validates and runs a command. A rejected command leaves the state
// untouched and reports the validation result.
func (s *Session) Execute(ctx context.Context, cmd command.Command) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, _, ok := s.pipe.Pending(); ok {
		return Outcome{}, ErrAwaitingSelection
	}

	snap := s.pipe.State()
	if v := cmd.CanExecute(snap); !v.Valid {
		s.logger.Debug("command rejected", zap.String("command", cmd.Name()), zap.String("code", string(v.Code)))
		return Outcome{Kind: Rejected, State: snap, Validation: v, Message: string(v.Code)}, nil
	}

	res := command.Run(s.env, cmd, snap)
	if !res.Success {
		s.logger.Warn("command failed", zap.String("command", cmd.Name()), zap.Error(res.Err))
		return Outcome{Kind: Done, State: snap, Err: res.Err, Message: res.Message}, nil
	}
	s.logger.Info("command", zap.String("command", cmd.Name()), zap.String("message", res.Message))

	s.pipe.SetState(res.State)
	s.pipe.Enqueue(s.onEvents(res.State, res.Events)...)
	s.pipe.Enqueue(res.Steps...)
	if res.ChainBlock != nil {
		s.stack.Push(*res.ChainBlock)
		s.pipe.Enqueue(res.ChainBlock.LinkStep())
	}
	return s.run(ctx, s.pipe.Run(ctx)), nil
}

// Pass declines to respond to the open chain and resolves it.
func (s *Session) Pass(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, _, ok := s.pipe.Pending(); ok {
		return Outcome{}, ErrAwaitingSelection
	}
	if s.stack.Len() == 0 {
		return Outcome{}, ErrChainEmpty
	}
	return s.run(ctx, s.unwind(ctx)), nil
}

// Resume supplies the selection for the pending step.
func (s *Session) Resume(ctx context.Context, token string, selected []string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := s.pipe.Resume(ctx, token, selected)
	if err != nil {
		return Outcome{}, err
	}
	return s.run(ctx, out), nil
}

// Cancel abandons the pending selection and drops the rest of the queue.
// Steps that already ran stay applied. A canceled activation never becomes a
// chain link; during chain resolution the rest of the chain is dropped.
func (s *Session) Cancel(ctx context.Context, token string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := s.pipe.Cancel(token)
	if err != nil {
		return Outcome{}, err
	}
	switch {
	case s.resolving:
		s.logger.Info("chain resolution canceled", zap.Int("links", s.stack.Len()))
		s.clearChain()
	case s.stack.Len() > len(out.State.Chain):
		s.logger.Info("activation canceled")
		s.stack.Sync(out.State)
	}
	out.State = s.pipe.State()
	return s.finish(out), nil
}

// unwind resolves the whole chain, last link first.
func (s *Session) unwind(ctx context.Context) step.Outcome {
	s.resolving = true
	s.deferred = nil
	s.pipe.Enqueue(s.stack.UnwindSteps()...)
	return s.pipe.Run(ctx)
}

// run settles the chain after a pipeline outcome and auto-passes when
// nothing can respond.
func (s *Session) run(ctx context.Context, out step.Outcome) Outcome {
	if out.Kind == step.Done {
		s.settle(out)
		if !s.resolving && s.stack.Len() > 0 && s.autoPass && out.Err == nil &&
			!s.pipe.State().IsOver() && len(s.responses()) == 0 {
			return s.run(ctx, s.unwind(ctx))
		}
	}
	return s.finish(out)
}

// settle brings the block stack in line with the snapshot after a run ends.
func (s *Session) settle(out step.Outcome) {
	snap := s.pipe.State()
	if snap.IsOver() || (s.resolving && out.Err != nil) {
		s.clearChain()
		return
	}
	s.stack.Sync(snap)
	if len(snap.Chain) == 0 {
		s.stack.Clear()
		s.resolving = false
	}
}

func (s *Session) clearChain() {
	s.pipe.Reset()
	s.pipe.SetState(s.pipe.State().ClearChain())
	s.stack.Clear()
	s.resolving = false
	s.deferred = nil
}

func (s *Session) finish(out step.Outcome) Outcome {
	snap := s.pipe.State()
	if snap.IsOver() && !s.announced {
		s.announced = true
		s.logger.Info("duel over", zap.Stringer("winner", snap.Result.Winner), zap.String("reason", snap.Result.Reason))
		if s.journal != nil {
			s.journal.Log(log.NewWinEntry(snap))
		}
	}
	o := Outcome{
		Kind:      Done,
		State:     snap,
		Err:       out.Err,
		ChainOpen: snap.ChainOpen(),
	}
	if out.Kind == step.NeedsSelection {
		o.Kind = NeedsSelection
		o.Selection = out.Selection
		o.Token = out.Token
		o.Prompt = out.Selection.Prompt
		o.Message = out.Summary
		return o
	}
	if out.Err != nil {
		o.Message = out.Err.Error()
	}
	if o.ChainOpen {
		o.Responses = s.responses()
	}
	return o
}

// onEvents records events and returns the trigger steps they cause. While
// the chain resolves, groups are deferred; when it closes, "if" triggers
// fire for every group and "when" triggers only for the last one, then the
// chain_resolved group itself is matched. Deferred triggers check CanApply
// against the snapshot at chain end, not the one their event happened in.
func (s *Session) onEvents(snap state.Snapshot, events []event.GameEvent) []step.AtomicStep {
	if len(events) == 0 {
		return nil
	}
	group := s.timeline.Record(snap.Turn, snap.Phase, events...)
	if s.journal != nil {
		for _, e := range events {
			s.journal.Log(log.NewEventEntry(e, s.env.Cards))
		}
	}
	if s.env.Rules == nil {
		return nil
	}

	if !s.resolving {
		return s.env.Rules.TriggerSteps(snap, events, true)
	}
	if !group.Has(event.ChainResolved) {
		s.deferred = append(s.deferred, group)
		return nil
	}
	s.resolving = false
	deferred := s.deferred
	s.deferred = nil
	var steps []step.AtomicStep
	for i, g := range deferred {
		steps = append(steps, s.env.Rules.TriggerSteps(snap, g.Events, i == len(deferred)-1)...)
	}
	steps = append(steps, s.env.Rules.TriggerSteps(snap, group.Events, true)...)
	if len(steps) > 0 {
		s.logger.Debug("deferred triggers", zap.Int("groups", len(deferred)), zap.Int("steps", len(steps)))
	}
	return steps
}

func (s *Session) notify(_ context.Context, n step.Notice) {
	if s.journal != nil && n.Level != step.Silent {
		s.journal.Log(log.NewStepEntry(n))
	}
	if n.Err != nil {
		s.logger.Warn("step failed", zap.String("step", n.StepID), zap.Error(n.Err))
		return
	}
	s.logger.Debug("step", zap.String("step", n.StepID), zap.String("summary", n.Summary),
		zap.Stringer("phase", n.Phase), zap.Int("turn", n.Turn))
}
