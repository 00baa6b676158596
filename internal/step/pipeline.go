package step

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/peterkuimelis/chainduel/internal/event"
	"github.com/peterkuimelis/chainduel/internal/state"
)

var (
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrNoPendingSelection = errors.New("no pending selection")
	ErrTokenMismatch      = errors.New("resume token does not match pending selection")
	ErrNotCancelable      = errors.New("pending selection cannot be canceled")
	ErrUnsatisfiable      = errors.New("not enough candidates for selection")
)

// StepError reports which step failed.
type StepError struct {
	StepID string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.StepID, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Notice is what the notifier sees for each applied step.
type Notice struct {
	StepID      string
	Summary     string
	Description string
	Level       Level
	Message     string
	Err         error
	Turn        int
	Phase       state.Phase
}

// Notifier receives step summaries. Implementations must not block for long;
// pacing belongs to the pipeline's info delay.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notice)

func (f NotifierFunc) Notify(ctx context.Context, n Notice) { f(ctx, n) }

// EventHandler is called with the events a step emitted and returns steps to
// run before anything else still queued.
type EventHandler func(s state.Snapshot, events []event.GameEvent) []AtomicStep

// OutcomeKind distinguishes a finished run from one waiting on the player.
type OutcomeKind int

const (
	Done OutcomeKind = iota
	NeedsSelection
)

func (k OutcomeKind) String() string {
	if k == NeedsSelection {
		return "needs_selection"
	}
	return "done"
}

// Outcome is the result of running the queue. For NeedsSelection, Selection
// and Token describe the pending step. For Done, Err is set when a step failed
// and the queue was abandoned.
type Outcome struct {
	Kind      OutcomeKind
	State     state.Snapshot
	StepID    string
	Summary   string
	Selection *Selection
	Token     string
	Err       error
}

type pending struct {
	step       AtomicStep
	constraint Selection
	token      string
}

// Pipeline processes AtomicSteps in FIFO order against a snapshot.
type Pipeline struct {
	state     state.Snapshot
	queue     []AtomicStep
	pending   *pending
	notifier  Notifier
	onEvents  EventHandler
	check     func(state.Snapshot) state.Snapshot
	infoDelay time.Duration
	newToken  func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

func WithEventHandler(h EventHandler) Option {
	return func(p *Pipeline) { p.onEvents = h }
}

// WithStateCheck runs fn on the snapshot after every applied step, before
// the game-over test. The victory check is installed here.
func WithStateCheck(fn func(state.Snapshot) state.Snapshot) Option {
	return func(p *Pipeline) { p.check = fn }
}

// WithInfoDelay pauses after each info step so a presentation layer can show it.
func WithInfoDelay(d time.Duration) Option {
	return func(p *Pipeline) { p.infoDelay = d }
}

// WithTokenSource replaces the uuid resume-token generator.
func WithTokenSource(fn func() string) Option {
	return func(p *Pipeline) { p.newToken = fn }
}

func NewPipeline(initial state.Snapshot, opts ...Option) *Pipeline {
	p := &Pipeline{
		state:    initial,
		newToken: uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) State() state.Snapshot {
	return p.state
}

// SetState replaces the committed snapshot. Only valid while idle.
func (p *Pipeline) SetState(s state.Snapshot) {
	p.state = s
}

// Enqueue appends steps to the back of the queue.
func (p *Pipeline) Enqueue(steps ...AtomicStep) {
	p.queue = append(p.queue, steps...)
}

// Idle reports whether nothing is queued or pending.
func (p *Pipeline) Idle() bool {
	return p.pending == nil && len(p.queue) == 0
}

func (p *Pipeline) Queued() int {
	return len(p.queue)
}

// Pending returns the outstanding selection, if any.
func (p *Pipeline) Pending() (Selection, string, bool) {
	if p.pending == nil {
		return Selection{}, "", false
	}
	return p.pending.constraint, p.pending.token, true
}

// Run processes the queue until it is empty or an interactive step needs a
// selection.
func (p *Pipeline) Run(ctx context.Context) Outcome {
	if p.pending != nil {
		return p.suspended()
	}
	for len(p.queue) > 0 {
		if err := ctx.Err(); err != nil {
			return Outcome{Kind: Done, State: p.state, Err: err}
		}
		st := p.queue[0]
		p.queue = p.queue[1:]

		if st.Level == Interactive && st.Selection != nil {
			constraint := st.Selection.Resolve(p.state)
			if len(constraint.Pool) < constraint.Min {
				return p.abort(ctx, st, fmt.Errorf("%w: %d of %d", ErrUnsatisfiable, len(constraint.Pool), constraint.Min))
			}
			p.pending = &pending{step: st, constraint: constraint, token: p.newToken()}
			return p.suspended()
		}

		if out, stop := p.apply(ctx, st, nil); stop {
			return out
		}
	}
	return Outcome{Kind: Done, State: p.state}
}

// Resume supplies the selection for the pending step and continues the run.
// An invalid selection is rejected and the step stays pending.
func (p *Pipeline) Resume(ctx context.Context, token string, selected []string) (Outcome, error) {
	if p.pending == nil {
		return Outcome{}, ErrNoPendingSelection
	}
	if token != p.pending.token {
		return Outcome{}, ErrTokenMismatch
	}
	if err := p.pending.constraint.Check(selected); err != nil {
		return Outcome{}, err
	}
	st := p.pending.step
	p.pending = nil
	if out, stop := p.apply(ctx, st, selected); stop {
		return out, nil
	}
	return p.Run(ctx), nil
}

// Cancel abandons the pending step and everything queued behind it. Steps
// already applied stay applied.
func (p *Pipeline) Cancel(token string) (Outcome, error) {
	if p.pending == nil {
		return Outcome{}, ErrNoPendingSelection
	}
	if token != p.pending.token {
		return Outcome{}, ErrTokenMismatch
	}
	if !p.pending.constraint.Cancelable {
		return Outcome{}, ErrNotCancelable
	}
	p.pending = nil
	p.queue = nil
	return Outcome{Kind: Done, State: p.state}, nil
}

// Reset drops the queue and any pending step.
func (p *Pipeline) Reset() {
	p.pending = nil
	p.queue = nil
}

func (p *Pipeline) suspended() Outcome {
	c := p.pending.constraint
	return Outcome{
		Kind:      NeedsSelection,
		State:     p.state,
		StepID:    p.pending.step.ID,
		Summary:   p.pending.step.Summary,
		Selection: &c,
		Token:     p.pending.token,
	}
}

// apply runs one step. stop is true when the run must end early (failure,
// cancelation or game over); out is then the outcome to return.
func (p *Pipeline) apply(ctx context.Context, st AtomicStep, selected []string) (out Outcome, stop bool) {
	u := st.Apply(p.state, selected)
	if !u.Success {
		err := u.Err
		if err == nil {
			err = errors.New(u.Message)
		}
		return p.abort(ctx, st, err), true
	}
	p.state = u.State
	if p.check != nil {
		p.state = p.check(p.state)
	}
	p.notify(ctx, st, u.Message, nil)

	if st.Level == Info && p.infoDelay > 0 {
		t := time.NewTimer(p.infoDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return Outcome{Kind: Done, State: p.state, Err: ctx.Err()}, true
		case <-t.C:
		}
	}

	if p.state.IsOver() {
		p.queue = nil
		return Outcome{Kind: Done, State: p.state}, true
	}

	if len(u.Events) > 0 && p.onEvents != nil {
		if inserted := p.onEvents(p.state, u.Events); len(inserted) > 0 {
			p.queue = append(append([]AtomicStep(nil), inserted...), p.queue...)
		}
	}
	return Outcome{}, false
}

func (p *Pipeline) abort(ctx context.Context, st AtomicStep, err error) Outcome {
	p.queue = nil
	serr := &StepError{StepID: st.ID, Err: err}
	p.notify(ctx, st, "", serr)
	return Outcome{Kind: Done, State: p.state, StepID: st.ID, Err: serr}
}

func (p *Pipeline) notify(ctx context.Context, st AtomicStep, message string, err error) {
	if p.notifier == nil {
		return
	}
	p.notifier.Notify(ctx, Notice{
		StepID:      st.ID,
		Summary:     st.Summary,
		Description: st.Description,
		Level:       st.Level,
		Message:     message,
		Err:         err,
		Turn:        p.state.Turn,
		Phase:       p.state.Phase,
	})
}
