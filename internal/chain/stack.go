package chain

import (
	"fmt"

	"github.com/peterkuimelis/chainduel/internal/event"
	"github.com/peterkuimelis/chainduel/internal/state"
	"github.com/peterkuimelis/chainduel/internal/step"
)

// Block is one activated action waiting on the chain: the data link that goes
// into the snapshot and the resolution steps the engine keeps beside it.
type Block struct {
	Link       state.ChainLink
	Action     Action
	Source     state.CardInstance
	Resolution []step.AtomicStep
}

// NewBlock prepares the block for activating a from src. The link index is
// one past the current top of the chain in s.
func NewBlock(a Action, s state.Snapshot, src state.CardInstance) Block {
	return Block{
		Link: state.ChainLink{
			Index:      len(s.Chain) + 1,
			InstanceID: src.InstanceID,
			CardID:     src.CardID,
			EffectID:   a.EffectID,
			SpellSpeed: a.Speed(),
		},
		Action:     a,
		Source:     src,
		Resolution: a.CreateResolutionSteps(s, src),
	}
}

// LinkStep pushes the block's link onto the snapshot's chain.
func (b Block) LinkStep() step.AtomicStep {
	link := b.Link
	return step.AtomicStep{
		ID:      fmt.Sprintf("chain/%d/link", link.Index),
		Summary: fmt.Sprintf("Chain Link %d: %s", link.Index, b.name()),
		Level:   step.Info,
		Action: step.Transform(func(s state.Snapshot) (state.Snapshot, []event.GameEvent, error) {
			if len(s.Chain)+1 != link.Index {
				return s, nil, fmt.Errorf("chain link %d pushed onto chain of %d", link.Index, len(s.Chain))
			}
			next := s.PushLink(link)
			e := event.New(event.ChainLinked, next)
			e.InstanceID, e.CardID, e.Amount = link.InstanceID, link.CardID, link.Index
			return next, []event.GameEvent{e}, nil
		}),
	}
}

// UnwindSteps returns the block's resolution steps followed by the step that
// pops its link.
func (b Block) UnwindSteps() []step.AtomicStep {
	link := b.Link
	steps := make([]step.AtomicStep, 0, len(b.Resolution)+1)
	steps = append(steps, b.Resolution...)
	return append(steps, step.AtomicStep{
		ID:      fmt.Sprintf("chain/%d/resolved", link.Index),
		Summary: fmt.Sprintf("Chain Link %d resolves: %s", link.Index, b.name()),
		Level:   step.Info,
		Action: step.Transform(func(s state.Snapshot) (state.Snapshot, []event.GameEvent, error) {
			top, ok := s.TopLink()
			if !ok || top.Index != link.Index {
				return s, nil, fmt.Errorf("chain link %d is not on top", link.Index)
			}
			return s.PopLink(), nil, nil
		}),
	})
}

func (b Block) name() string {
	if b.Action.Name != "" {
		return b.Action.Name
	}
	return b.Source.InstanceID
}

// Stack holds the blocks behind the snapshot's chain links, bottom first.
type Stack struct {
	blocks []Block
}

func (st *Stack) Push(b Block) {
	st.blocks = append(st.blocks, b)
}

func (st *Stack) Len() int {
	return len(st.blocks)
}

func (st *Stack) Blocks() []Block {
	return append([]Block(nil), st.blocks...)
}

// Sync drops blocks whose links never made it onto the snapshot's chain, e.g.
// when an activation was canceled before its link step ran.
func (st *Stack) Sync(s state.Snapshot) {
	if len(st.blocks) > len(s.Chain) {
		st.blocks = st.blocks[:len(s.Chain)]
	}
}

func (st *Stack) Clear() {
	st.blocks = nil
}

// InstanceIDs returns the source instance of every block.
func (st *Stack) InstanceIDs() []string {
	ids := make([]string, len(st.blocks))
	for i, b := range st.blocks {
		ids[i] = b.Link.InstanceID
	}
	return ids
}

// UnwindSteps returns the resolution of every block, last in first out,
// followed by the step that closes the chain.
func (st *Stack) UnwindSteps() []step.AtomicStep {
	var steps []step.AtomicStep
	for i := len(st.blocks) - 1; i >= 0; i-- {
		steps = append(steps, st.blocks[i].UnwindSteps()...)
	}
	return append(steps, step.AtomicStep{
		ID:      "chain/end",
		Summary: "Chain resolved",
		Level:   step.Silent,
		Action: step.Transform(func(s state.Snapshot) (state.Snapshot, []event.GameEvent, error) {
			return s, []event.GameEvent{event.New(event.ChainResolved, s)}, nil
		}),
	})
}
