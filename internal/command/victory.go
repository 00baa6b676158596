package command

import (
	"github.com/peterkuimelis/chainduel/internal/state"
)

const (
	ReasonForbiddenPieces = "forbidden_pieces"
	ReasonLifePoints      = "life_points"
	ReasonDeckOut         = "deck_out"
)

// CheckVictory marks the duel over when a win condition holds. A snapshot
// that is already over is returned unchanged.
func CheckVictory(env *Env, s state.Snapshot) state.Snapshot {
	if s.IsOver() {
		return s
	}
	if env != nil && hasAllPieces(s.Zones.Hand, env.ForbiddenPieces) {
		return s.WithResult(state.Result{Over: true, Winner: state.PlayerSelf, Reason: ReasonForbiddenPieces})
	}
	switch {
	case s.LP(state.PlayerSelf) <= 0:
		return s.WithResult(state.Result{Over: true, Winner: state.PlayerOpponent, Reason: ReasonLifePoints})
	case s.LP(state.PlayerOpponent) <= 0:
		return s.WithResult(state.Result{Over: true, Winner: state.PlayerSelf, Reason: ReasonLifePoints})
	}
	return s
}

// hasAllPieces reports whether hand holds at least one copy of every piece.
func hasAllPieces(hand []state.CardInstance, pieces []int) bool {
	if len(pieces) == 0 {
		return false
	}
	held := make(map[int]bool, len(hand))
	for _, c := range hand {
		held[c.CardID] = true
	}
	for _, id := range pieces {
		if !held[id] {
			return false
		}
	}
	return true
}
