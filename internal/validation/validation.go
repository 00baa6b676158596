package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Code identifies why an operation is not legal. The set is closed: callers
// map codes to display text, the engine never produces free-form reasons.
type Code string

const (
	CodeGameOver                   Code = "GAME_OVER"
	CodeNotMainPhase               Code = "NOT_MAIN_PHASE"
	CodeCardNotFound               Code = "CARD_NOT_FOUND"
	CodeCardNotInHand              Code = "CARD_NOT_IN_HAND"
	CodeCardNotOnField             Code = "CARD_NOT_ON_FIELD"
	CodeCardNotFaceUp              Code = "CARD_NOT_FACE_UP"
	CodeNotMonsterCard             Code = "NOT_MONSTER_CARD"
	CodeNotSpellTrapCard           Code = "NOT_SPELL_TRAP_CARD"
	CodeMonsterZoneFull            Code = "MONSTER_ZONE_FULL"
	CodeSpellTrapZoneFull          Code = "SPELL_TRAP_ZONE_FULL"
	CodeInsufficientDeck           Code = "INSUFFICIENT_DECK"
	CodeInsufficientCounters       Code = "INSUFFICIENT_COUNTERS"
	CodeInsufficientTributes       Code = "INSUFFICIENT_TRIBUTES"
	CodeInsufficientLifePoints     Code = "INSUFFICIENT_LIFE_POINTS"
	CodeSummonLimitReached         Code = "SUMMON_LIMIT_REACHED"
	CodeQuickPlayRestriction       Code = "QUICK_PLAY_RESTRICTION"
	CodeSetThisTurn                Code = "SET_THIS_TURN"
	CodeActivationConditionsNotMet Code = "ACTIVATION_CONDITIONS_NOT_MET"
	CodeNoActivationEffect         Code = "NO_ACTIVATION_EFFECT"
	CodeNoIgnitionEffect           Code = "NO_IGNITION_EFFECT"
	CodeEffectAlreadyActivated     Code = "EFFECT_ALREADY_ACTIVATED"
	CodeSpellSpeedTooLow           Code = "SPELL_SPEED_TOO_LOW"
	CodeChainOpen                  Code = "CHAIN_OPEN"
	CodePhaseTransitionNotAllowed  Code = "PHASE_TRANSITION_NOT_ALLOWED"
	CodeInvalidCount               Code = "INVALID_COUNT"
	CodeInvalidSelection           Code = "INVALID_SELECTION"
)

// Codes lists every code in declaration order.
var Codes = []Code{
	CodeGameOver,
	CodeNotMainPhase,
	CodeCardNotFound,
	CodeCardNotInHand,
	CodeCardNotOnField,
	CodeCardNotFaceUp,
	CodeNotMonsterCard,
	CodeNotSpellTrapCard,
	CodeMonsterZoneFull,
	CodeSpellTrapZoneFull,
	CodeInsufficientDeck,
	CodeInsufficientCounters,
	CodeInsufficientTributes,
	CodeInsufficientLifePoints,
	CodeSummonLimitReached,
	CodeQuickPlayRestriction,
	CodeSetThisTurn,
	CodeActivationConditionsNotMet,
	CodeNoActivationEffect,
	CodeNoIgnitionEffect,
	CodeEffectAlreadyActivated,
	CodeSpellSpeedTooLow,
	CodeChainOpen,
	CodePhaseTransitionNotAllowed,
	CodeInvalidCount,
	CodeInvalidSelection,
}

// Known reports whether c belongs to the closed code set.
func (c Code) Known() bool {
	for _, k := range Codes {
		if k == c {
			return true
		}
	}
	return false
}

// Result is the outcome of a legality check.
type Result struct {
	Valid  bool
	Code   Code
	Params map[string]string
}

// Success returns a valid result.
func Success() Result {
	return Result{Valid: true}
}

// Failure returns an invalid result. kv is an alternating list of parameter
// names and values; a trailing name without a value is dropped.
func Failure(code Code, kv ...any) Result {
	r := Result{Code: code}
	if len(kv) >= 2 {
		r.Params = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			r.Params[fmt.Sprint(kv[i])] = fmt.Sprint(kv[i+1])
		}
	}
	return r
}

// Err converts a failed result into an error. It returns nil for valid results.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &Error{Code: r.Code, Params: r.Params}
}

// First returns the first failed result, or Success when all pass.
func First(results ...Result) Result {
	for _, r := range results {
		if !r.Valid {
			return r
		}
	}
	return Success()
}

// Error carries a failed validation through error-returning APIs.
type Error struct {
	Code   Code
	Params map[string]string
}

func (e *Error) Error() string {
	if len(e.Params) == 0 {
		return string(e.Code)
	}
	keys := make([]string, 0, len(e.Params))
	for k := range e.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + e.Params[k]
	}
	return fmt.Sprintf("%s (%s)", e.Code, strings.Join(parts, ", "))
}

// Is matches another *Error with the same code, so errors.Is works against a
// bare &Error{Code: ...} target.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}
