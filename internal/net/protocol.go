package net

// Message types for the JSON line protocol. Each message is one JSON value
// followed by a newline; the websocket endpoint carries the same values.

// Server message types.
const (
	TypeNotify      = "notify"
	TypeState       = "state"
	TypeChooseCards = "choose_cards"
	TypeRejected    = "rejected"
	TypeError       = "error"
	TypeGameOver    = "game_over"
)

// Client message types.
const (
	TypeJoin    = "join"
	TypeCommand = "command"
	TypeAction  = "action"
	TypePass    = "pass"
	TypeCards   = "cards"
	TypeCancel  = "cancel"
)

// Command names accepted in a "command" message.
const (
	CmdDraw         = "draw"
	CmdSummon       = "summon"
	CmdSetMonster   = "set_monster"
	CmdSetSpellTrap = "set_spell_trap"
	CmdActivate     = "activate"
	CmdIgnition     = "ignition"
	CmdNextPhase    = "next_phase"
)

// --- Server → Client messages ---

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "notify"
	Event *EventView `json:"event,omitempty"`

	// For "state"
	State     *StateView   `json:"state,omitempty"`
	Actions   []ActionView `json:"actions,omitempty"`
	ChainOpen bool         `json:"chain_open,omitempty"`

	// For "choose_cards"
	Prompt     string     `json:"prompt,omitempty"`
	Candidates []CardView `json:"candidates,omitempty"`
	Min        int        `json:"min,omitempty"`
	Max        int        `json:"max,omitempty"`
	Cancelable bool       `json:"cancelable,omitempty"`

	// For "rejected"
	Code   string            `json:"code,omitempty"`
	Params map[string]string `json:"params,omitempty"`

	// For "game_over" and "error"
	Winner string `json:"winner,omitempty"`
	Result string `json:"result,omitempty"`
}

// EventView is one journal line for the client.
type EventView struct {
	Seq     int    `json:"seq"`
	Turn    int    `json:"turn"`
	Phase   string `json:"phase"`
	Kind    string `json:"kind"`
	Type    string `json:"type,omitempty"`
	Card    string `json:"card,omitempty"`
	Details string `json:"details"`
}

// ActionView is a numbered activation the player can take right now.
type ActionView struct {
	Index  int    `json:"index"`
	Card   string `json:"card"`
	Effect string `json:"effect"`
	Desc   string `json:"desc"`
}

// CardView describes one card instance.
type CardView struct {
	Index    int            `json:"index"`
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	FaceDown bool           `json:"face_down,omitempty"`
	Position string         `json:"position,omitempty"`
	ATK      int            `json:"atk,omitempty"`
	DEF      int            `json:"def,omitempty"`
	Counters map[string]int `json:"counters,omitempty"`
}

// LinkView is one link of the open chain.
type LinkView struct {
	Index      int    `json:"index"`
	Card       string `json:"card"`
	Effect     string `json:"effect"`
	SpellSpeed int    `json:"spell_speed"`
}

// StateView is the duel as the player sees it.
type StateView struct {
	Turn       int        `json:"turn"`
	Phase      string     `json:"phase"`
	LP         int        `json:"lp"`
	OpponentLP int        `json:"opponent_lp"`
	Hand       []CardView `json:"hand"`
	Monsters   []CardView `json:"monsters"`
	SpellTraps []CardView `json:"spell_traps"`
	Field      *CardView  `json:"field,omitempty"`
	Graveyard  int        `json:"graveyard_count"`
	Deck       int        `json:"deck_count"`
	Chain      []LinkView `json:"chain,omitempty"`
	GameOver   bool       `json:"game_over,omitempty"`
}

// --- Client → Server messages ---

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "command"
	Command string `json:"command,omitempty"`
	Card    string `json:"card,omitempty"`
	Effect  string `json:"effect,omitempty"`
	Count   int    `json:"count,omitempty"`

	// For "action": index into the last actions list
	Index int `json:"index,omitempty"`

	// For "cards": indices into the last candidates list
	Indices []int `json:"indices,omitempty"`

	// For "join" (initial handshake)
	DeckNumber int `json:"deck_number,omitempty"`
}
