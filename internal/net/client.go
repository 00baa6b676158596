package net

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
)

// ErrQuit is returned by RunREPL when the player types "quit".
var ErrQuit = errors.New("player quit")

const help = `Commands:
  <n>            take action n from the list
  p              pass (resolve the chain)
  n              next phase
  d [count]      draw
  s <hand#>      normal summon
  m <hand#>      set a monster
  t <hand#>      set a spell or trap
  a <card>       activate a spell/trap by instance id
  q              quit`

// Client talks to a duel server and provides a terminal REPL.
type Client struct {
	conn io.ReadWriter
	in   *bufio.Reader
	out  io.Writer
}

// NewClient plays over conn, reading player input from in.
func NewClient(conn io.ReadWriter, in io.Reader, out io.Writer) *Client {
	return &Client{conn: conn, in: bufio.NewReader(in), out: out}
}

// Connect connects to a server, sends the deck choice, and runs the REPL.
func Connect(ctx context.Context, addr string, deckNumber int, in io.Reader, out io.Writer) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	fmt.Fprintln(out, "Connected! Waiting for the duel to start...")
	return NewClient(conn, in, out).Join(deckNumber)
}

// Join sends the join message and runs the REPL.
func (c *Client) Join(deckNumber int) error {
	if err := json.NewEncoder(c.conn).Encode(ClientMessage{Type: TypeJoin, DeckNumber: deckNumber}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}
	return c.RunREPL()
}

// RunREPL reads server messages and prompts whenever input is needed. It
// returns nil when the duel ends.
func (c *Client) RunREPL() error {
	dec := json.NewDecoder(c.conn)
	enc := json.NewEncoder(c.conn)

	for {
		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		var reply ClientMessage
		switch msg.Type {
		case TypeNotify:
			c.renderEvent(msg.Event)
			continue

		case TypeRejected:
			fmt.Fprintf(c.out, "Not allowed: %s %s\n", msg.Code, formatParams(msg.Params))
			continue

		case TypeError:
			fmt.Fprintf(c.out, "Error: %s\n", msg.Result)
			continue

		case TypeState:
			c.renderState(msg.State, msg.ChainOpen)
			if msg.State == nil || msg.State.GameOver {
				continue
			}
			c.renderActions(msg.Actions)
			var err error
			if reply, err = c.readCommand(msg); err != nil {
				return err
			}

		case TypeChooseCards:
			c.renderCardChoice(msg)
			var err error
			if reply, err = c.readCards(msg); err != nil {
				return err
			}

		case TypeGameOver:
			fmt.Fprintln(c.out)
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			fmt.Fprintln(c.out, "          GAME OVER")
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			fmt.Fprintf(c.out, "Winner: %s (%s)\n", msg.Winner, msg.Result)
			return nil

		default:
			continue
		}

		if err := enc.Encode(reply); err != nil {
			return fmt.Errorf("send %s: %w", reply.Type, err)
		}
	}
}

func (c *Client) readLine() (string, error) {
	fmt.Fprint(c.out, "> ")
	line, err := c.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read input: %w", err)
		}
		if line == "" {
			return "", ErrQuit
		}
	}
	return strings.TrimSpace(line), nil
}

func (c *Client) readCommand(msg ServerMessage) (ClientMessage, error) {
	for {
		line, err := c.readLine()
		if err != nil {
			return ClientMessage{}, err
		}
		reply, err := ParseInput(line, msg.State, len(msg.Actions))
		if errors.Is(err, ErrQuit) {
			return ClientMessage{}, err
		}
		if err != nil {
			fmt.Fprintln(c.out, err)
			fmt.Fprintln(c.out, help)
			continue
		}
		return reply, nil
	}
}

// ParseInput turns one REPL line into a client message. Numbers shown to the
// player are 1-based.
func ParseInput(line string, sv *StateView, actions int) (ClientMessage, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ClientMessage{}, errors.New("empty input")
	}
	if n, err := strconv.Atoi(fields[0]); err == nil {
		if n < 1 || n > actions {
			return ClientMessage{}, fmt.Errorf("enter an action between 1 and %d", actions)
		}
		return ClientMessage{Type: TypeAction, Index: n - 1}, nil
	}

	handCard := func(cmd string) (ClientMessage, error) {
		if len(fields) != 2 {
			return ClientMessage{}, fmt.Errorf("%s needs a hand number", fields[0])
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || sv == nil || n < 1 || n > len(sv.Hand) {
			return ClientMessage{}, fmt.Errorf("no card %q in hand", fields[1])
		}
		return ClientMessage{Type: TypeCommand, Command: cmd, Card: sv.Hand[n-1].ID}, nil
	}

	switch fields[0] {
	case "q", "quit":
		return ClientMessage{}, ErrQuit
	case "p", "pass":
		return ClientMessage{Type: TypePass}, nil
	case "n", "next":
		return ClientMessage{Type: TypeCommand, Command: CmdNextPhase}, nil
	case "d", "draw":
		count := 1
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return ClientMessage{}, fmt.Errorf("bad count %q", fields[1])
			}
			count = n
		}
		return ClientMessage{Type: TypeCommand, Command: CmdDraw, Count: count}, nil
	case "s", "summon":
		return handCard(CmdSummon)
	case "m", "set-monster":
		return handCard(CmdSetMonster)
	case "t", "set":
		return handCard(CmdSetSpellTrap)
	case "a", "activate":
		if len(fields) != 2 {
			return ClientMessage{}, errors.New("activate needs a card id")
		}
		return ClientMessage{Type: TypeCommand, Command: CmdActivate, Card: fields[1]}, nil
	}
	return ClientMessage{}, fmt.Errorf("unknown command %q", fields[0])
}

func (c *Client) readCards(msg ServerMessage) (ClientMessage, error) {
	for {
		line, err := c.readLine()
		if err != nil {
			return ClientMessage{}, err
		}
		if msg.Cancelable && (line == "c" || line == "cancel") {
			return ClientMessage{Type: TypeCancel}, nil
		}
		indices, err := parseIndices(line, len(msg.Candidates), msg.Min, msg.Max)
		if err != nil {
			fmt.Fprintln(c.out, err)
			continue
		}
		return ClientMessage{Type: TypeCards, Indices: indices}, nil
	}
}

func parseIndices(line string, count, lo, hi int) ([]int, error) {
	parts := strings.Fields(line)
	if len(parts) < lo || len(parts) > hi {
		return nil, fmt.Errorf("enter %d-%d numbers separated by spaces", lo, hi)
	}
	indices := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > count {
			return nil, fmt.Errorf("each number must be between 1 and %d", count)
		}
		indices = append(indices, n-1)
	}
	return indices, nil
}

func (c *Client) renderEvent(ev *EventView) {
	if ev == nil {
		return
	}
	fmt.Fprintf(c.out, "T%-2d %-16s| %s\n", ev.Turn, ev.Phase, ev.Details)
}

func (c *Client) renderState(sv *StateView, chainOpen bool) {
	if sv == nil {
		return
	}
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "╔══════════════════════════════════════════════════════╗")
	fmt.Fprintf(c.out, "║  OPPONENT (LP: %d)\n", sv.OpponentLP)
	fmt.Fprintln(c.out, "║──────────────────────────────────────────────────────")
	if sv.Field != nil {
		fmt.Fprintf(c.out, "║  Field:    %s\n", formatCard(*sv.Field))
	}
	fmt.Fprintf(c.out, "║  S/T:      %s\n", formatRow(sv.SpellTraps))
	fmt.Fprintf(c.out, "║  Monsters: %s\n", formatRow(sv.Monsters))
	fmt.Fprintf(c.out, "║  YOU (LP: %d)  Hand: %d  Deck: %d  Graveyard: %d\n",
		sv.LP, len(sv.Hand), sv.Deck, sv.Graveyard)
	fmt.Fprintln(c.out, "╚══════════════════════════════════════════════════════╝")
	fmt.Fprintf(c.out, "Turn %d | %s\n", sv.Turn, sv.Phase)

	if chainOpen {
		fmt.Fprintln(c.out, "Chain:")
		for _, l := range sv.Chain {
			fmt.Fprintf(c.out, "  %d. %s (%s, speed %d)\n", l.Index, l.Card, l.Effect, l.SpellSpeed)
		}
	}
	if len(sv.Hand) > 0 {
		fmt.Fprint(c.out, "\nHand: ")
		for i, cv := range sv.Hand {
			fmt.Fprintf(c.out, "[%d] %s  ", i+1, cv.Name)
		}
		fmt.Fprintln(c.out)
	}
}

func formatRow(cards []CardView) string {
	if len(cards) == 0 {
		return "[ ]"
	}
	parts := make([]string, len(cards))
	for i, cv := range cards {
		parts[i] = formatCard(cv)
	}
	return strings.Join(parts, " ")
}

func formatCard(cv CardView) string {
	var b strings.Builder
	b.WriteString("[")
	if cv.FaceDown {
		b.WriteString("SET:")
	}
	b.WriteString(cv.Name)
	if cv.Position != "" && !cv.FaceDown {
		if cv.Position == "ATK" {
			fmt.Fprintf(&b, " ATK/%d", cv.ATK)
		} else {
			fmt.Fprintf(&b, " DEF/%d", cv.DEF)
		}
	}
	for t, n := range cv.Counters {
		fmt.Fprintf(&b, " %s×%d", t, n)
	}
	fmt.Fprintf(&b, " <%s>]", cv.ID)
	return b.String()
}

func formatParams(p map[string]string) string {
	if len(p) == 0 {
		return ""
	}
	parts := make([]string, 0, len(p))
	for k, v := range p {
		parts = append(parts, k+"="+v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (c *Client) renderActions(actions []ActionView) {
	if len(actions) == 0 {
		fmt.Fprintln(c.out, "\nNo activations available. Type ? for commands.")
		return
	}
	fmt.Fprintln(c.out, "\nActions:")
	for _, a := range actions {
		fmt.Fprintf(c.out, "  %d) %s\n", a.Index+1, a.Desc)
	}
}

func (c *Client) renderCardChoice(msg ServerMessage) {
	fmt.Fprintf(c.out, "\n%s (select %d", msg.Prompt, msg.Min)
	if msg.Max != msg.Min {
		fmt.Fprintf(c.out, "-%d", msg.Max)
	}
	fmt.Fprint(c.out, ")")
	if msg.Cancelable {
		fmt.Fprint(c.out, ", c to cancel")
	}
	fmt.Fprintln(c.out)
	for _, cv := range msg.Candidates {
		if cv.ATK > 0 || cv.DEF > 0 {
			fmt.Fprintf(c.out, "  %d) %s (ATK %d / DEF %d)\n", cv.Index+1, cv.Name, cv.ATK, cv.DEF)
		} else {
			fmt.Fprintf(c.out, "  %d) %s\n", cv.Index+1, cv.Name)
		}
	}
}
