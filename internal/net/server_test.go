package net

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func readUntil(t *testing.T, dec *json.Decoder, typ string) ServerMessage {
	t.Helper()
	for {
		var m ServerMessage
		require.NoError(t, dec.Decode(&m))
		if m.Type == typ {
			return m
		}
	}
}

func TestServeOverTCP(t *testing.T) {
	defer goleak.VerifyNone(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := &Server{App: newTestApp(t), Logger: zaptest.NewLogger(t)}
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	enc, dec := json.NewEncoder(conn), json.NewDecoder(conn)

	require.NoError(t, enc.Encode(ClientMessage{Type: TypeJoin, DeckNumber: 1}))
	m := readUntil(t, dec, TypeState)
	assert.Equal(t, "Draw Phase", m.State.Phase)

	require.NoError(t, enc.Encode(ClientMessage{Type: TypeCommand, Command: CmdNextPhase}))
	m = readUntil(t, dec, TypeState)
	assert.Equal(t, "Standby Phase", m.State.Phase)

	// A second player gets an independent duel.
	conn2, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, json.NewEncoder(conn2).Encode(ClientMessage{Type: TypeJoin}))
	m = readUntil(t, json.NewDecoder(conn2), TypeState)
	assert.Equal(t, "Draw Phase", m.State.Phase)

	conn.Close()
	cancel()
	require.NoError(t, <-done)
	conn2.Close()
}

func TestServeConnRejectsBadJoin(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := &Server{App: newTestApp(t)}
	client, server := net.Pipe()
	done := make(chan error, 1)
	go func() { done <- srv.ServeConn(context.Background(), server) }()

	dec := json.NewDecoder(client)
	require.NoError(t, json.NewEncoder(client).Encode(ClientMessage{Type: TypePass}))
	m := readUntil(t, dec, TypeError)
	assert.Contains(t, m.Result, "join")
	assert.ErrorIs(t, <-done, ErrBadMessage)
	client.Close()
}

func TestServeConnUnknownDeck(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := &Server{App: newTestApp(t)}
	client, server := net.Pipe()
	done := make(chan error, 1)
	go func() { done <- srv.ServeConn(context.Background(), server) }()

	require.NoError(t, json.NewEncoder(client).Encode(ClientMessage{Type: TypeJoin, DeckNumber: 7}))
	m := readUntil(t, json.NewDecoder(client), TypeError)
	assert.Contains(t, m.Result, "deck not found")
	assert.Error(t, <-done)
	client.Close()
}

func TestREPLPlaysOverPipe(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := &Server{App: newTestApp(t)}
	clientConn, serverConn := net.Pipe()
	done := make(chan error, 1)
	go func() { done <- srv.ServeConn(context.Background(), serverConn) }()

	in := strings.NewReader("n\nn\nbogus\n1\nq\n")
	var out bytes.Buffer
	err := NewClient(clientConn, in, &out).Join(1)
	assert.ErrorIs(t, err, ErrQuit)
	clientConn.Close()
	require.NoError(t, <-done)

	text := out.String()
	assert.Contains(t, text, "Main Phase 1")
	assert.Contains(t, text, "unknown command \"bogus\"")
	assert.Contains(t, text, "activates Pot of Greed")
	assert.Contains(t, text, "Hand: 6")
}
