package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/peterkuimelis/chainduel/internal/app"
	"github.com/peterkuimelis/chainduel/internal/log"
)

// DefaultDeck is used when a join message names no deck.
const DefaultDeck = 1

// Server hosts one duel per TCP connection.
type Server struct {
	App    *app.App
	Logger *zap.Logger
}

// Serve accepts connections on ln until ctx is canceled or Accept fails.
// It returns after every connection has finished.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		ln.Close()
		return nil
	})
	g.Go(func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("accept: %w", err)
			}
			g.Go(func() error {
				if err := s.ServeConn(ctx, conn); err != nil {
					s.logger().Warn("connection ended", zap.Stringer("remote", conn.RemoteAddr()), zap.Error(err))
				}
				return nil
			})
		}
	})
	return g.Wait()
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.logger().Info("waiting for players", zap.Stringer("addr", ln.Addr()))
	return s.Serve(ctx, ln)
}

// ServeConn runs one duel over conn: a join message, then request/reply
// until the client disconnects. conn is closed on return.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) error {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	var join ClientMessage
	if err := dec.Decode(&join); err != nil {
		return fmt.Errorf("read join message: %w", err)
	}
	if join.Type != TypeJoin {
		_ = enc.Encode(ServerMessage{Type: TypeError, Result: "expected join message"})
		return fmt.Errorf("%w: expected join, got %q", ErrBadMessage, join.Type)
	}
	deckNumber := join.DeckNumber
	if deckNumber == 0 {
		deckNumber = DefaultDeck
	}

	journal := log.NewMemoryLogger()
	sess, err := s.App.Start(deckNumber, journal)
	if err != nil {
		_ = enc.Encode(ServerMessage{Type: TypeError, Result: err.Error()})
		return fmt.Errorf("start duel: %w", err)
	}
	s.logger().Info("player joined",
		zap.Stringer("remote", conn.RemoteAddr()),
		zap.Int("deck", deckNumber),
		zap.String("session", sess.ID()),
	)

	h := NewHandler(sess, journal, s.logger())
	if err := send(enc, h.Greeting()); err != nil {
		return err
	}
	for {
		var msg ClientMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}
		if err := send(enc, h.Handle(ctx, msg)); err != nil {
			return err
		}
	}
}

func send(enc *json.Encoder, msgs []ServerMessage) error {
	for _, m := range msgs {
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("write message: %w", err)
		}
	}
	return nil
}

func (s *Server) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
