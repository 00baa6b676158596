// Package web serves the HTTP API and the websocket duel endpoint.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/peterkuimelis/chainduel/internal/app"
	"github.com/peterkuimelis/chainduel/internal/card"
	"github.com/peterkuimelis/chainduel/internal/log"
	duelnet "github.com/peterkuimelis/chainduel/internal/net"
)

// CardInfo is the JSON representation of a card for the /api/cards endpoint.
type CardInfo struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Text     string `json:"text,omitempty"`
	CardType string `json:"cardType"`
	Subtype  string `json:"subtype,omitempty"`
	Level    int    `json:"level,omitempty"`
	ATK      int    `json:"atk,omitempty"`
	DEF      int    `json:"def,omitempty"`
}

// DeckInfo is the JSON representation of a deck for the /api/decks endpoint.
type DeckInfo struct {
	Number int      `json:"number"`
	Name   string   `json:"name"`
	Size   int      `json:"size"`
	Cards  []string `json:"cards"`
}

// Server is the duel web server.
type Server struct {
	app     *app.App
	origins []string
	logger  *zap.Logger
	mux     *http.ServeMux
}

// NewServer creates a server for a. Allowed origins come from its config.
func NewServer(a *app.App, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		app:     a,
		origins: a.Config().AllowedOrigins,
		logger:  logger,
		mux:     http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /api/heartbeat", s.handleHeartbeat)
	s.mux.HandleFunc("GET /api/cards", s.handleCards)
	s.mux.HandleFunc("GET /api/decks", s.handleDecks)
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// Handler returns the routes wrapped in the CORS policy.
func (s *Server) Handler() http.Handler {
	return s.cors(s.mux)
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	cfg := s.app.Config()
	writeJSON(w, map[string]string{"message": "alive", "app": cfg.AppName, "version": cfg.AppVersion})
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	_, cat, err := app.NewEnv(s.app.Config())
	if err != nil {
		s.logger.Error("build card pool", zap.Error(err))
		http.Error(w, "could not load cards", http.StatusInternalServerError)
		return
	}
	var cards []CardInfo
	for _, d := range cat.All() {
		ci := CardInfo{
			ID:       d.ID,
			Name:     d.Name,
			Text:     d.Text,
			CardType: d.Kind.String(),
			Subtype:  d.Subtype,
		}
		if d.Kind == card.KindMonster {
			ci.Level, ci.ATK, ci.DEF = d.Level, d.ATK, d.DEF
		}
		cards = append(cards, ci)
	}
	writeJSON(w, cards)
}

func (s *Server) handleDecks(w http.ResponseWriter, r *http.Request) {
	_, cat, err := app.NewEnv(s.app.Config())
	if err != nil {
		s.logger.Error("build card pool", zap.Error(err))
		http.Error(w, "could not load cards", http.StatusInternalServerError)
		return
	}
	decks := []DeckInfo{}
	for i, d := range s.app.Decks().Decks {
		di := DeckInfo{Number: i + 1, Name: d.Name}
		// Unique card names for display
		seen := make(map[string]bool)
		for _, c := range append(d.Main, d.Extra...) {
			n := c.Count
			if n == 0 {
				n = 1
			}
			di.Size += n
			name := c.Name
			if name == "" {
				name = card.Name(cat, c.ID)
			}
			if !seen[name] {
				di.Cards = append(di.Cards, name)
				seen[name] = true
			}
		}
		decks = append(decks, di)
	}
	writeJSON(w, decks)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.origins})
	if err != nil {
		s.logger.Warn("websocket accept", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	var join duelnet.ClientMessage
	if err := wsjson.Read(ctx, conn, &join); err != nil || join.Type != duelnet.TypeJoin {
		conn.Close(websocket.StatusPolicyViolation, "expected join message")
		return
	}
	deckNumber := join.DeckNumber
	if deckNumber == 0 {
		deckNumber = duelnet.DefaultDeck
	}

	journal := log.NewMemoryLogger()
	sess, err := s.app.Start(deckNumber, journal)
	if err != nil {
		_ = wsjson.Write(ctx, conn, duelnet.ServerMessage{Type: duelnet.TypeError, Result: err.Error()})
		conn.Close(websocket.StatusPolicyViolation, "could not start duel")
		return
	}
	s.logger.Info("websocket duel", zap.String("session", sess.ID()), zap.Int("deck", deckNumber))

	h := duelnet.NewHandler(sess, journal, s.logger)
	if err := s.write(ctx, conn, h.Greeting()); err != nil {
		return
	}
	for {
		var msg duelnet.ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				s.logger.Debug("websocket read", zap.Error(err))
			}
			return
		}
		if err := s.write(ctx, conn, h.Handle(ctx, msg)); err != nil {
			return
		}
	}
}

func (s *Server) write(ctx context.Context, conn *websocket.Conn, msgs []duelnet.ServerMessage) error {
	for _, m := range msgs {
		if err := wsjson.Write(ctx, conn, m); err != nil {
			s.logger.Debug("websocket write", zap.Error(err))
			return err
		}
	}
	return nil
}

// cors allows the configured origins. Patterns match the origin host, the
// same way the websocket endpoint checks them.
func (s *Server) cors(next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowOriginFunc: s.allowed,
		AllowedMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:  []string{"Content-Type", "Accept", "Cache-Control", "Origin"},
		ExposedHeaders:  []string{"Content-Disposition"},
	}).Handler(next)
}

func (s *Server) allowed(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	for _, p := range s.origins {
		if ok, _ := path.Match(p, u.Host); ok {
			return true
		}
	}
	return false
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("web server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
