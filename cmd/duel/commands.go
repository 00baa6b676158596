package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	duelmcp "github.com/peterkuimelis/chainduel/internal/mcp"
	duelnet "github.com/peterkuimelis/chainduel/internal/net"
	"github.com/peterkuimelis/chainduel/internal/web"
)

var (
	hostPort string
	hostPlay bool
	hostDeck int

	joinAddr string
	joinDeck int

	webAddr string
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Start a duel server; each connection plays its own duel",
	Long: `Listens for players on TCP. Every joiner gets an independent duel with the
deck it asks for. With --play the host also plays in this terminal.`,
	RunE: runHost,
}

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Connect to a duel server and play in this terminal",
	RunE:  runJoin,
}

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve the HTTP API and the websocket duel endpoint",
	RunE:  runWeb,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve duel tools over MCP on stdio",
	RunE:  runMCP,
}

func init() {
	hostCmd.Flags().StringVar(&hostPort, "port", "9000", "TCP port to listen on")
	hostCmd.Flags().BoolVar(&hostPlay, "play", false, "also play a duel in this terminal")
	hostCmd.Flags().IntVar(&hostDeck, "deck", 1, "deck number for --play (from the decks file)")

	joinCmd.Flags().StringVar(&joinAddr, "addr", "localhost:9000", "server address to connect to")
	joinCmd.Flags().IntVar(&joinDeck, "deck", 1, "deck number to use (from the decks file)")

	webCmd.Flags().StringVar(&webAddr, "addr", ":8080", "HTTP listen address")
}

func runHost(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	srv := &duelnet.Server{App: a, Logger: logger}

	g, ctx := errgroup.WithContext(cmd.Context())
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g.Go(func() error { return srv.ListenAndServe(ctx, ":"+hostPort) })
	if hostPlay {
		local, remote := net.Pipe()
		g.Go(func() error { return srv.ServeConn(ctx, remote) })
		g.Go(func() error {
			defer cancel()
			defer local.Close()
			err := duelnet.NewClient(local, os.Stdin, os.Stdout).Join(hostDeck)
			if errors.Is(err, duelnet.ErrQuit) {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}

func runJoin(cmd *cobra.Command, args []string) error {
	err := duelnet.Connect(cmd.Context(), joinAddr, joinDeck, os.Stdin, os.Stdout)
	if errors.Is(err, duelnet.ErrQuit) {
		return nil
	}
	return err
}

func runWeb(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	logger.Info("duel web API", zap.String("addr", webAddr), zap.Strings("origins", cfg.AllowedOrigins))
	return web.NewServer(a, logger).ListenAndServe(cmd.Context(), webAddr)
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	s := duelmcp.NewServer(duelmcp.NewManager(a, logger), cfg.AppName, cfg.AppVersion)
	if err := server.ServeStdio(s); err != nil {
		return fmt.Errorf("serve stdio: %w", err)
	}
	return nil
}
