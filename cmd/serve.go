package cmd

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/bnema/inputhook/hook"
	"github.com/bnema/inputhook/internal/config"
	"github.com/bnema/inputhook/internal/logger"
	"github.com/bnema/inputhook/internal/stream"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	servePort   int
	serveWSPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Stream live input events to remote watchers",
	Long: `Hook input and publish every event to SSH watchers (see 'inputhook watch').
Only keys listed in stream.allowed_keys are accepted unless stream.allow_any
is set. With stream.websocket_port (or --ws-port) events are also served as
JSON on ws://host:port/events.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get().Stream
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}
		if cmd.Flags().Changed("ws-port") {
			cfg.WebSocketPort = serveWSPort
		}
		if len(cfg.AllowedKeys) == 0 && !cfg.AllowAny {
			logger.Warn("No SSH keys allowed: add fingerprints with 'inputhook config allow-key' or set stream.allow_any")
		}

		b, err := newBackend()
		if err != nil {
			return err
		}

		hub := stream.NewBroadcaster(channelCapacity())
		defer hub.Close()

		srv, err := stream.NewServer(stream.ServerConfig{
			Address:     net.JoinHostPort(cfg.BindAddress, strconv.Itoa(cfg.Port)),
			HostKeyPath: config.ExpandPath(cfg.HostKeyPath),
			AllowedKeys: cfg.AllowedKeys,
			AllowAny:    cfg.AllowAny,
			MaxClients:  cfg.MaxClients,
		}, hub)
		if err != nil {
			return err
		}
		srv.OnConnect = func(addr, fingerprint string) {
			logger.Infof("Watcher connected addr=%s key=%s", addr, fingerprint)
		}
		srv.OnDisconnect = func(addr string) {
			logger.Infof("Watcher disconnected addr=%s", addr)
		}

		h := hook.New(b, hookOptions()...)
		if err := h.RunAsync(hub); err != nil {
			return fmt.Errorf("failed to start hook: %w", err)
		}
		defer h.Close()

		ctx, cancel := signalContext(0)
		defer cancel()
		g, ctx := errgroup.WithContext(ctx)

		g.Go(srv.ListenAndServe)
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		if cfg.WebSocketPort > 0 {
			ws := stream.NewWebSocketHub(hub)
			addr := net.JoinHostPort(cfg.BindAddress, strconv.Itoa(cfg.WebSocketPort))
			g.Go(func() error { return stream.ServeWebSocket(ctx, addr, ws) })
		}
		g.Go(func() error {
			select {
			case <-h.Done():
				if err := h.Err(); err != nil {
					return fmt.Errorf("hook stopped: %w", err)
				}
				return context.Canceled
			case <-ctx.Done():
				return nil
			}
		})

		if err := g.Wait(); err != nil && err != context.Canceled {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "SSH port (default stream.port)")
	serveCmd.Flags().IntVar(&serveWSPort, "ws-port", 0, "WebSocket port, 0 disables (default stream.websocket_port)")
	rootCmd.AddCommand(serveCmd)
}
