package stream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/bnema/inputhook/internal/logger"
	"github.com/bnema/inputhook/internal/wire"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	gossh "golang.org/x/crypto/ssh"
)

// Banner is the first line a watcher receives before the event frames.
const Banner = "inputhook stream v1"

const (
	flushDelay = 5 * time.Millisecond
	flushSize  = 4096
)

// ServerConfig configures the SSH feed.
type ServerConfig struct {
	Address     string
	HostKeyPath string
	// AllowedKeys holds SHA256 fingerprints ("SHA256:...").
	AllowedKeys []string
	// AllowAny accepts every key. Without it and with an empty allow
	// list nobody gets in.
	AllowAny   bool
	MaxClients int
}

// Server streams every published event to authenticated SSH sessions as
// length-prefixed wire frames.
type Server struct {
	cfg     ServerConfig
	hub     *Broadcaster
	allowed map[string]struct{}
	srv     *ssh.Server

	mu       sync.Mutex
	sessions map[string]ssh.Session

	// OnConnect and OnDisconnect are optional session callbacks.
	OnConnect    func(addr, fingerprint string)
	OnDisconnect func(addr string)
}

func NewServer(cfg ServerConfig, hub *Broadcaster) (*Server, error) {
	s := &Server{
		cfg:      cfg,
		hub:      hub,
		allowed:  make(map[string]struct{}, len(cfg.AllowedKeys)),
		sessions: make(map[string]ssh.Session),
	}
	for _, fp := range cfg.AllowedKeys {
		s.allowed[strings.TrimSpace(fp)] = struct{}{}
	}

	srv, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithPublicKeyAuth(s.publicKeyAuth),
		wish.WithMiddleware(
			s.streamMiddleware(),
			s.loggingMiddleware(),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH server: %w", err)
	}
	s.srv = srv
	return s, nil
}

// ListenAndServe blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	logger.Infof("SSH stream listening on %s", s.cfg.Address)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return err
	}
	return nil
}

// Serve accepts sessions on l until the server is shut down.
func (s *Server) Serve(l net.Listener) error {
	if err := s.srv.Serve(l); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting sessions and closes the active ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for _, sess := range s.sessions {
		_ = sess.Close()
	}
	s.mu.Unlock()
	return s.srv.Shutdown(ctx)
}

// Sessions returns the number of connected watchers.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) publicKeyAuth(ctx ssh.Context, key ssh.PublicKey) bool {
	fingerprint := gossh.FingerprintSHA256(key)
	addr := ctx.RemoteAddr().String()

	if _, ok := s.allowed[fingerprint]; ok {
		logger.Debugf("SSH key allowed key=%s addr=%s", fingerprint, addr)
		return true
	}
	if s.cfg.AllowAny {
		logger.Debugf("Accepting SSH key (allow_any) key=%s addr=%s", fingerprint, addr)
		return true
	}
	logger.Warnf("SSH key denied key=%s addr=%s", fingerprint, addr)
	return false
}

func (s *Server) loggingMiddleware() wish.Middleware {
	return func(h ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			logger.Debugf("SSH session started: user=%s addr=%s", sess.User(), sess.RemoteAddr())
			h(sess)
			logger.Debugf("SSH session ended: addr=%s", sess.RemoteAddr())
		}
	}
}

func (s *Server) streamMiddleware() wish.Middleware {
	return func(h ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			id := sess.Context().SessionID()
			addr := sess.RemoteAddr().String()

			s.mu.Lock()
			if s.cfg.MaxClients > 0 && len(s.sessions) >= s.cfg.MaxClients {
				s.mu.Unlock()
				logger.Infof("Rejecting watcher - max clients reached addr=%s", addr)
				fmt.Fprintln(sess.Stderr(), "server already has the maximum number of watchers")
				_ = sess.Exit(1)
				return
			}
			s.sessions[id] = sess
			s.mu.Unlock()

			var fingerprint string
			if sess.PublicKey() != nil {
				fingerprint = gossh.FingerprintSHA256(sess.PublicKey())
			}
			if s.OnConnect != nil {
				s.OnConnect(addr, fingerprint)
			}

			defer func() {
				s.mu.Lock()
				delete(s.sessions, id)
				s.mu.Unlock()
				if s.OnDisconnect != nil {
					s.OnDisconnect(addr)
				}
			}()

			if err := s.stream(sess); err != nil {
				logger.Debugf("Stream to %s ended: %v", addr, err)
				_ = sess.Exit(1)
			} else {
				_ = sess.Exit(0)
			}
			h(sess)
		}
	}
}

func (s *Server) stream(sess ssh.Session) error {
	sub := s.hub.Subscribe()
	defer sub.Cancel()

	if _, err := fmt.Fprintln(sess, Banner); err != nil {
		return err
	}

	bw := wire.NewBufferedWriter(sess, flushDelay, flushSize)
	defer bw.Close()
	enc := wire.NewEncoder(bw)

	for {
		select {
		case <-sess.Context().Done():
			return nil
		case ev, ok := <-sub.C:
			if !ok {
				return nil
			}
			if err := enc.Encode(ev); err != nil {
				return err
			}
		}
	}
}
