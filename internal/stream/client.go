package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/internal/logger"
	"github.com/bnema/inputhook/internal/wire"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// ErrRejected means the server closed the session before the banner,
// typically because it is full.
var ErrRejected = errors.New("stream rejected by server")

// ClientConfig configures Watch.
type ClientConfig struct {
	Addr string
	User string
	// KeyPath is the private key. Empty tries ~/.ssh/id_ed25519 then
	// ~/.ssh/id_rsa.
	KeyPath string
	// KnownHosts is checked unless Insecure is set. Empty means
	// ~/.ssh/known_hosts.
	KnownHosts string
	Insecure   bool
	Timeout    time.Duration
}

// DefaultKeyPath returns the first default private key that exists.
func DefaultKeyPath() string {
	homeDir, _ := os.UserHomeDir()
	for _, name := range []string{"id_ed25519", "id_rsa"} {
		path := filepath.Join(homeDir, ".ssh", name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func (c ClientConfig) sshConfig() (*ssh.ClientConfig, error) {
	keyPath := c.KeyPath
	if keyPath == "" {
		keyPath = DefaultKeyPath()
	}
	if keyPath == "" {
		return nil, errors.New("no private key found in ~/.ssh")
	}

	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if !c.Insecure {
		path := c.KnownHosts
		if path == "" {
			homeDir, _ := os.UserHomeDir()
			path = filepath.Join(homeDir, ".ssh", "known_hosts")
		}
		hostKeyCallback, err = knownhosts.New(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load known hosts: %w", err)
		}
	}

	user := c.User
	if user == "" {
		user = "inputhook"
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}, nil
}

// Watch connects to an SSH stream and calls fn for each received event
// until ctx is done, the server ends the stream, or fn returns an error.
// A clean end of stream returns nil.
func Watch(ctx context.Context, cfg ClientConfig, fn func(event.Event) error) error {
	config, err := cfg.sshConfig()
	if err != nil {
		return err
	}

	dialer := net.Dialer{Timeout: config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SSH server: %w", err)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, cfg.Addr, config)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to SSH server: %w", err)
	}
	client := ssh.NewClient(c, chans, reqs)
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create SSH session: %w", err)
	}
	defer session.Close()

	stdout, err := session.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	if err := session.Shell(); err != nil {
		return fmt.Errorf("failed to start SSH session: %w", err)
	}

	stop := context.AfterFunc(ctx, func() { client.Close() })
	defer stop()

	r := bufio.NewReader(stdout)
	if err := readBanner(r); err != nil {
		return err
	}
	logger.Debugf("Watching %s", cfg.Addr)

	dec := wire.NewDecoder(r)
	for {
		ev, err := dec.Decode()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
}

func readBanner(r *bufio.Reader) error {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ErrRejected
		}
		return fmt.Errorf("failed to read banner: %w", err)
	}
	if strings.TrimSpace(line) != Banner {
		return fmt.Errorf("unexpected banner %q", strings.TrimSpace(line))
	}
	return nil
}
