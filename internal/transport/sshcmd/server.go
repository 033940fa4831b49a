package sshcmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"golang.org/x/term"

	"github.com/vovakirdan/turn-arena/internal/match"
	"github.com/vovakirdan/turn-arena/internal/multiplayer"
)

// notificationBuffer is the per-session queue of pushed events.
const notificationBuffer = 16

// ServerConfig holds configuration for the SSH server.
type ServerConfig struct {
	// Address is the host:port to listen on (e.g., ":2222").
	Address string

	// HostKeyPath is the path to the host key file. It is generated on
	// first start when missing.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration
}

// SessionRegistrar attaches sessions to the notification hub.
type SessionRegistrar interface {
	Register(user match.UserID, session multiplayer.SessionHandle)
	Unregister(user match.UserID, id multiplayer.SessionID)
}

// Server wraps a Wish SSH server around the command interpreter.
type Server struct {
	config      ServerConfig
	server      *ssh.Server
	interpreter *Interpreter
	hub         SessionRegistrar
	logger      *log.Logger
}

// NewServer creates an SSH server. Sessions authenticate as the user id
// given as the SSH username.
func NewServer(cfg ServerConfig, service MatchService, hub SessionRegistrar, logger *log.Logger) (*Server, error) {
	srv := &Server{
		config:      cfg,
		interpreter: NewInterpreter(service),
		hub:         hub,
		logger:      logger,
	}

	if dir := filepath.Dir(cfg.HostKeyPath); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("cannot create host key directory: %w", err)
		}
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			srv.commandMiddleware,
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}
	srv.server = server
	return srv, nil
}

// commandMiddleware runs the session: a single command when one was given
// on the ssh command line, otherwise a read-eval loop until quit or EOF.
func (s *Server) commandMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		defer next(sess)

		user, err := match.ParseUserID(sess.User())
		if err != nil {
			wish.Errorln(sess, "log in with your numeric user id, e.g. ssh 42@host")
			_ = sess.Exit(1)
			return
		}

		ctx := sess.Context()
		if args := sess.Command(); len(args) > 0 {
			out, _, err := s.interpreter.Execute(ctx, user, strings.Join(args, " "))
			if err != nil {
				wish.Errorln(sess, RenderError(err))
				_ = sess.Exit(1)
				return
			}
			wish.Println(sess, out)
			return
		}

		s.interactive(ctx, sess, user)
	}
}

func (s *Server) interactive(ctx context.Context, sess ssh.Session, user match.UserID) {
	console := newConsole(sess)

	notes := multiplayer.NewChannelSession(multiplayer.NewSessionID(), notificationBuffer)
	s.hub.Register(user, notes)
	defer func() {
		s.hub.Unregister(user, notes.ID())
		notes.Close()
	}()

	go func() {
		var seen uint64
		for {
			select {
			case n := <-notes.Events():
				if dropped := notes.Dropped(); dropped > seen {
					console.println(RenderDropped(dropped - seen))
					seen = dropped
				}
				console.println(RenderNotification(n))
			case <-notes.Done():
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	console.println(titleStyle.Render(fmt.Sprintf("welcome, user %s; type help for commands", user)))
	for {
		line, err := console.readLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Debug("read failed", "user", user, "error", err)
			}
			return
		}
		out, quit, err := s.interpreter.Execute(ctx, user, line)
		switch {
		case err != nil:
			console.println(RenderError(err))
		case out != "":
			console.println(out)
		}
		if quit {
			return
		}
	}
}

// console serializes output between the command loop and pushed
// notifications. Interactive terminals get line editing from x/term.
type console struct {
	mu       sync.Mutex
	out      io.Writer
	terminal *term.Terminal
	scanner  *bufio.Scanner
}

func newConsole(sess ssh.Session) *console {
	if _, _, isPty := sess.Pty(); isPty {
		t := term.NewTerminal(sess, "> ")
		return &console{out: t, terminal: t}
	}
	return &console{out: sess, scanner: bufio.NewScanner(sess)}
}

func (c *console) readLine() (string, error) {
	if c.terminal != nil {
		return c.terminal.ReadLine()
	}
	if c.scanner.Scan() {
		return c.scanner.Text(), nil
	}
	if err := c.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (c *console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.out, s+"\n")
}

// loggingMiddleware logs SSH session events.
func (s *Server) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		s.logger.Info("session started",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
		next(sess)
		s.logger.Info("session ended",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
	}
}

// ListenAndServe blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *Server) Addr() string {
	return s.config.Address
}
