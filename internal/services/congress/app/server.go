package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilus66/Cnol-2025-2/internal/platform/config"
	"github.com/ilus66/Cnol-2025-2/internal/services/congress/badge"
	"github.com/ilus66/Cnol-2025-2/internal/services/congress/directory"
	"github.com/ilus66/Cnol-2025-2/internal/services/congress/gate"
	"github.com/ilus66/Cnol-2025-2/internal/services/congress/registration"
	"github.com/ilus66/Cnol-2025-2/internal/services/congress/session"
	congresssqlite "github.com/ilus66/Cnol-2025-2/internal/services/congress/storage/sqlite"
)

// badgeEnv configures the external badge issuance service.
type badgeEnv struct {
	URL    string `env:"CNOL_BADGE_URL"`
	Secret string `env:"CNOL_BADGE_SECRET"`
}

// Server hosts the congress service.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *congresssqlite.Store
}

// New creates a configured congress server listening on the provided address.
func New(httpAddr, dbPath string) (*Server, error) {
	listener, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", httpAddr, err)
	}
	store, err := openStore(dbPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	codec, err := session.NewCodecFromEnv(nil)
	if err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, err
	}

	issuer, err := badgeIssuerFromEnv()
	if err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, err
	}

	h := newHandler(
		registration.New(store, store, issuer),
		directory.New(store, store),
		gate.New(codec, store, store),
	)

	return &Server{
		listener:   listener,
		httpServer: &http.Server{Handler: h.routes()},
		store:      store,
	}, nil
}

// Addr returns the listener address for the congress server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a congress server until the context ends.
func Run(ctx context.Context, httpAddr, dbPath string) error {
	congressServer, err := New(httpAddr, dbPath)
	if err != nil {
		return err
	}
	return congressServer.Serve(ctx)
}

// Serve starts the congress server and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.closeStore()

	log.Printf("congress server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
		return handleErr(<-serveErr)
	case err := <-serveErr:
		return handleErr(err)
	}
}

func openStore(dbPath string) (*congresssqlite.Store, error) {
	path := strings.TrimSpace(dbPath)
	if path == "" {
		path = filepath.Join("data", "congress.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	store, err := congresssqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open congress sqlite store: %w", err)
	}
	return store, nil
}

// badgeIssuerFromEnv selects the remote issuer when a badge service URL is
// configured, and the in-process issuer otherwise.
func badgeIssuerFromEnv() (badge.Issuer, error) {
	var cfg badgeEnv
	if err := config.ParseEnv(&cfg); err != nil {
		return nil, fmt.Errorf("parse badge env: %w", err)
	}
	if url := strings.TrimSpace(cfg.URL); url != "" {
		return badge.NewHTTPIssuer(url, strings.TrimSpace(cfg.Secret), nil), nil
	}
	return badge.LocalIssuer{}, nil
}

func (s *Server) closeStore() {
	if s == nil {
		return
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close congress store: %v", err)
		}
	}
}
