package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"tableflip.dev/marklet/pkg/app"
)

// Transport is how MCP clients reach the server.
type Transport string

const (
	TransportHTTP  Transport = "http"
	TransportStdio Transport = "stdio"
)

const (
	// DefaultAddr keeps the MCP endpoint on loopback, next to the daemon.
	DefaultAddr = "127.0.0.1:7392"
	DefaultPath = "/mcp"
)

// Runner exposes the bookmarklet tools and resources to MCP clients.
type Runner struct {
	Service   *app.Service
	Version   string
	Transport Transport
	// Addr and Path apply to the HTTP transport.
	Addr string
	Path string
	Log  *zap.Logger

	OnListening func(net.Addr)
	// Stdin and Stdout default to the process streams.
	Stdin  io.Reader
	Stdout io.Writer
}

// NewServer builds the MCP server around svc.
func NewServer(svc *app.Service, version string) *server.MCPServer {
	if version == "" {
		version = "dev"
	}
	srv := server.NewMCPServer("marklet", version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions("List, create and run bookmarklets in the active browser tab, and trigger shortcut commands."),
		server.WithResourceRecovery(),
		server.WithRecovery(),
	)
	s := NewService(svc)
	registerResources(srv, s)
	registerTools(srv, s)
	return srv
}

// Handler mounts the streamable HTTP endpoint at path with a health check.
func Handler(srv *server.MCPServer, path string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok\n")
	})
	r.Handle(endpoint(path), server.NewStreamableHTTPServer(srv))
	return r
}

// Do serves until ctx is done or the client disconnects.
func (r Runner) Do(ctx context.Context) error {
	if r.Service == nil {
		return errors.New("mcp: no service configured")
	}
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	srv := NewServer(r.Service, r.Version)

	switch r.Transport {
	case "", TransportHTTP:
		return r.serveHTTP(ctx, srv, log)
	case TransportStdio:
		in, out := r.Stdin, r.Stdout
		if in == nil {
			in = os.Stdin
		}
		if out == nil {
			out = os.Stdout
		}
		log.Debug("serving MCP over stdio")
		return server.NewStdioServer(srv).Listen(ctx, in, out)
	default:
		return fmt.Errorf("mcp: unknown transport %q (expected http or stdio)", r.Transport)
	}
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer, log *zap.Logger) error {
	addr := r.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if r.OnListening != nil {
		r.OnListening(ln.Addr())
	}
	log.Info("serving MCP", zap.String("addr", ln.Addr().String()), zap.String("path", endpoint(r.Path)))

	httpSrv := &http.Server{Handler: Handler(srv, r.Path)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	if err := httpSrv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func endpoint(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
