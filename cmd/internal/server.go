package internal

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/olimci/kotoba/pkg/build"
	"github.com/olimci/kotoba/pkg/sitemap"
)

type Server struct {
	server *http.Server
	addr   string
	result atomic.Pointer[build.Result]
}

type ServerConfig struct {
	DistDir string
	Port    int
}

func NewServer(config ServerConfig) *Server {
	s := &Server{
		addr: fmt.Sprintf("127.0.0.1:%d", config.Port),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /sitemap.xml", s.handleSitemap)
	mux.HandleFunc("GET /robots.txt", s.handleRobots)
	mux.Handle("/", http.FileServer(http.Dir(config.DistDir)))

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// SetResult publishes the result of a successful build.
func (s *Server) SetResult(res *build.Result) {
	s.result.Store(res)
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	res := s.result.Load()
	if res == nil {
		http.Error(w, "no successful build yet", http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	if err := sitemap.Write(&buf, res.Sitemap); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	res := s.result.Load()
	if res == nil {
		http.Error(w, "no successful build yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_ = sitemap.WriteRobots(w, res.SiteURL, "sitemap.xml")
}

func (s *Server) Start(ctx context.Context) (string, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	go func() {
		_ = s.server.Serve(ln)
	}()

	go func() {
		<-ctx.Done()
		_ = s.server.Close()
	}()

	baseURL := "http://" + s.addr + "/"
	return baseURL, nil
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
