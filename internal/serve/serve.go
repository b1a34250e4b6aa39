// Package serve is the development preview server: it renders a template per
// request and pushes a reload message over a websocket whenever the watcher
// reports a template change, so browsers refresh on save.
package serve

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/loomkit/loom/internal/logging"
	"github.com/loomkit/loom/internal/manager"
	"github.com/loomkit/loom/internal/markup"
)

const reloadScript = `<script>
(function () {
	var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/__loom/reload");
	ws.onmessage = function () { location.reload(); };
})();
</script>`

// Server renders templates over HTTP with live reload.
type Server struct {
	manager *manager.Manager
	log     logging.Logger
	changes <-chan string

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// New creates a preview server. changes feeds reload pushes; nil disables
// them.
func New(mgr *manager.Manager, changes <-chan string, log logging.Logger) *Server {
	return &Server{
		manager: mgr,
		log:     log.WithComponent("serve"),
		changes: changes,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Run serves on addr until the context is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/__loom/reload", s.handleReload)
	mux.HandleFunc("/", s.handleRender)

	server := &http.Server{Addr: addr, Handler: mux}

	if s.changes != nil {
		go s.broadcastLoop(ctx)
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.log.Info("preview server listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/")
	if name == "" {
		name = "index.html"
	}

	vars := make(map[string]interface{}, len(r.URL.Query()))
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			vars[key] = values[0]
		}
	}

	output, err := s.manager.ProcessToString(name, vars)
	if err != nil {
		s.log.Error("render failed", "template", name, "error", err)
		http.Error(w, fmt.Sprintf("rendering %q: %v", name, err), http.StatusInternalServerError)
		return
	}

	if s.manager.Mode() == markup.ModeHTML {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		output = injectReloadScript(output)
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.Write([]byte(output))
}

// injectReloadScript places the reload script before </body> when present,
// else appends it.
func injectReloadScript(output string) string {
	if i := strings.LastIndex(strings.ToLower(output), "</body>"); i >= 0 {
		return output[:i] + reloadScript + output[i:]
	}
	return output + reloadScript
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Warn("websocket accept failed", "error", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	// hold the connection open until the client goes away
	ctx := r.Context()
	_, _, err = conn.Read(ctx)
	_ = err

	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close(websocket.StatusNormalClosure, "")
}

func (s *Server) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case name, ok := <-s.changes:
			if !ok {
				return
			}
			s.broadcast(ctx, name)
		}
	}
}

func (s *Server) broadcast(ctx context.Context, name string) {
	s.mu.Lock()
	clients := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		clients = append(clients, conn)
	}
	s.mu.Unlock()

	s.log.Debug("broadcasting reload", "template", name, "clients", len(clients))
	for _, conn := range clients {
		writeCtx, cancel := context.WithTimeout(ctx, time.Second)
		conn.Write(writeCtx, websocket.MessageText, []byte(name))
		cancel()
	}
}
