package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/isomerc/nicotine/internal/cycle"
	"github.com/isomerc/nicotine/internal/logger"
	"github.com/isomerc/nicotine/internal/window"
)

// Version is reported by the health endpoint
var Version = "0.1.0"

const (
	writeWait       = 5 * time.Second
	shutdownTimeout = 3 * time.Second
	streamBuffer    = 8
)

// Cycler is the part of the cycle coordinator the overlay drives
type Cycler interface {
	Snapshot() cycle.Snapshot
	Forward() error
	Backward() error
	SwitchTo(n int) error
	ActivateWindow(id window.ID) error
	OnChange(fn func(cycle.Snapshot))
}

// Mover repositions a single window
type Mover interface {
	MoveWindow(id window.ID, x, y int) error
}

// Server represents the overlay HTTP API server
type Server struct {
	router   *mux.Router
	cycler   Cycler
	mover    Mover
	upgrader websocket.Upgrader

	mu          sync.Mutex
	subscribers map[chan cycle.Snapshot]struct{}
}

// NewServer creates a new API server. mover may be nil, in which case the
// move endpoint reports the capability as unavailable.
func NewServer(cycler Cycler, mover Mover) *Server {
	s := &Server{
		router: mux.NewRouter(),
		cycler: cycler,
		mover:  mover,
		upgrader: websocket.Upgrader{
			// The server only listens on loopback
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		subscribers: make(map[chan cycle.Snapshot]struct{}),
	}

	cycler.OnChange(s.broadcast)
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/windows", s.handleGetWindows).Methods("GET")
	api.HandleFunc("/windows/{id:[0-9]+}/activate", s.handleActivateWindow).Methods("POST")
	api.HandleFunc("/windows/{id:[0-9]+}/move", s.handleMoveWindow).Methods("POST")
	api.HandleFunc("/cycle/forward", s.handleForward).Methods("POST")
	api.HandleFunc("/cycle/backward", s.handleBackward).Methods("POST")
	api.HandleFunc("/switch/{n:[0-9]+}", s.handleSwitch).Methods("POST")
	api.HandleFunc("/stream", s.handleStream)
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router.HandleFunc("/", s.handleIndex).Methods("GET")
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is done
func (s *Server) Start(ctx context.Context, addr string) error {
	log := logger.WithComponent("api")

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: s.router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		s.closeSubscribers()
	}()

	log.Info().Str("addr", ln.Addr().String()).Msg("Overlay server listening")
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleGetWindows(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cycler.Snapshot())
}

func (s *Server) handleForward(w http.ResponseWriter, r *http.Request) {
	s.respond(w, "forward", s.cycler.Forward())
}

func (s *Server) handleBackward(w http.ResponseWriter, r *http.Request) {
	s.respond(w, "backward", s.cycler.Backward())
}

func (s *Server) handleSwitch(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(mux.Vars(r)["n"])
	if err != nil {
		http.Error(w, "invalid target", http.StatusBadRequest)
		return
	}

	err = s.cycler.SwitchTo(n)
	if errors.Is(err, cycle.ErrOutOfRange) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.respond(w, "switch", err)
}

// handleActivateWindow focuses a client by id. The overlay uses it rather than
// a position so clicks hit the listed window whatever the character order.
func (s *Server) handleActivateWindow(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid window id", http.StatusBadRequest)
		return
	}

	err = s.cycler.ActivateWindow(window.ID(id))
	if errors.Is(err, cycle.ErrOutOfRange) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.respond(w, "activate", err)
}

func (s *Server) handleMoveWindow(w http.ResponseWriter, r *http.Request) {
	if s.mover == nil {
		http.Error(w, "window placement is not supported", http.StatusNotImplemented)
		return
	}

	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid window id", http.StatusBadRequest)
		return
	}

	var req struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.respond(w, "move", s.mover.MoveWindow(window.ID(id), req.X, req.Y))
}

func (s *Server) respond(w http.ResponseWriter, op string, err error) {
	if err != nil {
		logger.WithComponent("api").Warn().Err(err).Str("op", op).Msg("Overlay command failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, s.cycler.Snapshot())
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	log := logger.WithComponent("api")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	updates := s.subscribe()
	defer s.unsubscribe(updates)

	// The client never sends; reading detects when it goes away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := s.write(conn, s.cycler.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case <-gone:
			return
		case snap, ok := <-updates:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
					time.Now().Add(writeWait))
				return
			}
			if err := s.write(conn, snap); err != nil {
				log.Debug().Err(err).Msg("WebSocket write failed")
				return
			}
		}
	}
}

func (s *Server) write(conn *websocket.Conn, snap cycle.Snapshot) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(snap)
}

func (s *Server) subscribe() chan cycle.Snapshot {
	ch := make(chan cycle.Snapshot, streamBuffer)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan cycle.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[ch]; ok {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Server) closeSubscribers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// broadcast never blocks the coordinator; slow clients miss intermediate states
func (s *Server) broadcast(snap cycle.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": Version,
	})
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Nicotine</title>
    <style>
        body { font-family: sans-serif; background: #111; color: #ddd; margin: 10px; }
        li { padding: 2px 6px; }
        li.current { background: #2e7d32; color: #fff; }
        button { background: none; border: none; color: inherit; cursor: pointer; font: inherit; }
    </style>
</head>
<body>
    <ol id="clients">
    {{- range $i, $w := .Windows}}
        <li{{if eq $i $.Current}} class="current"{{end}}><button onclick="fetch('/api/windows/{{$w.ID}}/activate', {method: 'POST'})">{{$w.Title}}</button></li>
    {{- else}}
        <li>No clients</li>
    {{- end}}
    </ol>
    <script>
        const list = document.getElementById('clients');
        const ws = new WebSocket('ws://' + location.host + '/api/stream');
        ws.onmessage = (ev) => {
            const snap = JSON.parse(ev.data);
            list.innerHTML = '';
            (snap.windows || []).forEach((w, i) => {
                const li = document.createElement('li');
                if (i === snap.current) li.className = 'current';
                const b = document.createElement('button');
                b.textContent = w.title;
                b.onclick = () => fetch('/api/windows/' + w.id + '/activate', {method: 'POST'});
                li.appendChild(b);
                list.appendChild(li);
            });
        };
    </script>
</body>
</html>`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, s.cycler.Snapshot()); err != nil {
		logger.WithComponent("api").Error().Err(err).Msg("Failed to render index")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
