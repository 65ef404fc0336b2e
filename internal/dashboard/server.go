// Package dashboard provides a read-only live web view of the driver
// loop's corpus and coverage growth, adapted from the teacher's
// internal/web.Server. Unlike the teacher's dashboard, this one exposes no
// start/stop/config control endpoints: it is a porthole onto a single
// in-process run, never a coordination surface (no distributed fuzzing).
package dashboard

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/time/rate"
)

// Stats holds the point-in-time fuzzing statistics the dashboard reports,
// mirroring the shape of the teacher's FuzzerStats but with driver-loop
// fields instead of HTTP-fuzzing fields.
type Stats struct {
	CorpusSize       int64  `json:"corpusSize"`
	CoveragePopcount int64  `json:"coveragePopcount"`
	MaxCoverage      int64  `json:"maxCoverage"`
	TotalTicks       int64  `json:"totalTicks"`
	TotalTrials      int64  `json:"totalTrials"`
	AcceptedTrials   int64  `json:"acceptedTrials"`
	ActiveMutator    string `json:"activeMutator"`
	ElapsedTime      string `json:"elapsedTime"`
	Completed        bool   `json:"completed"`
}

// CoverageEvent is broadcast to connected browsers on every
// corpus.IsInteresting acceptance, mirroring the teacher's AnomalyLog
// broadcast shape.
type CoverageEvent struct {
	NewBits    int   `json:"newBits"`
	TotalAfter int   `json:"totalAfter"`
	Timestamp  int64 `json:"timestamp"`
}

// Server is the fiber-backed dashboard HTTP/websocket server.
type Server struct {
	app       *fiber.App
	startedAt time.Time

	mu    sync.RWMutex
	stats Stats

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]bool
	broadcast chan []byte

	// coverageLimiter throttles BroadcastCoverageEvent, mirroring the
	// teacher's rate.Limiter guard against flooding connected browsers
	// when a mutator family accepts many children in a tight loop.
	coverageLimiter *rate.Limiter

	log *slog.Logger
}

// NewServer builds a Server. A nil logger falls back to slog.Default().
func NewServer(log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	s := &Server{
		app:             app,
		startedAt:       time.Now(),
		clients:         make(map[*websocket.Conn]bool),
		broadcast:       make(chan []byte, 100),
		coverageLimiter: rate.NewLimiter(rate.Limit(20), 5),
		log:             log,
	}
	s.setupRoutes()
	go s.handleBroadcast()
	return s
}

func (s *Server) setupRoutes() {
	s.app.Use(cors.New())

	api := s.app.Group("/api")
	api.Get("/stats", s.handleStats)

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws", websocket.New(s.handleWebSocket))

	s.app.Get("/", s.handleIndex)
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.JSON(s.stats)
}

func (s *Server) handleWebSocket(c *websocket.Conn) {
	s.clientsMu.Lock()
	s.clients[c] = true
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, c)
		s.clientsMu.Unlock()
		c.Close()
	}()

	s.mu.RLock()
	data, _ := json.Marshal(map[string]interface{}{"type": "stats", "data": s.stats})
	s.mu.RUnlock()
	c.WriteMessage(websocket.TextMessage, data)

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Server) handleBroadcast() {
	for msg := range s.broadcast {
		s.clientsMu.Lock()
		for client := range s.clients {
			if err := client.WriteMessage(websocket.TextMessage, msg); err != nil {
				client.Close()
				delete(s.clients, client)
			}
		}
		s.clientsMu.Unlock()
	}
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(indexHTML)
}

// UpdateStats records the driver loop's current standing and broadcasts it
// to connected clients, called periodically from the driver.
func (s *Server) UpdateStats(st Stats) {
	s.mu.Lock()
	st.ElapsedTime = time.Since(s.startedAt).Round(time.Second).String()
	s.stats = st
	s.mu.Unlock()

	data, _ := json.Marshal(map[string]interface{}{"type": "stats", "data": st})
	select {
	case s.broadcast <- data:
	default:
	}
}

// BroadcastCoverageEvent pushes one corpus.IsInteresting acceptance event to
// connected clients, dropping events beyond coverageLimiter's rate so a
// mutator family accepting many children in a row cannot flood a browser's
// websocket connection.
func (s *Server) BroadcastCoverageEvent(ev CoverageEvent) {
	if !s.coverageLimiter.Allow() {
		return
	}
	data, _ := json.Marshal(map[string]interface{}{"type": "coverage", "data": ev})
	select {
	case s.broadcast <- data:
	default:
	}
}

// Start begins serving on addr, blocking until the server stops.
func (s *Server) Start(addr string) error {
	s.log.Info("dashboard starting", "addr", addr)
	return s.app.Listen(addr)
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	return s.app.Shutdown()
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>rtlfuzz</title>
<style>
body { background:#0d0d0d; color:#e0e0e0; font-family:monospace; padding:2em; }
h1 { color:#00ffff; }
#stats div { margin:0.25em 0; }
.label { color:#666; display:inline-block; width:14em; }
#log { margin-top:2em; max-height:20em; overflow-y:auto; border:1px solid #333; padding:0.5em; }
.ev { color:#ffff00; }
</style>
</head>
<body>
<h1>rtlfuzz — live coverage</h1>
<div id="stats"></div>
<div id="log"></div>
<script>
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
const statsDiv = document.getElementById("stats");
const logDiv = document.getElementById("log");
ws.onmessage = (msg) => {
  const m = JSON.parse(msg.data);
  if (m.type === "stats") {
    statsDiv.innerHTML = Object.entries(m.data).map(
      ([k, v]) => '<div><span class="label">' + k + '</span>' + v + '</div>'
    ).join("");
  } else if (m.type === "coverage") {
    const line = document.createElement("div");
    line.className = "ev";
    line.textContent = "+" + m.data.newBits + " bits, total " + m.data.totalAfter + " @ " + m.data.timestamp;
    logDiv.prepend(line);
  }
};
</script>
</body>
</html>`
