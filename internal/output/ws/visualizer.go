package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	diag "github.com/coreman2200/funtimes-dragonstage/internal/diagnostics"
	"github.com/coreman2200/funtimes-dragonstage/internal/rig"
)

// recentDiags is how many diagnostics a new /diag client is replayed.
const recentDiags = 32

// sendBuffer is how many messages may queue for one client before new ones are dropped.
const sendBuffer = 64

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// client owns one websocket. Only its writer goroutine touches the connection
// for writes; everyone else queues on send.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

func newClient(conn *websocket.Conn) *client {
	return &client{conn: conn, send: make(chan []byte, sendBuffer)}
}

// queue never blocks; a full buffer drops the message.
func (c *client) queue(b []byte) bool {
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

func (c *client) writer() {
	defer c.conn.Close()
	for b := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("websocket write")
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// Visualizer streams rig snapshots to browsers over /ws and diagnostics over /diag.
// It is an output adapter: the output loop drives its frame rate. Neither Write
// nor PushDiag waits on a browser.
type Visualizer struct {
	// Status, when set, is embedded in every frame and in /health.
	Status func() any

	mu          sync.Mutex
	frameID     uint64
	startTime   time.Time
	clients     map[*client]bool
	diagClients map[*client]bool
	recent      []diag.Diagnostic
	dropped     uint64
}

func New() *Visualizer {
	return &Visualizer{
		startTime:   time.Now(),
		clients:     map[*client]bool{},
		diagClients: map[*client]bool{},
	}
}

// Routes mounts the visualizer endpoints.
func (v *Visualizer) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", v.HandleFramesWS)
	mux.HandleFunc("/diag", v.HandleDiagWS)
	mux.HandleFunc("/health", v.HandleHealth)
}

func (v *Visualizer) Name() string { return "ws" }

type frame struct {
	T       int64                       `json:"t"`
	FrameID uint64                      `json:"frame_id"`
	RGB     []byte                      `json:"rgb"` // 96 pixels, left to right
	Dragons [rig.DragonCount]rig.Dragon `json:"dragons"`
	Status  any                         `json:"status,omitempty"`
}

func (v *Visualizer) Write(s rig.Snapshot) error {
	wide := s.Wide()
	rgb := make([]byte, 0, len(wide)*3)
	for _, p := range wide {
		rgb = append(rgb, p.R, p.G, p.B)
	}
	var status any
	if v.Status != nil {
		status = v.Status()
	}

	v.mu.Lock()
	v.frameID++
	id, n := v.frameID, len(v.clients)
	v.mu.Unlock()
	if n == 0 {
		return nil
	}
	b, err := json.Marshal(frame{T: time.Now().UnixNano(), FrameID: id, RGB: rgb, Dragons: s.Dragons, Status: status})
	if err != nil {
		return err
	}
	v.broadcast(v.clients, b)
	return nil
}

// PushDiag queues d for every /diag client and keeps it for late joiners.
func (v *Visualizer) PushDiag(d diag.Diagnostic) {
	b, err := json.Marshal(d)
	if err != nil {
		return
	}
	v.mu.Lock()
	v.recent = append(v.recent, d)
	if len(v.recent) > recentDiags {
		v.recent = v.recent[len(v.recent)-recentDiags:]
	}
	v.mu.Unlock()
	v.broadcast(v.diagClients, b)
}

func (v *Visualizer) broadcast(set map[*client]bool, b []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for c := range set {
		if !c.queue(b) {
			v.dropped++
		}
	}
}

func (v *Visualizer) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := newClient(conn)
	c.queue(topology())
	v.mu.Lock()
	v.clients[c] = true
	v.mu.Unlock()
	go c.writer()
	go v.drain(c, v.clients)
}

func (v *Visualizer) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := newClient(conn)
	v.mu.Lock()
	for _, d := range v.recent {
		b, _ := json.Marshal(d)
		c.queue(b)
	}
	v.diagClients[c] = true
	v.mu.Unlock()
	go c.writer()
	go v.drain(c, v.diagClients)
}

// drain reads until the client goes away, then forgets it.
func (v *Visualizer) drain(c *client, set map[*client]bool) {
	defer v.forget(c, set)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// forget unregisters c and stops its writer. Safe to call more than once.
func (v *Visualizer) forget(c *client, set map[*client]bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if set[c] {
		delete(set, c)
		close(c.send)
	}
}

func (v *Visualizer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	var status any
	if v.Status != nil {
		status = v.Status()
	}
	v.mu.Lock()
	resp := map[string]any{
		"frame_id": v.frameID,
		"uptime_s": time.Since(v.startTime).Seconds(),
		"clients":  len(v.clients),
		"dropped":  v.dropped,
		"status":   status,
	}
	v.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func topology() []byte {
	b, _ := json.Marshal(map[string]any{
		"bars":       []string{rig.BarLeft.String(), rig.BarCenter.String(), rig.BarRight.String()},
		"bar_length": rig.BarLength,
		"dragons":    []string{rig.DragonLeft.String(), rig.DragonRight.String()},
	})
	return b
}

func (v *Visualizer) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, set := range []map[*client]bool{v.clients, v.diagClients} {
		for c := range set {
			delete(set, c)
			close(c.send)
		}
	}
	return nil
}
