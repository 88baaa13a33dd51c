package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gorilla/websocket"

	"github.com/zeusync/offscreen/internal/config"
	"github.com/zeusync/offscreen/internal/core/geom"
	"github.com/zeusync/offscreen/internal/core/indicator"
	"github.com/zeusync/offscreen/internal/core/observability/log"
	"github.com/zeusync/offscreen/internal/core/observability/metrics"
	"github.com/zeusync/offscreen/pkg/generic"
)

const (
	sendBuffer   = 16
	maxReadBytes = 512
)

var digests = generic.NewPool(xxhash.New, (*xxhash.Digest).Reset)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Feed streams indicator frames to websocket subscribers as JSON text
// messages. A frame whose content matches the previous broadcast is not
// sent again; new subscribers receive the latest frame on connect.
//
// Clients that fall more than sendBuffer frames behind are disconnected.
type Feed struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
	digest  uint64
	closed  bool

	writeTimeout time.Duration

	logger  log.Log
	metrics *metrics.Metrics
}

func NewFeed(cfg config.ServerConfig, logger log.Log, m *metrics.Metrics) *Feed {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Feed{
		clients:      make(map[*client]struct{}),
		writeTimeout: cfg.WriteTimeout,
		logger:       logger.With(log.String("component", "feed")),
		metrics:      m,
	}
}

// Broadcast queues frame for every connected client.
func (f *Feed) Broadcast(frame indicator.Frame) {
	digest, err := frameDigest(frame)
	if err != nil {
		f.logger.Error("frame digest", log.Error(err))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	if f.last != nil && digest == f.digest {
		f.metrics.IncrementFrame(false)
		return
	}

	payload, err := json.Marshal(frame)
	if err != nil {
		f.logger.Error("frame encode", log.Error(err))
		return
	}
	f.last, f.digest = payload, digest

	for c := range f.clients {
		select {
		case c.send <- payload:
		default:
			f.logger.Warn("dropping slow feed client", log.String("remote", c.conn.RemoteAddr().String()))
			f.dropLocked(c)
		}
	}
	f.metrics.IncrementFrame(true)
}

// Clients returns the number of connected subscribers.
func (f *Feed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

// Close disconnects every subscriber and rejects new ones.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for c := range f.clients {
		f.dropLocked(c)
	}
}

func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		_ = conn.Close()
		return
	}
	f.clients[c] = struct{}{}
	if f.last != nil {
		c.send <- f.last
	}
	f.mu.Unlock()

	f.logger.Debug("feed client connected", log.String("remote", conn.RemoteAddr().String()))

	go f.writeLoop(c)
	f.readLoop(c)
}

// readLoop discards inbound messages until the peer goes away.
func (f *Feed) readLoop(c *client) {
	c.conn.SetReadLimit(maxReadBytes)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
	f.drop(c)
	f.logger.Debug("feed client disconnected", log.String("remote", c.conn.RemoteAddr().String()))
}

func (f *Feed) writeLoop(c *client) {
	defer func() { _ = c.conn.Close() }()

	for payload := range c.send {
		if f.writeTimeout > 0 {
			_ = c.conn.SetWriteDeadline(time.Now().Add(f.writeTimeout))
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			f.logger.Debug("feed write failed", log.Error(err))
			f.drop(c)
			return
		}
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}

func (f *Feed) drop(c *client) {
	f.mu.Lock()
	f.dropLocked(c)
	f.mu.Unlock()
}

func (f *Feed) dropLocked(c *client) {
	if _, ok := f.clients[c]; !ok {
		return
	}
	delete(f.clients, c)
	close(c.send)
}

// frameDigest hashes the visible content of a frame. The sequence number is
// left out so an idle scene produces identical digests.
func frameDigest(frame indicator.Frame) (uint64, error) {
	h := digests.Get()
	defer digests.Put(h)
	err := json.NewEncoder(h).Encode(struct {
		Viewport   geom.Vec2               `json:"viewport"`
		Indicators []indicator.WidgetState `json:"indicators"`
	}{frame.Viewport, frame.Indicators})
	return h.Sum64(), err
}
