package websocketPkg

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var ErrNotConnected = errors.New("not connected to inference service")

type InferenceRequest struct {
	Model  string   `json:"model"`
	Images []string `json:"images"`
}

type InferenceResponse struct {
	Predictions [][]float64 `json:"predictions"`
	Error       string      `json:"error,omitempty"`
}

type IWebsocket interface {
	Infer(ctx context.Context, req InferenceRequest) (*InferenceResponse, error)
	IsConnected() bool
	Reconnect() error
	Close()
}

// webSocketClient keeps one connection to a model server. Requests share the
// connection and are answered in order, so a whole write/read round trip
// holds the lock.
type webSocketClient struct {
	url          string
	log          *logrus.Logger
	conn         *websocket.Conn
	mu           sync.Mutex
	connected    atomic.Bool
	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewInferenceClient(url string, log *logrus.Logger) IWebsocket {
	client := &webSocketClient{
		url:          url,
		log:          log,
		pingInterval: 30 * time.Second,
		readTimeout:  30 * time.Second,
		writeTimeout: 5 * time.Second,
	}

	go client.connectInBackground()

	return client
}

func (c *webSocketClient) connectInBackground() {
	if err := c.Reconnect(); err != nil {
		c.log.WithFields(logrus.Fields{
			"url":   c.url,
			"error": err.Error(),
		}).Warn("Initial connection to inference service failed, will retry on demand")
		return
	}
	c.log.WithField("url", c.url).Info("Connected to inference service")
}

// IsConnected does not take the round trip lock, so a health check never
// waits behind a running inference.
func (c *webSocketClient) IsConnected() bool {
	return c.connected.Load()
}

func (c *webSocketClient) setConnLocked(conn *websocket.Conn) {
	c.conn = conn
	c.connected.Store(conn != nil)
}

func (c *webSocketClient) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dialLocked()
}

func (c *webSocketClient) dialLocked() error {
	if c.conn != nil {
		c.conn.Close()
		c.setConnLocked(nil)
	}

	if c.url == "" {
		return errors.New("inference service URL not configured")
	}

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		if err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout)); err != nil {
			c.log.WithError(err).Warn("Error sending pong")
		}
		return nil
	})

	c.setConnLocked(conn)
	go c.keepAlive(conn)

	return nil
}

func (c *webSocketClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.setConnLocked(nil)
	}
}

func (c *webSocketClient) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		if c.conn != conn {
			c.mu.Unlock()
			return
		}

		if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout)); err != nil {
			c.log.WithError(err).Warn("Ping to inference service failed, marking connection as dead")
			c.setConnLocked(nil)
			conn.Close()
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
	}
}

func (c *webSocketClient) Infer(ctx context.Context, req InferenceRequest) (*InferenceResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.dialLocked(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotConnected, err)
		}
	}
	conn := c.conn

	deadline := time.Now().Add(c.readTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if err := conn.WriteJSON(req); err != nil {
		c.setConnLocked(nil)
		conn.Close()
		return nil, fmt.Errorf("error sending inference request: %w", err)
	}

	conn.SetReadDeadline(deadline)
	var resp InferenceResponse
	if err := conn.ReadJSON(&resp); err != nil {
		c.setConnLocked(nil)
		conn.Close()
		return nil, fmt.Errorf("error reading inference response: %w", err)
	}

	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})

	if resp.Error != "" {
		return nil, fmt.Errorf("inference service: %s", resp.Error)
	}

	c.log.WithFields(logrus.Fields{
		"model": req.Model,
		"batch": len(req.Images),
	}).Debug("Received response from inference service")

	return &resp, nil
}
