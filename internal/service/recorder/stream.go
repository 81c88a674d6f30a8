// Package recorder streams live trades over a websocket so they can be stored and replayed later.
package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"TreasureEngine/internal/domain/models"
	drepo "TreasureEngine/internal/domain/repository"
	applogger "TreasureEngine/pkg/logger"

	"github.com/gorilla/websocket"
)

// Config configures the trade stream.
type Config struct {
	APIKey         string
	URL            string
	Symbols        []string
	ReconnectDelay time.Duration
	PingInterval   time.Duration
	BufferSize     int
}

// Stream implements MarketStream over a Finnhub-style trade websocket.
type Stream struct {
	cfg    Config
	dialer *websocket.Dialer
	l      *applogger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool

	// pinging counts live ping loops; each Read owns at most one.
	pinging atomic.Int32
}

var _ drepo.MarketStream = (*Stream)(nil)

func NewStream(cfg Config) *Stream {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1024
	}
	return &Stream{cfg: cfg, dialer: websocket.DefaultDialer}
}

// SetLogger injects a structured logger.
func (s *Stream) SetLogger(l *applogger.Logger) { s.l = l }

func (s *Stream) Connect(ctx context.Context) error {
	u, err := url.Parse(s.cfg.URL)
	if err != nil {
		return fmt.Errorf("recorder url: %w", err)
	}
	if s.cfg.APIKey != "" {
		q := u.Query()
		q.Set("token", s.cfg.APIKey)
		u.RawQuery = q.Encode()
	}
	conn, _, err := s.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("recorder connect: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()
	s.info("recorder connected", applogger.String("host", u.Host))
	return nil
}

func (s *Stream) Subscribe(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || !s.connected {
		return errors.New("recorder not connected")
	}
	for _, sym := range s.cfg.Symbols {
		if err := s.conn.WriteJSON(map[string]string{"type": "subscribe", "symbol": sym}); err != nil {
			return fmt.Errorf("subscribe %s: %w", sym, err)
		}
	}
	s.info("recorder subscribed", applogger.Strings("symbols", s.cfg.Symbols))
	return nil
}

type wireTrade struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	V float64 `json:"v"`
	T int64   `json:"t"`
}

type wireMessage struct {
	Type string      `json:"type"`
	Data []wireTrade `json:"data"`
}

// decodeTrades returns the ticks of a trade frame. Other frames yield nothing.
func decodeTrades(b []byte) []models.PriceTick {
	var m wireMessage
	if err := json.Unmarshal(b, &m); err != nil || m.Type != "trade" {
		return nil
	}
	out := make([]models.PriceTick, 0, len(m.Data))
	for _, d := range m.Data {
		if d.S == "" || d.T <= 0 || !(d.P > 0) {
			continue
		}
		out = append(out, models.PriceTick{TsMs: d.T, Symbol: d.S, Price: d.P, Volume: d.V})
	}
	return out
}

// Read streams ticks until ctx ends or the connection fails. Ticks are dropped under backpressure.
// The ping loop started here stops with the reader, so reconnecting does not leak it.
func (s *Stream) Read(ctx context.Context) (<-chan models.PriceTick, <-chan error) {
	ticks := make(chan models.PriceTick, s.cfg.BufferSize)
	errs := make(chan error, 1)

	ctx, cancel := context.WithCancel(ctx)
	go s.pingLoop(ctx)
	go func() {
		defer cancel()
		defer close(ticks)
		defer close(errs)
		for {
			if ctx.Err() != nil {
				return
			}
			s.mu.Lock()
			conn := s.conn
			s.mu.Unlock()
			if conn == nil {
				errs <- errors.New("recorder connection closed")
				return
			}
			_, b, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					errs <- fmt.Errorf("recorder read: %w", err)
				}
				return
			}
			for _, t := range decodeTrades(b) {
				select {
				case ticks <- t:
				case <-ctx.Done():
					return
				default:
				}
			}
		}
	}()
	return ticks, errs
}

func (s *Stream) pingLoop(ctx context.Context) {
	s.pinging.Add(1)
	defer s.pinging.Add(-1)
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.conn != nil {
				_ = s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			}
			s.mu.Unlock()
		}
	}
}

func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.cfg.ReconnectDelay):
	}
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *Stream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *Stream) info(msg string, fields ...applogger.Field) {
	if s.l != nil {
		s.l.Info(msg, fields...)
	}
}
