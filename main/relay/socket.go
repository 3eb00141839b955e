package relay

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type SocketOptions struct {
	OutboxSize     int
	MaxMessageSize int64
	PingInterval   time.Duration
	WriteTimeout   time.Duration
}

func (o SocketOptions) withDefaults() SocketOptions {
	if o.OutboxSize <= 0 {
		o.OutboxSize = 32
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = 16 << 20
	}
	if o.PingInterval <= 0 {
		o.PingInterval = 20 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
	return o
}

// Socket adapts a websocket to Outbound. gorilla allows one concurrent
// writer, so all writes go through writePump. Each Send is one envelope in
// the outbox and is written back-to-back, a full outbox drops the envelope.
type Socket struct {
	ws     *websocket.Conn
	opts   SocketOptions
	outbox chan []Frame
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

func newSocket(ws *websocket.Conn, opts SocketOptions) *Socket {
	return &Socket{
		ws:     ws,
		opts:   opts,
		outbox: make(chan []Frame, opts.OutboxSize),
		done:   make(chan struct{}),
	}
}

func (s *Socket) Send(frames ...Frame) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrConnectionClosed
	}
	select {
	case s.outbox <- frames:
		return nil
	default:
		return ErrBackpressure
	}
}

func (s *Socket) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.closed
}

// Close stops the writer. Safe to call more than once.
func (s *Socket) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
}

func (s *Socket) writePump() {
	ticker := time.NewTicker(s.opts.PingInterval)
	defer func() {
		ticker.Stop()
		s.Close()
		s.ws.Close()
	}()

	for {
		select {
		case frames := <-s.outbox:
			for _, frame := range frames {
				s.ws.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
				if err := s.ws.WriteMessage(frame.messageType(), frame.Data); err != nil {
					log.Debug().Err(err).Msg("write failed")
					return
				}
			}
		case <-ticker.C:
			s.ws.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
			if err := s.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			s.ws.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return
		}
	}
}

func (f Frame) messageType() int {
	if f.Kind == BinaryFrame {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// serve runs the read loop until the peer goes away, then evicts the
// connection from the registry.
func (s *Socket) serve(dispatcher *Dispatcher) {
	conn := NewConnection(s)
	log.Info().
		Str("connectionId", conn.Id).
		Str("remote", s.ws.RemoteAddr().String()).
		Msg("connection opened")

	go s.writePump()
	defer func() {
		s.Close()
		dispatcher.Disconnect(conn)
		log.Info().
			Str("connectionId", conn.Id).
			Str("role", conn.Role().String()).
			Msg("connection closed")
	}()

	readTimeout := 2 * s.opts.PingInterval
	s.ws.SetReadLimit(s.opts.MaxMessageSize)
	s.ws.SetReadDeadline(time.Now().Add(readTimeout))
	s.ws.SetPongHandler(func(string) error {
		return s.ws.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		messageType, data, err := s.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived) {
				log.Warn().Err(err).Str("connectionId", conn.Id).Msg("connection error")
			}
			return
		}
		s.ws.SetReadDeadline(time.Now().Add(readTimeout))

		var frame Frame
		switch messageType {
		case websocket.TextMessage:
			frame = Text(data)
		case websocket.BinaryMessage:
			frame = Binary(data)
		default:
			continue
		}

		if err := dispatcher.Dispatch(conn, frame); err != nil {
			log.Warn().
				Err(err).
				Str("connectionId", conn.Id).
				Msg("discarded control message")
		}
	}
}
