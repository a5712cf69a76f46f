package live

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Stream is one subscription to a room: frames sent go to the other
// members, Messages yields what they send. Messages is closed when the
// stream ends for any reason.
type Stream interface {
	Send(ctx context.Context, f Frame) error
	Messages() <-chan Frame
	Close() error
}

// InterceptFunc inspects or rewrites an outgoing frame. Returning ok=false
// swallows it.
type InterceptFunc func(ctx context.Context, f Frame) (out Frame, ok bool, err error)

type intercepted struct {
	Stream
	fn InterceptFunc
}

// Intercept runs fn on every frame before it is sent on s. Local services
// use it to persist whiteboard interactions and note text.
func Intercept(s Stream, fn InterceptFunc) Stream {
	return &intercepted{Stream: s, fn: fn}
}

func (s *intercepted) Send(ctx context.Context, f Frame) error {
	out, ok, err := s.fn(ctx, f)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return s.Stream.Send(ctx, out)
}

const (
	writeWait = 10 * time.Second
)

// ConnStream adapts a backend WebSocket connection to Stream.
type ConnStream struct {
	conn *websocket.Conn
	out  chan Frame
	log  *zap.Logger

	wmu  sync.Mutex
	once sync.Once
	done chan struct{}
}

// NewConnStream starts reading frames from conn. When the consumer falls
// more than buffer frames behind, the stream is closed.
func NewConnStream(conn *websocket.Conn, buffer int, logger *zap.Logger) *ConnStream {
	if buffer <= 0 {
		buffer = 64
	}
	s := &ConnStream{
		conn: conn,
		out:  make(chan Frame, buffer),
		log:  logger,
		done: make(chan struct{}),
	}
	go s.readLoop()
	return s
}

func (s *ConnStream) readLoop() {
	defer close(s.out)
	defer s.Close()
	for {
		var f Frame
		if err := s.conn.ReadJSON(&f); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				select {
				case <-s.done:
				default:
					s.log.Debug("backend stream read ended", zap.Error(err))
				}
			}
			return
		}
		select {
		case s.out <- f:
		default:
			s.log.Warn("backend stream consumer too slow; closing", zap.String("room", f.Room))
			return
		}
	}
}

// Send writes f to the backend.
func (s *ConnStream) Send(ctx context.Context, f Frame) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()
	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = s.conn.SetWriteDeadline(deadline)
	return s.conn.WriteJSON(f)
}

// Messages yields frames from the backend.
func (s *ConnStream) Messages() <-chan Frame { return s.out }

// Close sends a close message and tears the connection down.
func (s *ConnStream) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		s.wmu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.wmu.Unlock()
		err = s.conn.Close()
	})
	return err
}
