package live

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Limits bound what one browser connection may send.
type Limits struct {
	Debounce        time.Duration // quiet period before note text is forwarded
	MaxFrameBytes   int64
	FramesPerSecond int
	// MaxViolations is how many rate or validation violations close the socket.
	MaxViolations int
}

// DefaultLimits are used for zero fields.
var DefaultLimits = Limits{
	Debounce:        750 * time.Millisecond,
	MaxFrameBytes:   64 << 10,
	FramesPerSecond: 30,
	MaxViolations:   5,
}

func (l Limits) withDefaults() Limits {
	if l.Debounce <= 0 {
		l.Debounce = DefaultLimits.Debounce
	}
	if l.MaxFrameBytes <= 0 {
		l.MaxFrameBytes = DefaultLimits.MaxFrameBytes
	}
	if l.FramesPerSecond <= 0 {
		l.FramesPerSecond = DefaultLimits.FramesPerSecond
	}
	if l.MaxViolations <= 0 {
		l.MaxViolations = DefaultLimits.MaxViolations
	}
	return l
}

// OpenFunc opens the service stream for a room on behalf of v.
type OpenFunc func(ctx context.Context, v models.Viewer, room string) (Stream, error)

// Handler upgrades browser sockets for one room kind and pumps frames
// between the browser and the service stream.
type Handler struct {
	Kind    string
	Open    OpenFunc
	Tickets *Tickets
	Limits  Limits
	Log     *zap.Logger

	upgrader websocket.Upgrader
}

// NewHandler builds a socket handler for kind ("whiteboard" or "note").
func NewHandler(kind string, open OpenFunc, tickets *Tickets, limits Limits, logger *zap.Logger) *Handler {
	return &Handler{
		Kind:    kind,
		Open:    open,
		Tickets: tickets,
		Limits:  limits.withDefaults(),
		Log:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// readLimitFactor sets the websocket read limit as a multiple of
	// Limits.MaxFrameBytes.
	readLimitFactor = 4
)

// ServeHTTP handles GET /live/{kind}s/{id}?ticket=...
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "id")
	user, ok := auth.CurrentUser(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	if _, err := h.Tickets.Verify(r.URL.Query().Get("ticket"), user.ID, h.Kind, room); err != nil {
		h.Log.Warn("live ticket rejected",
			zap.String("kind", h.Kind),
			zap.String("room", room),
			zap.String("user_id", user.ID),
			zap.Error(err))
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	stream, err := h.Open(r.Context(), user.Viewer(), room)
	if err != nil {
		h.Log.Warn("live stream open failed",
			zap.String("kind", h.Kind),
			zap.String("room", room),
			zap.Error(err))
		http.Error(w, http.StatusText(apperr.HTTPStatus(err)), apperr.HTTPStatus(err))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		_ = stream.Close()
		return
	}
	h.Log.Debug("live socket opened",
		zap.String("kind", h.Kind),
		zap.String("room", room),
		zap.String("user_id", user.ID))

	s := &session{
		h:      h,
		conn:   conn,
		stream: stream,
		room:   room,
		userID: user.ID,
		errs:   make(chan Frame, 4),
		done:   make(chan struct{}),

		readDone:  make(chan struct{}),
		writeDone: make(chan struct{}),
	}
	s.run()
}

// session is one browser connection.
type session struct {
	h      *Handler
	conn   *websocket.Conn
	stream Stream
	room   string
	userID string

	errs chan Frame
	done chan struct{}
	once sync.Once

	readDone  chan struct{}
	writeDone chan struct{}
}

func (s *session) run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var deb *Debouncer
	if s.h.Kind == KindNote {
		deb = NewDebouncer(s.h.Limits.Debounce, func(content string) {
			f, err := NewFrame(TypeNoteText, s.room, s.userID, TextPayload{Content: content})
			if err != nil {
				return
			}
			if err := s.stream.Send(ctx, f); err != nil {
				s.h.Log.Warn("note text forward failed", zap.String("room", s.room), zap.Error(err))
			}
		})
	}

	go s.writePump()
	s.readLoop(ctx, deb)

	if deb != nil {
		deb.Flush()
		deb.Stop()
	}
	// Let the writer deliver queued error frames before the socket closes.
	close(s.readDone)
	select {
	case <-s.writeDone:
	case <-time.After(writeWait):
	}
	s.shutdown()
	s.h.Log.Debug("live socket closed",
		zap.String("kind", s.h.Kind),
		zap.String("room", s.room),
		zap.String("user_id", s.userID))
}

func (s *session) shutdown() {
	s.once.Do(func() {
		close(s.done)
		_ = s.stream.Close()
		_ = s.conn.Close()
	})
}

func (s *session) readLoop(ctx context.Context, deb *Debouncer) {
	lim := s.h.Limits
	// Frames between MaxFrameBytes and the hard ceiling count as
	// violations; only frames past the ceiling drop the socket.
	s.conn.SetReadLimit(lim.MaxFrameBytes * readLimitFactor)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	limiter := rate.NewLimiter(rate.Limit(lim.FramesPerSecond), lim.FramesPerSecond)
	violations := 0
	violate := func(code string) bool {
		violations++
		s.sendError(code)
		return violations >= lim.MaxViolations
	}

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if errors.Is(err, websocket.ErrReadLimit) {
				s.h.Log.Warn("live frame too large", zap.String("room", s.room), zap.String("user_id", s.userID))
			}
			return
		}
		if int64(len(data)) > lim.MaxFrameBytes {
			s.h.Log.Debug("live frame over limit",
				zap.String("room", s.room),
				zap.String("user_id", s.userID),
				zap.Int("bytes", len(data)))
			if violate("frame_too_large") {
				return
			}
			continue
		}
		if !limiter.Allow() {
			if violate("rate_limited") {
				return
			}
			continue
		}
		var f Frame
		if err := json.Unmarshal(data, &f); err != nil || !Inbound(s.h.Kind, f.Type) {
			if violate("invalid_frame") {
				return
			}
			continue
		}

		f.ID = uuid.NewString()
		f.Room = s.room
		f.UserID = s.userID
		f.At = time.Now().UTC()

		if f.Type == TypeNoteEdit {
			var p TextPayload
			if err := f.Decode(&p); err != nil {
				if violate("invalid_frame") {
					return
				}
				continue
			}
			deb.Push(p.Content)
			continue
		}
		if err := s.stream.Send(ctx, f); err != nil {
			s.h.Log.Warn("live frame forward failed", zap.String("room", s.room), zap.Error(err))
			s.sendError(string(apperr.KindOf(err)))
			if errors.Is(err, ErrClosed) {
				return
			}
		}
	}
}

func (s *session) sendError(code string) {
	select {
	case s.errs <- errorFrame(s.room, code):
	default:
	}
}

func (s *session) writePump() {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	defer close(s.writeDone)
	defer s.shutdown()

	msgs := s.stream.Messages()
	for {
		select {
		case <-s.done:
			return
		case <-s.readDone:
			s.drainErrors()
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return
		case f, ok := <-msgs:
			if !ok {
				_ = s.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream ended"),
					time.Now().Add(time.Second))
				return
			}
			if err := s.write(f); err != nil {
				return
			}
		case f := <-s.errs:
			if err := s.write(f); err != nil {
				return
			}
		case <-ping.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (s *session) drainErrors() {
	for {
		select {
		case f := <-s.errs:
			if s.write(f) != nil {
				return
			}
		default:
			return
		}
	}
}

func (s *session) write(f Frame) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(f)
}
