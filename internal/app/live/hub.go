package live

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hub fans frames out to the other members of a room. It backs the local
// mode streams.
type Hub struct {
	mu     sync.Mutex
	rooms  map[string]map[*Peer]struct{}
	buffer int
	log    *zap.Logger
}

// NewHub returns a hub whose peers buffer up to buffer frames. A peer whose
// buffer is full when a frame arrives is disconnected.
func NewHub(buffer int, logger *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		rooms:  make(map[string]map[*Peer]struct{}),
		buffer: buffer,
		log:    logger,
	}
}

// Peer is one member of a room. It implements Stream.
type Peer struct {
	ID     string
	UserID string
	Room   string

	hub    *Hub
	out    chan Frame
	closed bool // guarded by hub.mu
}

// Join adds a member to room and announces it to the others.
func (h *Hub) Join(room, userID string) *Peer {
	p := &Peer{
		ID:     uuid.NewString(),
		UserID: userID,
		Room:   room,
		hub:    h,
		out:    make(chan Frame, h.buffer),
	}
	h.mu.Lock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Peer]struct{})
		h.rooms[room] = members
	}
	members[p] = struct{}{}
	h.mu.Unlock()

	if f, err := NewFrame(TypeJoin, room, userID, nil); err == nil {
		h.publish(p, f)
	}
	return p
}

// Peers reports how many members room has.
func (h *Hub) Peers(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}

// Rooms reports how many rooms have members.
func (h *Hub) Rooms() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}

// Broadcast delivers f to every member of room.
func (h *Hub) Broadcast(room string, f Frame) {
	f.Room = room
	h.publish(nil, f)
}

func (h *Hub) publish(from *Peer, f Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := f.Room
	if from != nil {
		room = from.Room
		f.Room = room
	}
	for p := range h.rooms[room] {
		if p == from {
			continue
		}
		select {
		case p.out <- f:
		default:
			h.log.Warn("live peer too slow; disconnecting",
				zap.String("room", room),
				zap.String("user_id", p.UserID))
			h.removeLocked(p)
		}
	}
}

func (h *Hub) removeLocked(p *Peer) {
	if p.closed {
		return
	}
	p.closed = true
	close(p.out)
	if members, ok := h.rooms[p.Room]; ok {
		delete(members, p)
		if len(members) == 0 {
			delete(h.rooms, p.Room)
		}
	}
}

// Send delivers f to the other members of the peer's room.
func (p *Peer) Send(ctx context.Context, f Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.hub.mu.Lock()
	closed := p.closed
	p.hub.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if f.UserID == "" {
		f.UserID = p.UserID
	}
	p.hub.publish(p, f)
	return nil
}

// Messages yields frames from the other members.
func (p *Peer) Messages() <-chan Frame { return p.out }

// Close leaves the room and announces the departure.
func (p *Peer) Close() error {
	p.hub.mu.Lock()
	already := p.closed
	p.hub.removeLocked(p)
	p.hub.mu.Unlock()
	if already {
		return nil
	}
	if f, err := NewFrame(TypeLeave, p.Room, p.UserID, nil); err == nil {
		p.hub.publish(nil, f)
	}
	return nil
}
