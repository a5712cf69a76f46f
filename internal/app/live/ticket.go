package live

import (
	"errors"
	"time"

	"github.com/gorilla/securecookie"
)

const ticketName = "edusphere-live"

// Ticket errors.
var (
	ErrTicketInvalid = errors.New("live: invalid ticket")
	ErrTicketExpired = errors.New("live: ticket expired")
	ErrTicketScope   = errors.New("live: ticket issued for another user or room")
)

// Ticket authorizes one user to open a socket on one room.
type Ticket struct {
	UserID string `json:"u"`
	Kind   string `json:"k"`
	Room   string `json:"r"`
	Exp    int64  `json:"e"`
}

// Tickets signs and verifies tickets. The page that opens a socket embeds
// a freshly issued ticket; the socket endpoint verifies it.
type Tickets struct {
	sc  *securecookie.SecureCookie
	ttl time.Duration
	now func() time.Time
}

// NewTickets signs with hashKey (32 or 64 random bytes recommended).
func NewTickets(hashKey []byte, ttl time.Duration) *Tickets {
	sc := securecookie.New(hashKey, nil)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(0)
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Tickets{sc: sc, ttl: ttl, now: time.Now}
}

// Issue returns a signed ticket for userID on kind/room.
func (t *Tickets) Issue(userID, kind, room string) (string, error) {
	return t.sc.Encode(ticketName, Ticket{
		UserID: userID,
		Kind:   kind,
		Room:   room,
		Exp:    t.now().Add(t.ttl).Unix(),
	})
}

// Verify checks the signature, expiry and scope of token.
func (t *Tickets) Verify(token, userID, kind, room string) (Ticket, error) {
	var tk Ticket
	if token == "" {
		return tk, ErrTicketInvalid
	}
	if err := t.sc.Decode(ticketName, token, &tk); err != nil {
		return Ticket{}, ErrTicketInvalid
	}
	if t.now().Unix() > tk.Exp {
		return Ticket{}, ErrTicketExpired
	}
	if tk.UserID != userID || tk.Kind != kind || tk.Room != room {
		return Ticket{}, ErrTicketScope
	}
	return tk, nil
}
