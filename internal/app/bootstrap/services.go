// internal/app/bootstrap/services.go
package bootstrap

import (
	"github.com/dalemusser/edusphere/internal/app/services/accounts"
	"github.com/dalemusser/edusphere/internal/app/services/community"
	"github.com/dalemusser/edusphere/internal/app/services/dashboard"
	"github.com/dalemusser/edusphere/internal/app/services/flashcards"
	"github.com/dalemusser/edusphere/internal/app/services/messaging"
	"github.com/dalemusser/edusphere/internal/app/services/notes"
	"github.com/dalemusser/edusphere/internal/app/services/professor"
	"github.com/dalemusser/edusphere/internal/app/services/whiteboard"
	"go.uber.org/zap"
)

// streamBuffer is the inbound frame queue of each remote live stream.
const streamBuffer = 64

// serviceSet is every service wrapper the handlers call. Handlers only see
// the interfaces, so the backend mode never reaches them.
type serviceSet struct {
	Accounts   accounts.Service
	Dashboard  dashboard.Service
	Community  community.Service
	Messaging  messaging.Service
	Notes      notes.Service
	Whiteboard whiteboard.Service
	Flashcards flashcards.Service
	Professor  professor.Service
}

// buildServices binds the service wrappers to the connected back end.
func buildServices(deps DBDeps, logger *zap.Logger) (serviceSet, error) {
	if deps.MongoDatabase != nil {
		db := deps.MongoDatabase
		boards, err := whiteboard.NewLocal(db, deps.WhiteboardHub, logger.Named("whiteboard"))
		if err != nil {
			return serviceSet{}, err
		}
		return serviceSet{
			Accounts:   accounts.NewLocal(db),
			Dashboard:  dashboard.NewLocal(db),
			Community:  community.NewLocal(db),
			Messaging:  messaging.NewLocal(db),
			Notes:      notes.NewLocal(db, deps.NoteHub, logger.Named("notes")),
			Whiteboard: boards,
			Flashcards: flashcards.NewLocal(db),
			Professor:  professor.NewLocal(db),
		}, nil
	}

	c := deps.Backend
	return serviceSet{
		Accounts:   accounts.NewRemote(c),
		Dashboard:  dashboard.NewRemote(c),
		Community:  community.NewRemote(c),
		Messaging:  messaging.NewRemote(c),
		Notes:      notes.NewRemote(c, streamBuffer, logger.Named("notes")),
		Whiteboard: whiteboard.NewRemote(c, streamBuffer, logger.Named("whiteboard")),
		Flashcards: flashcards.NewRemote(c),
		Professor:  professor.NewRemote(c),
	}, nil
}
