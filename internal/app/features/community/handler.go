// internal/app/features/community/handler.go
package community

import (
	uierrors "github.com/dalemusser/edusphere/internal/app/features/errors"
	communitysvc "github.com/dalemusser/edusphere/internal/app/services/community"
	"go.uber.org/zap"
)

// Handler serves study groups, the forum and the leaderboard.
type Handler struct {
	Community communitysvc.Service
	ErrLog    *uierrors.ErrorLogger
	Log       *zap.Logger
}

func NewHandler(svc communitysvc.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Community: svc,
		ErrLog:    errLog,
		Log:       logger,
	}
}
