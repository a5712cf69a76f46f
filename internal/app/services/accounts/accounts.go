// Package accounts wraps sign-in and account lookups.
package accounts

import (
	"context"

	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/domain/models"
)

// Service is the AccountService wrapper.
type Service interface {
	// Authenticate checks a login (email) and password.
	Authenticate(ctx context.Context, login, password string) (models.Account, error)
	// LookupByEmail resolves an identity already verified elsewhere, such
	// as a Google sign-in.
	LookupByEmail(ctx context.Context, email string) (models.Account, error)
	UpdateLocale(ctx context.Context, v models.Viewer, locale string) error
}

var errInvalidLogin = apperr.EK(apperr.KindUnauthorized, "auth.error.invalid", "invalid login or password")
