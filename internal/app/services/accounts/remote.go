package accounts

import (
	"context"
	"net/url"

	"github.com/dalemusser/edusphere/internal/app/backend"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/domain/models"
)

// Remote calls the backend's /api/auth endpoints.
type Remote struct {
	c *backend.Client
}

func NewRemote(c *backend.Client) *Remote {
	return &Remote{c: c}
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (s *Remote) Authenticate(ctx context.Context, login, password string) (models.Account, error) {
	var out models.Account
	err := s.c.Post(ctx, "", "/api/auth/login", loginRequest{Login: login, Password: password}, &out)
	if apperr.Is(err, apperr.KindUnauthorized) || apperr.Is(err, apperr.KindNotFound) {
		return models.Account{}, errInvalidLogin
	}
	return out, err
}

func (s *Remote) LookupByEmail(ctx context.Context, email string) (models.Account, error) {
	var out models.Account
	err := s.c.Get(ctx, "", "/api/auth/lookup", url.Values{"email": {email}}, &out)
	return out, err
}

func (s *Remote) UpdateLocale(ctx context.Context, v models.Viewer, locale string) error {
	return s.c.Put(ctx, v.Token, "/api/auth/me/locale", map[string]string{"locale": locale}, nil)
}
