package accounts

import (
	"context"
	"errors"

	userstore "github.com/dalemusser/edusphere/internal/app/store/users"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/normalize"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Local checks bcrypt password hashes stored on the users collection.
type Local struct {
	users *userstore.Store
}

func NewLocal(db *mongo.Database) *Local {
	return &Local{users: userstore.New(db)}
}

// HashPassword returns the bcrypt hash stored for password accounts.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *Local) active(ctx context.Context, email string) (models.User, error) {
	u, err := s.users.GetByEmail(ctx, normalize.Email(email))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, errInvalidLogin
	}
	if err != nil {
		return models.User{}, err
	}
	if u.Status == models.StatusDisabled {
		return models.User{}, apperr.EK(apperr.KindForbidden, "auth.error.disabled", "account disabled")
	}
	return u, nil
}

func (s *Local) Authenticate(ctx context.Context, login, password string) (models.Account, error) {
	u, err := s.active(ctx, login)
	if err != nil {
		return models.Account{}, err
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return models.Account{}, errInvalidLogin
	}
	return models.Account{User: u}, nil
}

func (s *Local) LookupByEmail(ctx context.Context, email string) (models.Account, error) {
	u, err := s.active(ctx, email)
	if err != nil {
		return models.Account{}, err
	}
	return models.Account{User: u}, nil
}

func (s *Local) UpdateLocale(ctx context.Context, v models.Viewer, locale string) error {
	err := s.users.UpdateLocale(ctx, v.ID, locale)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.Wrap(apperr.KindNotFound, err, "account not found")
	}
	return err
}
