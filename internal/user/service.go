package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ovaphlow/pitchfork/identity-sdk-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/identity-sdk-go/pkg/validation"
)

// Store is the persistence the service needs; *repo.UserRepo implements it.
type Store interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	UpsertAuth0(ctx context.Context, u *entity.User) (*entity.User, error)
}

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidAuth0User = errors.New("invalid Auth0 user")
)

// UserService resolves and registers identity users.
type UserService struct {
	store  Store
	auth0  validation.Validator[validation.Auth0User]
	nextID func() int64
	now    func() time.Time
}

// NewUserService builds a service allocating ids for new users with nextID.
func NewUserService(store Store, nextID func() int64) *UserService {
	return &UserService{
		store:  store,
		auth0:  validation.NewAuth0UserValidator(validation.NewURLValidator()),
		nextID: nextID,
		now:    time.Now,
	}
}

// GetUser returns the user with the given id or ErrUserNotFound.
func (s *UserService) GetUser(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

// IngestAuth0 validates the raw Auth0 profile JSON and registers or refreshes
// the matching user.
func (s *UserService) IngestAuth0(ctx context.Context, raw []byte) (*entity.User, error) {
	a, err := s.auth0.Validate(raw)
	if err != nil {
		return nil, errors.Join(ErrInvalidAuth0User, err)
	}
	// A fresh id is drawn on every call; on conflict the store keeps the
	// existing id and the drawn one is discarded.
	u, err := s.store.UpsertAuth0(ctx, &entity.User{
		ID:          s.nextID(),
		Auth0UserID: a.UserID,
		Name:        a.Name,
		PictureURL:  a.Picture,
		TimeJoined:  s.now().UTC().Truncate(time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("upsert auth0 user %q: %w", a.UserID, err)
	}
	return u, nil
}
