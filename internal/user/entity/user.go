package entity

import (
	"time"

	"github.com/ovaphlow/pitchfork/identity-sdk-go/pkg/validation"
)

// User is a row of the `identity_users` table. Users are created from Auth0
// profiles and keyed by the Auth0 user id.
type User struct {
	ID          int64     `db:"id"`
	Auth0UserID string    `db:"auth0_user_id"`
	Name        string    `db:"name"`
	PictureURL  string    `db:"picture_url"`
	TimeJoined  time.Time `db:"time_joined"`
}

// Public returns the externally visible projection served on GET /user.
func (u *User) Public() validation.User {
	return validation.User{
		ID:         u.ID,
		TimeJoined: u.TimeJoined.UTC().Truncate(time.Second),
		Name:       u.Name,
		PictureURL: u.PictureURL,
	}
}
