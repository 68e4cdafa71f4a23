package validation

import (
	"encoding/json"
	"slices"
	"time"
)

// User is the externally visible user record served by the identity service.
// Values are only produced by UserValidator, so a User is always complete.
type User struct {
	ID         int64
	TimeJoined time.Time
	Name       string
	PictureURL string
}

// userWire is the JSON shape of a User.
type userWire struct {
	ID           int64  `json:"id" jsonschema:"minimum=1,description=Unique identifier of the user"`
	TimeJoinedTs int64  `json:"timeJoinedTs" jsonschema:"minimum=0,description=Unix time in seconds when the user joined"`
	Name         string `json:"name" jsonschema:"description=The user's human name"`
	PictureURL   string `json:"pictureUrl" jsonschema:"format=uri,description=URL of the user's picture"`
}

// MarshalJSON encodes the user in its wire form.
func (u User) MarshalJSON() ([]byte, error) {
	return json.Marshal(userWire{
		ID:           u.ID,
		TimeJoinedTs: u.TimeJoined.Unix(),
		Name:         u.Name,
		PictureURL:   u.PictureURL,
	})
}

var userFields = []string{"id", "timeJoinedTs", "name", "pictureUrl"}

// UserValidator validates a raw user object. The structure is checked first,
// then the id, timestamp and picture URL, stopping at the first failure.
type UserValidator struct {
	ids        Validator[int64]
	timestamps Validator[time.Time]
	urls       Validator[string]
}

// NewUserValidator composes a UserValidator from its field validators.
func NewUserValidator(ids Validator[int64], timestamps Validator[time.Time], urls Validator[string]) *UserValidator {
	return &UserValidator{ids: ids, timestamps: timestamps, urls: urls}
}

// NewDefaultUserValidator uses IDValidator, DateTimeTsValidator and URLValidator.
func NewDefaultUserValidator() *UserValidator {
	return NewUserValidator(IDValidator{}, DateTimeTsValidator{}, NewURLValidator())
}

func (v *UserValidator) Validate(raw any) (User, error) {
	obj, err := object(raw, "user", userFields)
	if err != nil {
		return User{}, err
	}
	if !isNumber(obj["id"]) {
		return User{}, errorf("user: id must be an integer, got %s", typeName(obj["id"]))
	}
	if !isNumber(obj["timeJoinedTs"]) {
		return User{}, errorf("user: timeJoinedTs must be an integer, got %s", typeName(obj["timeJoinedTs"]))
	}
	name, ok := obj["name"].(string)
	if !ok {
		return User{}, errorf("user: name must be a string, got %s", typeName(obj["name"]))
	}
	if _, ok := obj["pictureUrl"].(string); !ok {
		return User{}, errorf("user: pictureUrl must be a string, got %s", typeName(obj["pictureUrl"]))
	}

	id, err := v.ids.Validate(obj["id"])
	if err != nil {
		return User{}, wrap("user: id", err)
	}
	joined, err := v.timestamps.Validate(obj["timeJoinedTs"])
	if err != nil {
		return User{}, wrap("user: timeJoinedTs", err)
	}
	picture, err := v.urls.Validate(obj["pictureUrl"])
	if err != nil {
		return User{}, wrap("user: pictureUrl", err)
	}
	return User{ID: id, TimeJoined: joined, Name: name, PictureURL: picture}, nil
}

// UserResponse is the envelope returned by the identity service's user resource.
type UserResponse struct {
	User User `json:"user"`
}

// UserResponseValidator validates a raw {"user": ...} envelope.
type UserResponseValidator struct {
	users Validator[User]
}

func NewUserResponseValidator(users Validator[User]) *UserResponseValidator {
	return &UserResponseValidator{users: users}
}

func (v *UserResponseValidator) Validate(raw any) (UserResponse, error) {
	obj, err := object(raw, "user response", []string{"user"})
	if err != nil {
		return UserResponse{}, err
	}
	user, err := v.users.Validate(obj["user"])
	if err != nil {
		return UserResponse{}, wrap("user response", err)
	}
	return UserResponse{User: user}, nil
}

// object checks that raw is a JSON object holding exactly the given keys.
func object(raw any, what string, keys []string) (map[string]any, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, errorf("%s: expected object, got %s", what, typeName(raw))
	}
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			return nil, errorf("%s: missing required property %q", what, k)
		}
	}
	if len(obj) == len(keys) {
		return obj, nil
	}
	var extra []string
	for k := range obj {
		if !slices.Contains(keys, k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return nil, errorf("%s: additional property %q is not allowed", what, extra[0])
}

func isNumber(raw any) bool {
	return typeName(raw) == "number"
}
