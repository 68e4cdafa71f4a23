package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Auth0User is the user profile reported by Auth0.
type Auth0User struct {
	UserID  string `json:"user_id" jsonschema:"description=The unique id assigned by Auth0 for this user"`
	Name    string `json:"name" jsonschema:"description=The name of the user as extracted by Auth0"`
	Picture string `json:"picture" jsonschema:"format=uri,description=URL of the user's picture"`
}

// auth0Payload detects presence; pointers distinguish absent from empty.
type auth0Payload struct {
	UserID  *string `json:"user_id" validate:"required"`
	Name    *string `json:"name" validate:"required"`
	Picture *string `json:"picture" validate:"required"`
}

// Auth0UserValidator validates the raw JSON text of an Auth0 user profile.
// Unknown properties are ignored. Every failure is reported as the same
// *Error, whatever its cause.
type Auth0UserValidator struct {
	urls     Validator[string]
	validate *validator.Validate
}

func NewAuth0UserValidator(urls Validator[string]) *Auth0UserValidator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return &Auth0UserValidator{urls: urls, validate: validate}
}

// Validate accepts the payload as a string or a byte slice.
func (v *Auth0UserValidator) Validate(raw any) (Auth0User, error) {
	var data []byte
	switch r := raw.(type) {
	case string:
		data = []byte(r)
	case []byte:
		data = r
	case json.RawMessage:
		data = r
	default:
		return Auth0User{}, errorf("could not validate Auth0 user: expected JSON text, got %s", typeName(raw))
	}

	var p auth0Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Auth0User{}, wrap("could not validate Auth0 user", err)
	}
	if err := v.validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return Auth0User{}, errorf("could not validate Auth0 user: missing required property %q", verrs[0].Field())
		}
		return Auth0User{}, wrap("could not validate Auth0 user", err)
	}
	picture, err := v.urls.Validate(*p.Picture)
	if err != nil {
		return Auth0User{}, wrap("could not validate Auth0 user", err)
	}
	return Auth0User{UserID: *p.UserID, Name: *p.Name, Picture: picture}, nil
}
