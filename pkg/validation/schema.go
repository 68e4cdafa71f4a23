package validation

import "github.com/invopop/jsonschema"

type userResponseWire struct {
	User userWire `json:"user"`
}

// UserSchema describes the JSON accepted by UserValidator.
func UserSchema() *jsonschema.Schema {
	s := reflectSchema[userWire](false)
	s.Title = "User"
	s.Description = "Externally visible user info"
	return s
}

// UserResponseSchema describes the JSON accepted by UserResponseValidator.
func UserResponseSchema() *jsonschema.Schema {
	s := reflectSchema[userResponseWire](false)
	s.Title = "User response"
	s.Description = "Response from the user resource"
	return s
}

// Auth0UserSchema describes the JSON accepted by Auth0UserValidator.
func Auth0UserSchema() *jsonschema.Schema {
	s := reflectSchema[Auth0User](true)
	s.Title = "Auth0 user"
	s.Description = "JSON returned by Auth0 to describe a particular user"
	return s
}

func reflectSchema[T any](allowAdditional bool) *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference:            true,
		ExpandedStruct:            true,
		AllowAdditionalProperties: allowAdditional,
	}
	return r.Reflect(new(T))
}
