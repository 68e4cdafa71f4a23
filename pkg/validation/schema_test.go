package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserSchema(t *testing.T) {
	s := UserSchema()
	assert.Equal(t, "object", s.Type)
	assert.Equal(t, "User", s.Title)
	assert.ElementsMatch(t, []string{"id", "timeJoinedTs", "name", "pictureUrl"}, s.Required)

	b, err := json.Marshal(s)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, false, doc["additionalProperties"])

	props := doc["properties"].(map[string]any)
	assert.Equal(t, "uri", props["pictureUrl"].(map[string]any)["format"])
}

func TestUserResponseSchema(t *testing.T) {
	s := UserResponseSchema()
	assert.Equal(t, []string{"user"}, s.Required)

	user, ok := s.Properties.Get("user")
	require.True(t, ok)
	assert.Equal(t, "object", user.Type)
	assert.ElementsMatch(t, []string{"id", "timeJoinedTs", "name", "pictureUrl"}, user.Required)
}

func TestAuth0UserSchema(t *testing.T) {
	b, err := json.Marshal(Auth0UserSchema())
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.NotEqual(t, false, doc["additionalProperties"])
	assert.ElementsMatch(t, []any{"user_id", "name", "picture"}, doc["required"])
}
