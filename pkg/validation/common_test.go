package validation

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDValidator(t *testing.T) {
	v := IDValidator{}

	id, err := v.Validate(json.Number("1834729348572938457"))
	require.NoError(t, err)
	assert.Equal(t, int64(1834729348572938457), id)

	id, err = v.Validate(float64(7))
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	for _, raw := range []any{json.Number("0"), json.Number("-4"), json.Number("1.5"), float64(2.25), "12", nil, true} {
		_, err := v.Validate(raw)
		assert.Error(t, err, "raw=%v", raw)
	}
}

func TestDateTimeTsValidator(t *testing.T) {
	v := DateTimeTsValidator{}

	ts, err := v.Validate(json.Number("1500000000"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2017, time.July, 14, 2, 40, 0, 0, time.UTC), ts)

	ts, err = v.Validate(json.Number("0"))
	require.NoError(t, err)
	assert.Equal(t, time.Unix(0, 0).UTC(), ts)

	for _, raw := range []any{json.Number("-1"), json.Number("12.5"), "2017-07-14T02:40:00Z", nil} {
		_, err := v.Validate(raw)
		assert.Error(t, err, "raw=%v", raw)
	}
}

func TestURLValidator(t *testing.T) {
	v := NewURLValidator()

	for _, raw := range []string{"https://example.com/a.png", "http://localhost:8080/pic", "https://s.gravatar.com/avatar/x?s=480"} {
		got, err := v.Validate(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, raw, got)
	}
	for _, raw := range []any{"", "not a url", "example.com/pic.png", 42, nil} {
		_, err := v.Validate(raw)
		var verr *Error
		assert.ErrorAs(t, err, &verr, "raw=%v", raw)
	}
}
