package validation

import "regexp"

var bearerPattern = regexp.MustCompile(`^Bearer (.+)`)

// AccessTokenHeaderValidator extracts the access token from an
// Authorization header value of the form "Bearer <token>".
type AccessTokenHeaderValidator struct{}

func (AccessTokenHeaderValidator) Validate(raw any) (string, error) {
	header, ok := raw.(string)
	if !ok {
		return "", errorf("invalid or missing header")
	}
	m := bearerPattern.FindStringSubmatch(header)
	if m == nil {
		return "", errorf("invalid or missing header")
	}
	return m[1], nil
}
