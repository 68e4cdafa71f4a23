// Package identity talks to the identity service on behalf of API servers:
// Client resolves bearer tokens to users and AuthMiddleware enforces
// authentication on inbound requests.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/identity-sdk-go/pkg/validation"
)

// maxResponseBytes bounds how much of the identity service response is read.
const maxResponseBytes = 1 << 20

// Client is a client for the identity service. It makes a single request per
// call and never retries.
type Client struct {
	userURL    string
	httpClient *http.Client
	responses  validation.Validator[validation.UserResponse]
	tokens     validation.Validator[string]
	logger     *zap.SugaredLogger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for outbound requests.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.httpClient = c }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.SugaredLogger) ClientOption {
	return func(cl *Client) { cl.logger = l }
}

// WithUserResponseValidator replaces the validator applied to response bodies.
func WithUserResponseValidator(v validation.Validator[validation.UserResponse]) ClientOption {
	return func(cl *Client) { cl.responses = v }
}

// WithAccessTokenHeaderValidator replaces the validator applied to the
// Authorization header.
func WithAccessTokenHeaderValidator(v validation.Validator[string]) ClientOption {
	return func(cl *Client) { cl.tokens = v }
}

// NewClient returns a Client for the identity service at domain (host[:port]).
func NewClient(domain string, opts ...ClientOption) *Client {
	c := &Client{
		userURL:    fmt.Sprintf("http://%s/user", domain),
		httpClient: http.DefaultClient,
		responses:  validation.NewUserResponseValidator(validation.NewDefaultUserValidator()),
		tokens:     validation.AccessTokenHeaderValidator{},
		logger:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig builds a Client whose HTTP client honours cfg.Timeout.
// Options are applied afterwards and may override it.
func NewClientFromConfig(cfg Config, opts ...ClientOption) *Client {
	hc := &http.Client{Timeout: cfg.Timeout}
	return NewClient(cfg.Domain, append([]ClientOption{WithHTTPClient(hc)}, opts...)...)
}

// GetUser resolves the raw Authorization header value ("Bearer <token>") to
// the user it belongs to. All failures are returned as *ClientError.
func (c *Client) GetUser(ctx context.Context, authHeader string) (validation.User, error) {
	token, err := c.tokens.Validate(authHeader)
	if err != nil {
		return validation.User{}, c.fail(&ClientError{Kind: KindInvalidHeader, Reason: reasonValidation, Err: err})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userURL, nil)
	if err != nil {
		return validation.User{}, c.fail(&ClientError{Kind: KindUnreachable, Reason: reasonUnreachable, Err: fmt.Errorf("build user request: %w", err)})
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return validation.User{}, c.fail(&ClientError{Kind: KindUnreachable, Reason: reasonUnreachable, Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return validation.User{}, c.fail(&ClientError{
			Kind:       KindHTTPStatus,
			Reason:     reasonHTTP,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("identity service returned %s", resp.Status),
		})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return validation.User{}, c.fail(&ClientError{Kind: KindUnreachable, Reason: reasonUnreachable, Err: fmt.Errorf("read user response: %w", err)})
	}
	raw, err := decodeJSON(body)
	if err != nil {
		return validation.User{}, c.fail(&ClientError{Kind: KindInvalidResponse, Reason: reasonValidation, Err: &validation.Error{Reason: "could not decode user response", Err: err}})
	}
	ur, err := c.responses.Validate(raw)
	if err != nil {
		return validation.User{}, c.fail(&ClientError{Kind: KindInvalidResponse, Reason: reasonValidation, Err: err})
	}

	c.logger.Debugw("identity user resolved", "user_id", ur.User.ID)
	return ur.User, nil
}

func (c *Client) fail(err *ClientError) error {
	c.logger.Debugw("identity request failed", "kind", err.Kind.String(), "status", err.StatusCode, "err", err.Err)
	return err
}

func decodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after JSON value")
	}
	return raw, nil
}
