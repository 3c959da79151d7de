package api

import (
	"context"
	"fmt"
	"net/http"
)

// Login exchanges credentials for a bearer token. Credentials are validated
// locally first so a malformed email never leaves the process.
func (c *Client) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	if err := validate.Struct(req); err != nil {
		return AuthResponse{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	var payload AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", req, &payload); err != nil {
		return AuthResponse{}, err
	}
	return payload, nil
}

// Register creates an account and returns the same token envelope as Login.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	if err := validate.Struct(req); err != nil {
		return AuthResponse{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	var payload AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", req, &payload); err != nil {
		return AuthResponse{}, err
	}
	return payload, nil
}
