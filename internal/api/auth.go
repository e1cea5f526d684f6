package api

import (
	"context"
	"net/http"

	"github.com/digitalhat/storefront/internal/domain"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// AuthResponse carries the session credentials issued by the backend.
// Token is empty on a registration response that still awaits OTP
// verification.
type AuthResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.request(ctx, http.MethodPost, "/api/auth/login", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.request(ctx, http.MethodPost, "/api/auth/register", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.request(ctx, http.MethodPost, "/api/auth/verify-otp", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.request(ctx, http.MethodGet, "/api/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
