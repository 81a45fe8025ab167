package api

import (
	"context"
	"net/http"
)

// Auth endpoint paths, relative to the base URL
const (
	PathMe       = "/auth/me"
	PathLogin    = "/auth/login"
	PathRegister = "/auth/register"
	PathLogout   = "/auth/logout"
)

// Role is a marketplace user role
type Role string

const (
	RoleTenant Role = "tenant"
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
)

// Roles lists every known role
var Roles = []Role{RoleTenant, RoleOwner, RoleAdmin}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// User represents a marketplace user
type User struct {
	ID           string `json:"id" yaml:"id"`
	FirstName    string `json:"firstName" yaml:"firstName"`
	LastName     string `json:"lastName" yaml:"lastName"`
	Email        string `json:"email" yaml:"email"`
	Role         Role   `json:"role" yaml:"role"`
	ProfileImage string `json:"profileImage,omitempty" yaml:"profileImage,omitempty"`
}

// FullName joins first and last name
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      Role   `json:"role"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type meResponse struct {
	User *User `json:"user"`
}

// Me returns the user the stored token belongs to
func (c *Client) Me(ctx context.Context) (*User, error) {
	var resp meResponse
	if err := c.Do(ctx, http.MethodGet, PathMe, nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, &Error{StatusCode: http.StatusOK, Kind: KindServer, Message: "response has no user"}
	}
	return resp.User, nil
}

// Login exchanges credentials for a user and token
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.Do(ctx, http.MethodPost, PathLogin, LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if err := resp.validate(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns its user and token
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.Do(ctx, http.MethodPost, PathRegister, req, &resp); err != nil {
		return nil, err
	}
	if err := resp.validate(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout asks the server to invalidate the stored token. The response body
// is ignored.
func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, PathLogout, nil, nil)
}

func (r *AuthResponse) validate() error {
	if r.User == nil || r.Token == "" {
		return &Error{StatusCode: http.StatusOK, Kind: KindServer, Message: "response has no user or token"}
	}
	return nil
}
