// Package admin wraps the hospital API's user administration endpoints.
// Every operation is gated on the signed-in user holding the admin user
// type; the API enforces this too, the local check just fails fast.
package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sigh/sigh/internal/platform/gateway"
	"github.com/sigh/sigh/internal/platform/session"
)

// ErrNotAdmin is returned when the signed-in user is not an administrator.
var ErrNotAdmin = errors.New("admin: current user is not an administrator")

// Dispatcher is the slice of the gateway this service uses.
type Dispatcher interface {
	Dispatch(ctx context.Context, method, path string, body any, opts ...gateway.RequestOption) (*gateway.Response, error)
}

// Service provides user administration operations.
type Service struct {
	api   Dispatcher
	store session.Store
}

// NewService creates a new admin service.
func NewService(api Dispatcher, store session.Store) *Service {
	return &Service{api: api, store: store}
}

func (s *Service) requireAdmin() error {
	if !session.LoadProfile(s.store).IsAdmin() {
		return ErrNotAdmin
	}
	return nil
}

// ListUsers returns the user accounts of the signed-in user's establishment.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}

	resp, err := s.api.Dispatch(ctx, http.MethodGet, "/usuarios", nil)
	if err != nil {
		return nil, err
	}

	var users []User
	if err := resp.Decode(&users); err != nil {
		return nil, fmt.Errorf("decode user list: %w", err)
	}
	return users, nil
}

// CreateUser creates a user account.
func (s *Service) CreateUser(ctx context.Context, input CreateInput) (*User, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	if input.Username == "" || input.Password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	if input.UserTypeID == "" {
		return nil, fmt.Errorf("user type is required")
	}

	resp, err := s.api.Dispatch(ctx, http.MethodPost, "/crearUsuario", input)
	if err != nil {
		return nil, err
	}
	if resp.Status == http.StatusBadRequest {
		return nil, &gateway.ValidationError{Body: resp.Data}
	}

	var u User
	if err := resp.Decode(&u); err != nil {
		return nil, fmt.Errorf("decode created user: %w", err)
	}
	return &u, nil
}

// UpdateUser modifies a user account.
func (s *Service) UpdateUser(ctx context.Context, id int64, input UpdateInput) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	if id <= 0 {
		return fmt.Errorf("user id is required")
	}

	resp, err := s.api.Dispatch(ctx, http.MethodPut, fmt.Sprintf("/actualizarUsuario/%d", id), input)
	if err != nil {
		return err
	}
	if resp.Status == http.StatusBadRequest {
		return &gateway.ValidationError{Body: resp.Data}
	}
	return nil
}

// ResetPassword sets a temporary password on a user account.
func (s *Service) ResetPassword(ctx context.Context, id int64, password string) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	if id <= 0 {
		return fmt.Errorf("user id is required")
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	body := map[string]string{"contrasena": password}
	resp, err := s.api.Dispatch(ctx, http.MethodPut, fmt.Sprintf("/resetearContrasena/%d", id), body)
	if err != nil {
		return err
	}
	if resp.Status == http.StatusBadRequest {
		return &gateway.ValidationError{Body: resp.Data}
	}
	return nil
}
