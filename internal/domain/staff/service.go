// Package staff wraps the hospital API's personnel endpoints.
package staff

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sigh/sigh/internal/platform/gateway"
)

// Dispatcher is the slice of the gateway this service uses.
type Dispatcher interface {
	Dispatch(ctx context.Context, method, path string, body any, opts ...gateway.RequestOption) (*gateway.Response, error)
}

// Service provides staff operations.
type Service struct {
	api Dispatcher
}

// NewService creates a new staff service.
func NewService(api Dispatcher) *Service {
	return &Service{api: api}
}

// List returns staff members, optionally filtered by role.
func (s *Service) List(ctx context.Context, role string) ([]Member, error) {
	path := "/personal"
	if role != "" {
		v := url.Values{}
		v.Set("cargo", role)
		path += "?" + v.Encode()
	}

	resp, err := s.api.Dispatch(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var members []Member
	if err := resp.Decode(&members); err != nil {
		return nil, fmt.Errorf("decode staff list: %w", err)
	}
	return members, nil
}

// Register creates a staff member record.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Member, error) {
	if input.DocumentNumber == "" {
		return nil, fmt.Errorf("document number is required")
	}
	if input.FirstNames == "" || input.LastNames == "" {
		return nil, fmt.Errorf("staff name is required")
	}
	if input.Role == "" {
		return nil, fmt.Errorf("role is required")
	}

	resp, err := s.api.Dispatch(ctx, http.MethodPost, "/registrarPersonal", input)
	if err != nil {
		return nil, err
	}
	if resp.Status == http.StatusBadRequest {
		return nil, &gateway.ValidationError{Body: resp.Data}
	}

	var m Member
	if err := resp.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode registered staff: %w", err)
	}
	return &m, nil
}
