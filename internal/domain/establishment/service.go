// Package establishment wraps the hospital API's establishment catalog.
package establishment

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sigh/sigh/internal/platform/gateway"
)

// Dispatcher is the slice of the gateway this service uses.
type Dispatcher interface {
	Dispatch(ctx context.Context, method, path string, body any, opts ...gateway.RequestOption) (*gateway.Response, error)
}

// Service provides establishment catalog operations.
type Service struct {
	api Dispatcher
}

// NewService creates a new establishment service.
func NewService(api Dispatcher) *Service {
	return &Service{api: api}
}

// List returns the establishments known to the API.
func (s *Service) List(ctx context.Context) ([]Establishment, error) {
	resp, err := s.api.Dispatch(ctx, http.MethodGet, "/establecimientos", nil)
	if err != nil {
		return nil, err
	}

	var establishments []Establishment
	if err := resp.Decode(&establishments); err != nil {
		return nil, fmt.Errorf("decode establishment list: %w", err)
	}
	return establishments, nil
}
