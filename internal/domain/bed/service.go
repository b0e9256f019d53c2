// Package bed wraps the hospital API's bed management endpoints.
package bed

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

// Service provides bed management operations.
type Service struct {
	api Dispatcher
}

// NewService creates a new bed service.
func NewService(api Dispatcher) *Service {
	return &Service{api: api}
}

// List returns the beds of an establishment.
func (s *Service) List(ctx context.Context, establishmentID string) ([]Bed, error) {
	if establishmentID == "" {
		return nil, fmt.Errorf("establishment id is required")
	}

	v := url.Values{}
	v.Set("id_establecimiento", establishmentID)

	resp, err := s.api.Dispatch(ctx, http.MethodGet, "/camas?"+v.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var beds []Bed
	if err := resp.Decode(&beds); err != nil {
		return nil, fmt.Errorf("decode bed list: %w", err)
	}
	return beds, nil
}

// Assign places a patient into a bed.
func (s *Service) Assign(ctx context.Context, bedID, patientID int64) error {
	if bedID <= 0 || patientID <= 0 {
		return fmt.Errorf("bed and patient ids are required")
	}

	body := map[string]int64{"id_paciente": patientID}
	resp, err := s.api.Dispatch(ctx, http.MethodPut, fmt.Sprintf("/asignarCama/%d", bedID), body)
	if err != nil {
		return err
	}
	if resp.Status == http.StatusBadRequest {
		return &gateway.ValidationError{Body: resp.Data}
	}
	return nil
}

// Release frees a bed.
func (s *Service) Release(ctx context.Context, bedID int64) error {
	if bedID <= 0 {
		return fmt.Errorf("bed id is required")
	}

	resp, err := s.api.Dispatch(ctx, http.MethodPut, fmt.Sprintf("/liberarCama/%d", bedID), nil)
	if err != nil {
		return err
	}
	if resp.Status == http.StatusBadRequest {
		return &gateway.ValidationError{Body: resp.Data}
	}
	return nil
}
