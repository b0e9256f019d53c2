// Package hospitalization wraps the hospital API's inpatient stay endpoints.
package hospitalization

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

// Service provides hospitalization operations.
type Service struct {
	api Dispatcher
}

// NewService creates a new hospitalization service.
func NewService(api Dispatcher) *Service {
	return &Service{api: api}
}

// List returns stays, optionally filtered by state.
func (s *Service) List(ctx context.Context, status string) ([]Hospitalization, error) {
	path := "/hospitalizaciones"
	if status != "" {
		v := url.Values{}
		v.Set("estado", status)
		path += "?" + v.Encode()
	}

	resp, err := s.api.Dispatch(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var stays []Hospitalization
	if err := resp.Decode(&stays); err != nil {
		return nil, fmt.Errorf("decode hospitalization list: %w", err)
	}
	return stays, nil
}

// Admit registers an inpatient stay for a patient in a bed.
func (s *Service) Admit(ctx context.Context, input AdmitInput) (*Hospitalization, error) {
	if input.PatientID <= 0 || input.BedID <= 0 {
		return nil, fmt.Errorf("patient and bed ids are required")
	}
	if input.DiagnosisCode == "" {
		return nil, fmt.Errorf("diagnosis code is required")
	}

	resp, err := s.api.Dispatch(ctx, http.MethodPost, "/registrarHospitalizacion", input)
	if err != nil {
		return nil, err
	}
	if resp.Status == http.StatusBadRequest {
		return nil, &gateway.ValidationError{Body: resp.Data}
	}

	var stay Hospitalization
	if err := resp.Decode(&stay); err != nil {
		return nil, fmt.Errorf("decode hospitalization: %w", err)
	}
	return &stay, nil
}

// Discharge ends a stay.
func (s *Service) Discharge(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("hospitalization id is required")
	}

	resp, err := s.api.Dispatch(ctx, http.MethodPut, fmt.Sprintf("/darAlta/%d", id), nil)
	if err != nil {
		return err
	}
	if resp.Status == http.StatusBadRequest {
		return &gateway.ValidationError{Body: resp.Data}
	}
	return nil
}
