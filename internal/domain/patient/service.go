// Package patient wraps the hospital API's patient admission endpoints.
package patient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sigh/sigh/internal/platform/gateway"
	"github.com/sigh/sigh/pkg/pagination"
)

// Dispatcher is the slice of the gateway this service uses.
type Dispatcher interface {
	Dispatch(ctx context.Context, method, path string, body any, opts ...gateway.RequestOption) (*gateway.Response, error)
}

// Service provides patient operations.
type Service struct {
	api Dispatcher
}

// NewService creates a new patient service.
func NewService(api Dispatcher) *Service {
	return &Service{api: api}
}

// List returns a page of patients.
func (s *Service) List(ctx context.Context, page pagination.Params) ([]Patient, error) {
	resp, err := s.api.Dispatch(ctx, http.MethodGet, "/pacientes?"+page.Values().Encode(), nil)
	if err != nil {
		return nil, err
	}

	var patients []Patient
	if err := resp.Decode(&patients); err != nil {
		return nil, fmt.Errorf("decode patient list: %w", err)
	}
	return patients, nil
}

// FindByDocument looks a patient up by document number. A 404 means the
// patient is not registered and yields (nil, nil).
func (s *Service) FindByDocument(ctx context.Context, document string) (*Patient, error) {
	if document == "" {
		return nil, fmt.Errorf("document number is required")
	}

	v := url.Values{}
	v.Set("documento", document)

	resp, err := s.api.Dispatch(ctx, http.MethodGet, "/buscarPaciente?"+v.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if resp.Status == http.StatusNotFound {
		return nil, nil
	}

	var p Patient
	if err := resp.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode patient: %w", err)
	}
	return &p, nil
}

// Register creates a new patient. A 400 from the API surfaces as a
// *gateway.ValidationError carrying the field-level messages.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Patient, error) {
	if input.DocumentNumber == "" {
		return nil, fmt.Errorf("document number is required")
	}
	if input.FirstNames == "" || input.LastNames == "" {
		return nil, fmt.Errorf("patient name is required")
	}

	resp, err := s.api.Dispatch(ctx, http.MethodPost, "/registrarPaciente", input)
	if err != nil {
		return nil, err
	}
	if resp.Status == http.StatusBadRequest {
		return nil, &gateway.ValidationError{Body: resp.Data}
	}

	var p Patient
	if err := resp.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode registered patient: %w", err)
	}
	return &p, nil
}

// Update modifies a patient's contact data.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) error {
	if id <= 0 {
		return fmt.Errorf("patient id is required")
	}

	resp, err := s.api.Dispatch(ctx, http.MethodPut, fmt.Sprintf("/actualizarPaciente/%d", id), input)
	if err != nil {
		return err
	}
	if resp.Status == http.StatusBadRequest {
		return &gateway.ValidationError{Body: resp.Data}
	}
	return nil
}
