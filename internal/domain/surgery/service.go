// Package surgery wraps the hospital API's surgery scheduling endpoints.
package surgery

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

// Service provides surgery scheduling operations.
type Service struct {
	api Dispatcher
}

// NewService creates a new surgery service.
func NewService(api Dispatcher) *Service {
	return &Service{api: api}
}

// List returns the surgeries programmed for a date (YYYY-MM-DD). An empty
// date lists today's board server-side.
func (s *Service) List(ctx context.Context, date string) ([]Surgery, error) {
	v := url.Values{}
	if date != "" {
		v.Set("fecha", date)
	}

	path := "/cirugias"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}

	resp, err := s.api.Dispatch(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var surgeries []Surgery
	if err := resp.Decode(&surgeries); err != nil {
		return nil, fmt.Errorf("decode surgery list: %w", err)
	}
	return surgeries, nil
}

// Schedule programs a new surgery.
func (s *Service) Schedule(ctx context.Context, input ScheduleInput) (*Surgery, error) {
	if input.PatientID <= 0 {
		return nil, fmt.Errorf("patient id is required")
	}
	if input.Date == "" || input.StartTime == "" {
		return nil, fmt.Errorf("date and start time are required")
	}
	if input.DiagnosisCode == "" {
		return nil, fmt.Errorf("diagnosis code is required")
	}

	resp, err := s.api.Dispatch(ctx, http.MethodPost, "/programarCirugia", input)
	if err != nil {
		return nil, err
	}
	if resp.Status == http.StatusBadRequest {
		return nil, &gateway.ValidationError{Body: resp.Data}
	}

	var scheduled Surgery
	if err := resp.Decode(&scheduled); err != nil {
		return nil, fmt.Errorf("decode scheduled surgery: %w", err)
	}
	return &scheduled, nil
}

// UpdateStatus transitions a surgery to a new state.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) error {
	if id <= 0 {
		return fmt.Errorf("surgery id is required")
	}
	switch status {
	case StatusScheduled, StatusInProgress, StatusDone, StatusSuspended:
	default:
		return fmt.Errorf("unknown surgery status %q", status)
	}

	body := map[string]string{"estado": status}
	resp, err := s.api.Dispatch(ctx, http.MethodPut, fmt.Sprintf("/actualizarEstadoCirugia/%d", id), body)
	if err != nil {
		return err
	}
	if resp.Status == http.StatusBadRequest {
		return &gateway.ValidationError{Body: resp.Data}
	}
	return nil
}

// Suspend cancels a programmed surgery with a reason.
func (s *Service) Suspend(ctx context.Context, id int64, reason string) error {
	if id <= 0 {
		return fmt.Errorf("surgery id is required")
	}
	if reason == "" {
		return fmt.Errorf("suspension reason is required")
	}

	body := map[string]string{"motivo": reason}
	resp, err := s.api.Dispatch(ctx, http.MethodPut, fmt.Sprintf("/suspenderCirugia/%d", id), body)
	if err != nil {
		return err
	}
	if resp.Status == http.StatusBadRequest {
		return &gateway.ValidationError{Body: resp.Data}
	}
	return nil
}
