// Package cie wraps the hospital API's CIE-10 catalog search and adapts it
// to the autocomplete controller.
package cie

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sigh/sigh/internal/platform/autocomplete"
	"github.com/sigh/sigh/internal/platform/gateway"
)

// Dispatcher is the slice of the gateway this service uses.
type Dispatcher interface {
	Dispatch(ctx context.Context, method, path string, body any, opts ...gateway.RequestOption) (*gateway.Response, error)
}

// Service provides CIE-10 catalog searches.
type Service struct {
	api Dispatcher
}

// NewService creates a new CIE-10 service.
func NewService(api Dispatcher) *Service {
	return &Service{api: api}
}

// Search queries the CIE-10 catalog. A 404 from the API means "no matches"
// and yields an empty slice, never an error.
func (s *Service) Search(ctx context.Context, query, mode string) ([]Code, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if mode == "" {
		mode = ModeDiagnosis
	}

	v := url.Values{}
	v.Set("query", query)
	v.Set("modo", mode)

	resp, err := s.api.Dispatch(ctx, http.MethodGet, "/buscarDatosCie?"+v.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var codes []Code
	if err := resp.Decode(&codes); err != nil {
		return nil, fmt.Errorf("decode cie search response: %w", err)
	}
	return codes, nil
}

// Searcher adapts the service to the autocomplete controller.
type Searcher struct {
	svc *Service
}

// NewSearcher wraps the service for use as an autocomplete backend.
func NewSearcher(svc *Service) *Searcher {
	return &Searcher{svc: svc}
}

// Search implements autocomplete.Searcher.
func (a *Searcher) Search(ctx context.Context, query, mode string) ([]autocomplete.Suggestion, error) {
	codes, err := a.svc.Search(ctx, query, mode)
	if err != nil {
		return nil, err
	}
	suggestions := make([]autocomplete.Suggestion, 0, len(codes))
	for _, c := range codes {
		suggestions = append(suggestions, autocomplete.Suggestion{
			Code:        c.CodigoCie,
			Description: c.NombreCie,
		})
	}
	return suggestions, nil
}
