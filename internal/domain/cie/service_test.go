package cie

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sigh/sigh/internal/platform/gateway"
	"github.com/sigh/sigh/internal/platform/session"
)

func testGateway(t *testing.T, url string) *gateway.Client {
	t.Helper()
	store := session.NewMemoryStore()
	store.Set(session.KeyToken, testToken())
	return gateway.NewClient(url, store, zerolog.Nop())
}

// testToken builds an unsigned token expiring in an hour, far outside the
// renewal window.
func testToken() string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	exp := strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10)
	claims := base64.RawURLEncoding.EncodeToString([]byte(`{"exp":` + exp + `}`))
	return header + "." + claims + ".sig"
}

func newFakeAPI(t *testing.T) (*echo.Echo, *httptest.Server) {
	t.Helper()
	e := echo.New()
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return e, srv
}

func TestSearch_ReturnsCatalogMatches(t *testing.T) {
	e, srv := newFakeAPI(t)
	e.GET("/buscarDatosCie", func(c echo.Context) error {
		if c.QueryParam("query") != "grip" {
			t.Errorf("unexpected query %q", c.QueryParam("query"))
		}
		if c.QueryParam("modo") != ModeDiagnosis {
			t.Errorf("unexpected mode %q", c.QueryParam("modo"))
		}
		return c.JSON(http.StatusOK, []Code{
			{CodigoCie: "J11", NombreCie: "Influenza, virus no identificado"},
			{CodigoCie: "J10", NombreCie: "Influenza por otro virus"},
		})
	})

	svc := NewService(testGateway(t, srv.URL))

	codes, err := svc.Search(context.Background(), "grip", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(codes) != 2 {
		t.Fatalf("expected 2 codes, got %d", len(codes))
	}
	if codes[0].CodigoCie != "J11" {
		t.Errorf("unexpected first code %+v", codes[0])
	}
}

func TestSearch_404MeansNoMatches(t *testing.T) {
	e, srv := newFakeAPI(t)
	e.GET("/buscarDatosCie", func(c echo.Context) error {
		return c.NoContent(http.StatusNotFound)
	})

	svc := NewService(testGateway(t, srv.URL))

	codes, err := svc.Search(context.Background(), "zzzz", ModeDiagnosis)
	if err != nil {
		t.Fatalf("404 must not be an error, got %v", err)
	}
	if len(codes) != 0 {
		t.Errorf("expected no codes, got %v", codes)
	}
}

func TestSearch_EmptyQueryRejectedLocally(t *testing.T) {
	var hit bool
	e, srv := newFakeAPI(t)
	e.GET("/buscarDatosCie", func(c echo.Context) error {
		hit = true
		return c.JSON(http.StatusOK, []Code{})
	})

	svc := NewService(testGateway(t, srv.URL))

	if _, err := svc.Search(context.Background(), "", ModeDiagnosis); err == nil {
		t.Error("expected error for empty query")
	}
	if hit {
		t.Error("empty query must not reach the API")
	}
}

func TestSearcher_AdaptsToSuggestions(t *testing.T) {
	e, srv := newFakeAPI(t)
	e.GET("/buscarDatosCie", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []Code{
			{CodigoCie: "A09", NombreCie: "Diarrea y gastroenteritis"},
		})
	})

	searcher := NewSearcher(NewService(testGateway(t, srv.URL)))

	suggestions, err := searcher.Search(context.Background(), "diar", ModeDiagnosis)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(suggestions))
	}
	if suggestions[0].Code != "A09" || suggestions[0].Description != "Diarrea y gastroenteritis" {
		t.Errorf("unexpected suggestion %+v", suggestions[0])
	}
}
