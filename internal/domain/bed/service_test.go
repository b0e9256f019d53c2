package bed

import (
	"context"
	"encoding/base64"
	"errors"
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
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	exp := strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10)
	claims := base64.RawURLEncoding.EncodeToString([]byte(`{"exp":` + exp + `}`))

	store := session.NewMemoryStore()
	store.Set(session.KeyToken, header+"."+claims+".sig")
	return gateway.NewClient(url, store, zerolog.Nop())
}

func newFakeAPI(t *testing.T) (*echo.Echo, *httptest.Server) {
	t.Helper()
	e := echo.New()
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return e, srv
}

func TestList_ScopedToEstablishment(t *testing.T) {
	e, srv := newFakeAPI(t)
	e.GET("/camas", func(c echo.Context) error {
		if c.QueryParam("id_establecimiento") != "5" {
			t.Errorf("unexpected establishment %q", c.QueryParam("id_establecimiento"))
		}
		return c.JSON(http.StatusOK, []Bed{
			{ID: 1, Code: "MED-101A", Status: StatusFree},
			{ID: 2, Code: "MED-101B", Status: StatusOccupied, PatientID: 7},
		})
	})

	svc := NewService(testGateway(t, srv.URL))

	beds, err := svc.List(context.Background(), "5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(beds) != 2 || beds[1].PatientID != 7 {
		t.Errorf("unexpected beds %+v", beds)
	}
}

func TestList_RequiresEstablishment(t *testing.T) {
	svc := NewService(testGateway(t, "http://unused"))

	if _, err := svc.List(context.Background(), ""); err == nil {
		t.Error("expected error for missing establishment")
	}
}

func TestAssign_400SurfacesOccupied(t *testing.T) {
	e, srv := newFakeAPI(t)
	e.PUT("/asignarCama/2", func(c echo.Context) error {
		return c.JSON(http.StatusBadRequest, map[string]string{"mensaje": "cama ocupada"})
	})

	svc := NewService(testGateway(t, srv.URL))

	err := svc.Assign(context.Background(), 2, 7)
	var ve *gateway.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestRelease(t *testing.T) {
	released := false
	e, srv := newFakeAPI(t)
	e.PUT("/liberarCama/2", func(c echo.Context) error {
		released = true
		return c.NoContent(http.StatusNoContent)
	})

	svc := NewService(testGateway(t, srv.URL))

	if err := svc.Release(context.Background(), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !released {
		t.Error("release endpoint was not called")
	}
}
