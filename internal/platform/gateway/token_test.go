package gateway

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"
)

// makeToken builds an unsigned JWT-shaped token with the given expiry. The
// gateway never verifies signatures, so a dummy third segment is enough.
func makeToken(t *testing.T, exp time.Time) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	payload, err := json.Marshal(map[string]int64{"exp": exp.Unix()})
	if err != nil {
		t.Fatal(err)
	}
	claims := base64.RawURLEncoding.EncodeToString(payload)
	return header + "." + claims + ".sig"
}

// makeTokenNoExp builds a token whose payload has no exp claim.
func makeTokenNoExp(t *testing.T) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	claims := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"user"}`))
	return header + "." + claims + ".sig"
}

func TestAboutToExpire(t *testing.T) {
	now := time.Now()
	window := 5 * time.Minute

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"expires in 4 minutes", makeToken(t, now.Add(4*time.Minute)), true},
		{"expires in 6 minutes", makeToken(t, now.Add(6*time.Minute)), false},
		{"already expired", makeToken(t, now.Add(-time.Minute)), true},
		{"malformed token", "not-a-token", true},
		{"no exp claim", makeTokenNoExp(t), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := aboutToExpire(tt.token, window, now); got != tt.want {
				t.Errorf("aboutToExpire = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()

	if expired(makeToken(t, now.Add(time.Hour)), now) {
		t.Error("future token reported expired")
	}
	if !expired(makeToken(t, now.Add(-time.Second)), now) {
		t.Error("past token not reported expired")
	}
	if !expired("garbage", now) {
		t.Error("malformed token should count as expired")
	}
}

func TestParseExpiry(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)

	got, err := parseExpiry(makeToken(t, exp))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(exp) {
		t.Errorf("expected %v, got %v", exp, got)
	}

	if _, err := parseExpiry(makeTokenNoExp(t)); err == nil {
		t.Error("expected error for token without exp")
	}
	if _, err := parseExpiry("x.y"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestValidationError(t *testing.T) {
	ve := &ValidationError{Body: []byte(`{"mensaje":"datos incompletos","numero_documento":"requerido","edad":42}`)}

	if ve.Error() != "datos incompletos" {
		t.Errorf("unexpected message %q", ve.Error())
	}

	fields := ve.Fields()
	if fields["numero_documento"] != "requerido" {
		t.Errorf("expected field message, got %v", fields)
	}
	if _, ok := fields["edad"]; ok {
		t.Error("non-string values must be skipped")
	}

	if (&ValidationError{Body: []byte(`garbage`)}).Fields() != nil {
		t.Error("expected nil fields for non-JSON body")
	}
}

func TestExtractMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"mensaje field", `{"mensaje":"paciente no encontrado"}`, "paciente no encontrado"},
		{"error field", `{"error":"boom"}`, "boom"},
		{"message field", `{"message":"nope"}`, "nope"},
		{"mensaje wins", `{"message":"b","mensaje":"a"}`, "a"},
		{"not json", `<html>`, "fallback"},
		{"empty object", `{}`, "fallback"},
		{"non-string value", `{"mensaje":5}`, "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractMessage([]byte(tt.body), "fallback"); got != tt.want {
				t.Errorf("extractMessage = %q, want %q", got, tt.want)
			}
		})
	}
}
