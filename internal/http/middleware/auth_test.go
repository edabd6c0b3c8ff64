package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/studsovet/go-forms-backend/internal/auth"
)

// stubValidator accepts exactly one token value.
type stubValidator struct {
	accept   string
	identity auth.Identity
}

func (s stubValidator) Validate(token string) *auth.Identity {
	if token == s.accept {
		id := s.identity
		return &id
	}
	return nil
}

func newAuthRouter(t *testing.T, required bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	v := stubValidator{
		accept:   "good-token",
		identity: auth.Identity{UserID: 42, FirstName: "A"},
	}

	r := gin.New()
	var gate gin.HandlerFunc
	if required {
		gate = RequireAuth(v)
	} else {
		gate = OptionalAuth(v)
	}
	r.GET("/whoami", gate, func(c *gin.Context) {
		id := IdentityFrom(c)
		if id == nil {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"responder_id": ResponderID(c), "user_id": id.UserID})
	})
	return r
}

func doWhoami(t *testing.T, r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	w := doWhoami(t, newAuthRouter(t, true), "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["code"] != "unauthorized" {
		t.Fatalf("code = %v", body["code"])
	}
}

func TestRequireAuth_BadFormat(t *testing.T) {
	r := newAuthRouter(t, true)
	for _, h := range []string{"good-token", "Basic good-token", "Bearer", "Bearer  ", "bearer good-token"} {
		if w := doWhoami(t, r, h); w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want 401", h, w.Code)
		}
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	w := doWhoami(t, newAuthRouter(t, true), "Bearer wrong-token")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuth_ValidTokenAttachesIdentity(t *testing.T) {
	w := doWhoami(t, newAuthRouter(t, true), "Bearer good-token")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", w.Code, w.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["responder_id"] != "42" {
		t.Fatalf("responder_id = %v, want 42", body["responder_id"])
	}
}

func TestOptionalAuth_ProceedsWithoutIdentity(t *testing.T) {
	r := newAuthRouter(t, false)
	for _, h := range []string{"", "Basic x", "Bearer wrong-token"} {
		w := doWhoami(t, r, h)
		if w.Code != http.StatusOK {
			t.Fatalf("header %q: status = %d, want 200", h, w.Code)
		}
		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["anonymous"] != true {
			t.Fatalf("header %q: expected anonymous pass-through, got %v", h, body)
		}
	}
}

func TestOptionalAuth_UsesValidToken(t *testing.T) {
	w := doWhoami(t, newAuthRouter(t, false), "Bearer good-token")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["responder_id"] != "42" {
		t.Fatalf("responder_id = %v, want 42", body["responder_id"])
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		in    string
		token string
		ok    bool
	}{
		{"Bearer abc", "abc", true},
		{"Bearer abc def", "", false},
		{"Bearer ", "", false},
		{"Token abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := bearerToken(tc.in)
		if got != tc.token || ok != tc.ok {
			t.Fatalf("bearerToken(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.token, tc.ok)
		}
	}
}
