package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

const testKey = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	sm, err := NewSessionManager(testKey, "littlenest-test", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return sm
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSignInRoundTrip(t *testing.T) {
	sm := newTestManager(t)

	// Sign in and capture the cookie.
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	err := sm.SignIn(w, r, SessionUser{ID: "abc", Name: "Jane", Email: "jane@example.com", Role: "parent"})
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	// Replay the cookie through LoadSessionUser.
	var got *SessionUser
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = CurrentUser(r)
	}))
	r2 := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, c := range cookies {
		r2.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), r2)

	if got == nil {
		t.Fatal("expected user in context after session round trip")
	}
	if got.ID != "abc" || got.Role != "parent" || got.Email != "jane@example.com" {
		t.Errorf("unexpected session user: %+v", got)
	}
}

func TestRequireSignedIn(t *testing.T) {
	sm := newTestManager(t)
	h := sm.RequireSignedIn(okHandler())

	// Anonymous request → 401.
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d, want 401", w.Code)
	}

	// Authenticated request → 200.
	w = httptest.NewRecorder()
	r := WithTestUser(httptest.NewRequest(http.MethodGet, "/x", nil), &SessionUser{ID: "u1", Role: "parent"})
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("authenticated: status = %d, want 200", w.Code)
	}
}

func TestRequireRole(t *testing.T) {
	sm := newTestManager(t)
	h := sm.RequireRole("admin")(okHandler())

	tests := []struct {
		name string
		user *SessionUser
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"wrong role", &SessionUser{ID: "u1", Role: "parent"}, http.StatusForbidden},
		{"admin", &SessionUser{ID: "u2", Role: "admin"}, http.StatusOK},
		{"case insensitive", &SessionUser{ID: "u3", Role: "Admin"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.user != nil {
				r = WithTestUser(r, tt.user)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestSignOut(t *testing.T) {
	sm := newTestManager(t)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/logout", nil)
	if err := sm.SignOut(w, r); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected an expiring cookie")
	}
	if cookies[0].MaxAge != -1 {
		t.Errorf("MaxAge = %d, want -1", cookies[0].MaxAge)
	}
}
