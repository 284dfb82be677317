package login_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/littlenest/littlenest/internal/app/features/login"
	userstore "github.com/littlenest/littlenest/internal/app/store/users"
	"github.com/littlenest/littlenest/internal/app/system/auth"
	"github.com/littlenest/littlenest/internal/app/system/credentials"
	"github.com/littlenest/littlenest/internal/app/system/indexes"
	"github.com/littlenest/littlenest/internal/domain/models"
	"github.com/littlenest/littlenest/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*login.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	sm, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "littlenest_session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	return login.NewHandler(db, sm, zap.NewNop()), db
}

// provisionedUser creates a user the way account provisioning does: a
// temporary credential and the first-login flag set.
func provisionedUser(t *testing.T, db *mongo.Database, email, temp string) models.User {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	hash, err := credentials.Hash(temp)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u, err := userstore.New(db).Create(ctx, models.User{
		FullName:          "Pat Fixture",
		Email:             email,
		PasswordHash:      hash,
		Role:              models.RoleParent,
		IsFirstLogin:      true,
		TemporaryPassword: temp,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func doLogin(t *testing.T, h *login.Handler, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.JSONRequest(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": email, "password": password})
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	return rec
}

func TestLogin_TemporaryCredential(t *testing.T) {
	h, db := newTestHandler(t)
	provisionedUser(t, db, "fresh@example.com", "temp-pass-1234")

	rec := doLogin(t, h, "fresh@example.com", "temp-pass-1234")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data struct {
			IsFirstLogin bool   `json:"isFirstLogin"`
			Role         string `json:"role"`
		} `json:"data"`
	}
	testutil.DecodeBody(t, rec, &body)
	if !body.Data.IsFirstLogin {
		t.Error("isFirstLogin = false, want true for a provisioned account")
	}
	if body.Data.Role != models.RoleParent {
		t.Errorf("role = %q", body.Data.Role)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("no session cookie set")
	}
}

func TestLogin_OneAnswerForAllFailures(t *testing.T) {
	h, db := newTestHandler(t)
	provisionedUser(t, db, "known@example.com", "temp-pass-1234")

	for name, creds := range map[string][2]string{
		"wrong password": {"known@example.com", "nope"},
		"unknown email":  {"nobody@example.com", "temp-pass-1234"},
	} {
		rec := doLogin(t, h, creds[0], creds[1])
		if rec.Code != http.StatusBadRequest || testutil.ErrorCode(t, rec) != "invalid_credentials" {
			t.Errorf("%s: status=%d code=%q", name, rec.Code, testutil.ErrorCode(t, rec))
		}
	}
}

func changePassword(t *testing.T, h *login.Handler, u models.User, current, next string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.JSONRequest(t, http.MethodPost, "/api/auth/change-password",
		map[string]string{"currentPassword": current, "newPassword": next})
	req = testutil.WithUser(req, u)
	rec := httptest.NewRecorder()
	h.ChangePassword(rec, req)
	return rec
}

func TestChangePassword_CompletesFirstLogin(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := provisionedUser(t, db, "fresh@example.com", "temp-pass-1234")

	// Re-using the issued credential is refused.
	rec := changePassword(t, h, u, "temp-pass-1234", "temp-pass-1234")
	if rec.Code != http.StatusBadRequest || testutil.ErrorCode(t, rec) != "credential_reuse" {
		t.Fatalf("reuse: status=%d code=%q", rec.Code, testutil.ErrorCode(t, rec))
	}

	rec = changePassword(t, h, u, "temp-pass-1234", "chosen-password-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("change: status=%d body %s", rec.Code, rec.Body.String())
	}

	got, err := userstore.New(db).GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.IsFirstLogin || got.TemporaryPassword != "" {
		t.Errorf("first-login state not cleared: firstLogin=%v temp=%q", got.IsFirstLogin, got.TemporaryPassword)
	}

	// The old credential is dead, the chosen one works and the account is no
	// longer in its first login.
	if rec := doLogin(t, h, "fresh@example.com", "temp-pass-1234"); rec.Code != http.StatusBadRequest {
		t.Errorf("old credential still accepted: %d", rec.Code)
	}
	rec = doLogin(t, h, "fresh@example.com", "chosen-password-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("new credential rejected: %d %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data struct {
			IsFirstLogin bool `json:"isFirstLogin"`
		} `json:"data"`
	}
	testutil.DecodeBody(t, rec, &body)
	if body.Data.IsFirstLogin {
		t.Error("isFirstLogin still true after completing the first login")
	}
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	h, db := newTestHandler(t)

	u := provisionedUser(t, db, "fresh@example.com", "temp-pass-1234")

	rec := changePassword(t, h, u, "not-the-temp", "chosen-password-1")
	if rec.Code != http.StatusBadRequest || testutil.ErrorCode(t, rec) != "invalid_credentials" {
		t.Errorf("status=%d code=%q", rec.Code, testutil.ErrorCode(t, rec))
	}
}
