package applications_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/littlenest/littlenest/internal/app/features/applications"
	applicationstore "github.com/littlenest/littlenest/internal/app/store/applications"
	"github.com/littlenest/littlenest/internal/app/system/indexes"
	"github.com/littlenest/littlenest/internal/domain/models"
	"github.com/littlenest/littlenest/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*applications.Handler, *mongo.Database, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return applications.NewHandler(db, zap.NewNop()), db, testutil.NewFixtures(t, db)
}

func submitPayload(schoolID, email string) map[string]any {
	return map[string]any{
		"schoolId":   schoolID,
		"childName":  "Robin Applicant",
		"childAge":   3,
		"parentName": "Jo Applicant",
		"phone":      "+15550002222",
		"email":      email,
		"address":    "34 Oak Ave",
	}
}

func submit(t *testing.T, h *applications.Handler, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.JSONRequest(t, http.MethodPost, "/api/applications", payload)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	req.Header.Set("User-Agent", "intake-test")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)
	return rec
}

func TestSubmit_CreatesPendingApplication(t *testing.T) {
	h, db, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	school := fx.CreateSchool(ctx, "Sunny Grove")

	rec := submit(t, h, submitPayload(school.ID.Hex(), "Jo@Example.com"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data models.Application `json:"data"`
	}
	testutil.DecodeBody(t, rec, &body)
	if body.Data.Status != models.ApplicationPending {
		t.Errorf("status = %q, want pending", body.Data.Status)
	}
	if body.Data.Parent.Email != "jo@example.com" {
		t.Errorf("email = %q, want normalized lowercase", body.Data.Parent.Email)
	}

	got, err := applicationstore.New(db).GetByID(ctx, body.Data.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Provenance.SourceIP != "203.0.113.9" {
		t.Errorf("source ip = %q, want first forwarded hop", got.Provenance.SourceIP)
	}
	if got.Provenance.UserAgent != "intake-test" {
		t.Errorf("user agent = %q", got.Provenance.UserAgent)
	}
}

func TestSubmit_DuplicateOpenApplication(t *testing.T) {
	h, _, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	school := fx.CreateSchool(ctx, "Sunny Grove")
	other := fx.CreateSchool(ctx, "Maple Hill")

	if rec := submit(t, h, submitPayload(school.ID.Hex(), "jo@example.com")); rec.Code != http.StatusCreated {
		t.Fatalf("first submit: %d", rec.Code)
	}

	rec := submit(t, h, submitPayload(school.ID.Hex(), "jo@example.com"))
	if rec.Code != http.StatusBadRequest || testutil.ErrorCode(t, rec) != "duplicate_application" {
		t.Errorf("duplicate: status=%d code=%q", rec.Code, testutil.ErrorCode(t, rec))
	}

	// The same family may apply to a different school.
	if rec := submit(t, h, submitPayload(other.ID.Hex(), "jo@example.com")); rec.Code != http.StatusCreated {
		t.Errorf("other school: %d %s", rec.Code, rec.Body.String())
	}
}

func TestSubmit_InactiveSchool(t *testing.T) {
	h, _, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	closed := fx.CreateInactiveSchool(ctx, "Shuttered")

	rec := submit(t, h, submitPayload(closed.ID.Hex(), "jo@example.com"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for an inactive school", rec.Code)
	}
}

func TestStatus_EmailMustMatch(t *testing.T) {
	h, _, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	school := fx.CreateSchool(ctx, "Sunny Grove")
	app := fx.CreateApplication(ctx, school.ID, "owner@example.com")
	appID := app.ID.Hex()

	status := func(email string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/applications/"+appID+"/status?email="+email, nil)
		req = testutil.WithChiURLParam(req, "id", appID)
		rec := httptest.NewRecorder()
		h.Status(rec, req)
		return rec
	}

	rec := status("owner@example.com")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	testutil.DecodeBody(t, rec, &body)
	if body.Data.Status != models.ApplicationPending {
		t.Errorf("status = %q", body.Data.Status)
	}

	// A wrong email looks identical to a missing application.
	if rec := status("snoop@example.com"); rec.Code != http.StatusNotFound {
		t.Errorf("mismatched email: status = %d, want 404", rec.Code)
	}
}

func TestUpdateAndCancel_OnlyWhilePending(t *testing.T) {
	h, db, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	school := fx.CreateSchool(ctx, "Sunny Grove")
	app := fx.CreateApplication(ctx, school.ID, "owner@example.com")
	appID := app.ID.Hex()

	update := map[string]any{
		"email":      "owner@example.com",
		"childName":  "Sam Fixture",
		"childAge":   5,
		"parentName": "Pat Fixture",
		"phone":      "+15550001111",
		"notes":      "allergic to peanuts",
	}
	req := testutil.JSONRequest(t, http.MethodPatch, "/api/applications/"+appID, update)
	req = testutil.WithChiURLParam(req, "id", appID)
	rec := httptest.NewRecorder()
	h.Update(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}

	got, err := applicationstore.New(db).GetByID(ctx, app.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Child.Age != 5 || got.Notes != "allergic to peanuts" {
		t.Errorf("update not applied: %+v", got)
	}

	// Cancel, then further edits are refused.
	req = httptest.NewRequest(http.MethodDelete, "/api/applications/"+appID+"?email=owner@example.com", nil)
	req = testutil.WithChiURLParam(req, "id", appID)
	rec = httptest.NewRecorder()
	h.Cancel(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: %d %s", rec.Code, rec.Body.String())
	}

	req = testutil.JSONRequest(t, http.MethodPatch, "/api/applications/"+appID, update)
	req = testutil.WithChiURLParam(req, "id", appID)
	rec = httptest.NewRecorder()
	h.Update(rec, req)
	if rec.Code != http.StatusBadRequest || testutil.ErrorCode(t, rec) != "already_processed" {
		t.Errorf("edit after cancel: status=%d code=%q", rec.Code, testutil.ErrorCode(t, rec))
	}
}
