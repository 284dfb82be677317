package admissions

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	applicationstore "github.com/littlenest/littlenest/internal/app/store/applications"
	"github.com/littlenest/littlenest/internal/app/system/apperr"
	"github.com/littlenest/littlenest/internal/app/system/httpjson"
	"github.com/littlenest/littlenest/internal/app/system/paging"
	"github.com/littlenest/littlenest/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// parseFilter reads the shared list/stats query parameters.
func parseFilter(r *http.Request) (applicationstore.ListFilter, error) {
	f := applicationstore.ListFilter{Status: query.Get(r, "status")}

	if s := query.Get(r, "schoolId"); s != "" {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return f, apperr.Validationf("schoolId is not a valid id")
		}
		f.SchoolID = &id
	}
	if s := query.Get(r, "from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return f, apperr.Validationf("from must be an RFC 3339 timestamp")
		}
		f.From = &t
	}
	if s := query.Get(r, "to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return f, apperr.Validationf("to must be an RFC 3339 timestamp")
		}
		f.To = &t
	}
	return f, nil
}

// List handles GET /api/admin/applications with status/school/date filters
// and offset pagination.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	p := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, total, err := h.Apps.List(ctx, f, p)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.OK(w, map[string]any{
		"applications": rows,
		"meta":         p.MetaFor(total),
	})
}

// Stats handles GET /api/admin/applications/stats: counts by status and by
// school over the same filter window as List.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	byStatus, err := h.Apps.CountByStatus(ctx, f)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	bySchool, err := h.Apps.CountBySchool(ctx, f)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.OK(w, map[string]any{
		"byStatus": byStatus,
		"bySchool": bySchool,
	})
}
