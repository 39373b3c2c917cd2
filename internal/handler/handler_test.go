package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/salon-booking/internal/auth"
	"github.com/Shivanand-hulikatti/salon-booking/internal/config"
	"github.com/Shivanand-hulikatti/salon-booking/internal/logging"
	"github.com/Shivanand-hulikatti/salon-booking/internal/model"
	"github.com/Shivanand-hulikatti/salon-booking/internal/repository"
	"github.com/Shivanand-hulikatti/salon-booking/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLifecycle struct {
	bookReq   model.BookingRequest
	bookErr   error
	statusIDs []string
	statusErr error
	views     []model.AppointmentView
	listErr   error
	counts    model.StatusCounts
	total     int
}

func (s *stubLifecycle) Book(_ context.Context, req model.BookingRequest) (*model.Appointment, error) {
	s.bookReq = req
	if s.bookErr != nil {
		return nil, s.bookErr
	}
	return &model.Appointment{ID: "appt-1", Status: model.StatusPending}, nil
}

func (s *stubLifecycle) Confirm(_ context.Context, id string) error {
	s.statusIDs = append(s.statusIDs, "confirm:"+id)
	return s.statusErr
}

func (s *stubLifecycle) Reject(_ context.Context, id string) error {
	s.statusIDs = append(s.statusIDs, "reject:"+id)
	return s.statusErr
}

func (s *stubLifecycle) List(context.Context) ([]model.AppointmentView, error) {
	return s.views, s.listErr
}

func (s *stubLifecycle) Counts(context.Context) (model.StatusCounts, error) {
	return s.counts, nil
}

func (s *stubLifecycle) Total(context.Context) (int, error) {
	return s.total, nil
}

func newTestRouter(svc AppointmentLifecycle, webDir string) http.Handler {
	logger := logging.Discard()
	return NewRouter(RouterConfig{
		Appointments: NewAppointmentHandler(svc, logger),
		Admin:        NewAdminHandler(auth.NewGate([]config.Admin{{User: "admin", Pass: "secret"}})),
		Logger:       logger,
		WebDir:       webDir,
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") && !strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "[") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestBookSuccess(t *testing.T) {
	svc := &stubLifecycle{}
	router := newTestRouter(svc, "")

	rec, body := do(t, router, http.MethodPost, "/api/book",
		`{"name":"Ann Lee","email":"ann@example.com","phone":"1234567890","services":["Haircut","Manicure"],"date":"2026-10-20","time":"10:00"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "appt-1", body["appointmentId"])
	assert.Equal(t, []string{"Haircut", "Manicure"}, svc.bookReq.Services)
}

func TestBookValidationError(t *testing.T) {
	svc := &stubLifecycle{bookErr: &service.ValidationError{Msg: "At least one service must be selected."}}
	router := newTestRouter(svc, "")

	rec, body := do(t, router, http.MethodPost, "/api/book", `{"name":"Ann","services":[]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "At least one service must be selected.", body["message"])
}

func TestBookMalformedBody(t *testing.T) {
	router := newTestRouter(&stubLifecycle{}, "")

	rec, body := do(t, router, http.MethodPost, "/api/book", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestBookInternalErrorHidesDetail(t *testing.T) {
	svc := &stubLifecycle{bookErr: errors.New("create appointment: dial tcp 10.0.0.5:5432: connection refused")}
	router := newTestRouter(svc, "")

	rec, body := do(t, router, http.MethodPost, "/api/book", `{"name":"Ann"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "server error", body["message"])
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestConfirmAndReject(t *testing.T) {
	svc := &stubLifecycle{}
	router := newTestRouter(svc, "")

	rec, body := do(t, router, http.MethodPost, "/api/confirm", `{"id":"appt-1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	rec, _ = do(t, router, http.MethodPost, "/api/reject", `{"id":"appt-1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"confirm:appt-1", "reject:appt-1"}, svc.statusIDs)
}

func TestConfirmNotFound(t *testing.T) {
	svc := &stubLifecycle{statusErr: repository.ErrNotFound}
	router := newTestRouter(svc, "")

	rec, body := do(t, router, http.MethodPost, "/api/confirm", `{"id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])

	rec, _ = do(t, router, http.MethodPost, "/api/reject", `{"id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAppointments(t *testing.T) {
	svc := &stubLifecycle{views: []model.AppointmentView{{
		Appointment: model.Appointment{
			ID:     "appt-2",
			Date:   time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
			Time:   "10:00",
			Status: model.StatusPending,
		},
		CustomerName:  "Ann Lee",
		CustomerEmail: "ann@example.com",
		CustomerPhone: "1234567890",
		ServiceNames:  []string{"Haircut", "Manicure"},
	}}}
	router := newTestRouter(svc, "")

	rec, _ := do(t, router, http.MethodGet, "/api/appointments", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var items []model.AppointmentListItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, model.AppointmentListItem{
		ID: "appt-2", Name: "Ann Lee", Email: "ann@example.com", Phone: "1234567890",
		Services: "Haircut, Manicure", Date: "2026-10-20", Time: "10:00", Status: "pending",
	}, items[0])
}

func TestListAppointmentsEmptyIsArray(t *testing.T) {
	router := newTestRouter(&stubLifecycle{}, "")

	rec, _ := do(t, router, http.MethodGet, "/api/appointments", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestCountsAndTotal(t *testing.T) {
	svc := &stubLifecycle{counts: model.StatusCounts{Pending: 3, Confirmed: 2, Rejected: 1}, total: 6}
	router := newTestRouter(svc, "")

	rec, body := do(t, router, http.MethodGet, "/api/appointment-counts", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"pending": 3.0, "confirmed": 2.0, "rejected": 1.0}, body)

	rec, body = do(t, router, http.MethodGet, "/api/appointment-count", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 6.0, body["total"])
}

func TestAdminLogin(t *testing.T) {
	router := newTestRouter(&stubLifecycle{}, "")

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"valid", `{"username":"admin","password":"secret"}`, http.StatusOK},
		{"missing password", `{"username":"admin"}`, http.StatusBadRequest},
		{"missing username", `{"password":"secret"}`, http.StatusBadRequest},
		{"wrong password", `{"username":"admin","password":"nope"}`, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, router, http.MethodPost, "/admin-login", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.status == http.StatusOK, body["success"])
		})
	}
}

func TestHealthAndCORS(t *testing.T) {
	router := newTestRouter(&stubLifecycle{}, "")

	rec, body := do(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodOptions, "/api/book", nil)
	pre := httptest.NewRecorder()
	router.ServeHTTP(pre, req)
	assert.Equal(t, http.StatusNoContent, pre.Code)
}

func TestStaticPagesServed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Salon</h1>"), 0o644))
	router := newTestRouter(&stubLifecycle{}, dir)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Salon")
}

func TestUnknownPathsFallBackToIndex(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Salon</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "admin.html"), []byte("<h1>Admin</h1>"), 0o644))
	router := newTestRouter(&stubLifecycle{}, dir)

	tests := []struct {
		path string
		want string
	}{
		{"/admin.html", "Admin"},
		{"/book/now", "Salon"},
		{"/missing.css", "Salon"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}
