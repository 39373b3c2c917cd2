// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Shivanand-hulikatti/salon-booking/internal/model"
	"github.com/Shivanand-hulikatti/salon-booking/internal/repository"
	"github.com/Shivanand-hulikatti/salon-booking/internal/service"
	"github.com/go-chi/chi/v5/middleware"
)

// AppointmentLifecycle is the part of service.AppointmentService the API needs.
type AppointmentLifecycle interface {
	Book(ctx context.Context, req model.BookingRequest) (*model.Appointment, error)
	Confirm(ctx context.Context, id string) error
	Reject(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.AppointmentView, error)
	Counts(ctx context.Context) (model.StatusCounts, error)
	Total(ctx context.Context) (int, error)
}

// CredentialChecker validates admin credentials.
type CredentialChecker interface {
	Check(username, password string) bool
}

const genericFailure = "server error"

// AppointmentHandler holds the public booking and admin dashboard handlers.
type AppointmentHandler struct {
	svc    AppointmentLifecycle
	logger *slog.Logger
}

// NewAppointmentHandler constructs an AppointmentHandler.
func NewAppointmentHandler(svc AppointmentLifecycle, logger *slog.Logger) *AppointmentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppointmentHandler{svc: svc, logger: logger}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.Result{Success: false, Message: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// fail maps a service error to a response. Only validation and not-found
// errors carry their message to the client.
func (h *AppointmentHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Msg)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "appointment not found")
	default:
		h.logger.Error(op+" failed",
			"error", err,
			"request_id", middleware.GetReqID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, genericFailure)
	}
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// Book handles POST /api/book
// Creates a pending appointment and queues the booking email.
func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req model.BookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	appt, err := h.svc.Book(r.Context(), req)
	if err != nil {
		h.fail(w, r, "book appointment", err)
		return
	}

	writeJSON(w, http.StatusOK, model.BookingResponse{Success: true, AppointmentID: appt.ID})
}

// ListAppointments handles GET /api/appointments
// Returns every appointment, newest first.
func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.List(r.Context())
	if err != nil {
		h.fail(w, r, "list appointments", err)
		return
	}

	// Return an empty array rather than null for better client compatibility.
	items := make([]model.AppointmentListItem, 0, len(views))
	for _, v := range views {
		items = append(items, model.AppointmentListItem{
			ID:       v.ID,
			Name:     v.CustomerName,
			Email:    v.CustomerEmail,
			Phone:    v.CustomerPhone,
			Services: strings.Join(v.ServiceNames, ", "),
			Date:     v.Date.Format(model.DateLayout),
			Time:     v.Time,
			Status:   v.Status,
		})
	}

	writeJSON(w, http.StatusOK, items)
}

// Confirm handles POST /api/confirm
func (h *AppointmentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, "confirm appointment", h.svc.Confirm)
}

// Reject handles POST /api/reject
func (h *AppointmentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, "reject appointment", h.svc.Reject)
}

func (h *AppointmentHandler) changeStatus(w http.ResponseWriter, r *http.Request, op string, apply func(context.Context, string) error) {
	var req model.StatusChangeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := apply(r.Context(), req.ID); err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, model.Result{Success: true})
}

// Counts handles GET /api/appointment-counts
func (h *AppointmentHandler) Counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.Counts(r.Context())
	if err != nil {
		h.fail(w, r, "count appointments", err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// Total handles GET /api/appointment-count, used by the dashboard summary tile.
func (h *AppointmentHandler) Total(w http.ResponseWriter, r *http.Request) {
	total, err := h.svc.Total(r.Context())
	if err != nil {
		h.fail(w, r, "count appointments", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total": total})
}

// AdminHandler serves the admin login.
type AdminHandler struct {
	gate CredentialChecker
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(gate CredentialChecker) *AdminHandler {
	return &AdminHandler{gate: gate}
}

// Login handles POST /admin-login
// The client keeps the resulting flag; no server session is created.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password required.")
		return
	}
	if !h.gate.Check(req.Username, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid username or password.")
		return
	}
	writeJSON(w, http.StatusOK, model.Result{Success: true})
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
