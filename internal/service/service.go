// Package service implements the appointment lifecycle: validation, orchestration
// of the repositories, and the best-effort notification side channel.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/salon-booking/internal/metrics"
	"github.com/Shivanand-hulikatti/salon-booking/internal/model"
	"github.com/Shivanand-hulikatti/salon-booking/internal/notify"
	"github.com/Shivanand-hulikatti/salon-booking/internal/repository"
	"github.com/google/uuid"
)

// ValidationError is a client-caused input problem; its message is safe to return.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// CustomerStore resolves customers by email.
type CustomerStore interface {
	FindOrCreate(ctx context.Context, email, name, phone string) (*model.Customer, error)
}

// ServiceStore resolves salon services by name.
type ServiceStore interface {
	FindOrCreate(ctx context.Context, name string) (*model.Service, error)
}

// AppointmentStore persists appointments.
type AppointmentStore interface {
	Create(ctx context.Context, customerID string, serviceIDs []string, date time.Time, timeOfDay string) (*model.Appointment, error)
	List(ctx context.Context) ([]model.AppointmentView, error)
	GetByID(ctx context.Context, id string) (*model.AppointmentView, error)
	SetStatus(ctx context.Context, id, status string) error
	CountByStatus(ctx context.Context, status string) (int, error)
	Count(ctx context.Context) (int, error)
}

// EmailLogStore writes the notification audit trail.
type EmailLogStore interface {
	Append(ctx context.Context, entry *model.EmailLog) error
	UpdateStatus(ctx context.Context, id, status string, sentAt time.Time) error
}

// Options tune the lifecycle service. Zero values pick defaults.
type Options struct {
	SendTimeout time.Duration
	Metrics     *metrics.LifecycleMetrics
	Now         func() time.Time
}

// AppointmentService orchestrates booking and status transitions.
type AppointmentService struct {
	customers    CustomerStore
	services     ServiceStore
	appointments AppointmentStore
	emailLogs    EmailLogStore
	notifier     notify.Sender
	logger       *slog.Logger
	metrics      *metrics.LifecycleMetrics
	sendTimeout  time.Duration
	now          func() time.Time

	inflight sync.WaitGroup
}

// NewAppointmentService constructs an AppointmentService with its dependencies.
func NewAppointmentService(
	customers CustomerStore,
	services ServiceStore,
	appointments AppointmentStore,
	emailLogs EmailLogStore,
	notifier notify.Sender,
	logger *slog.Logger,
	opts Options,
) *AppointmentService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &AppointmentService{
		customers:    customers,
		services:     services,
		appointments: appointments,
		emailLogs:    emailLogs,
		notifier:     notifier,
		logger:       logger,
		metrics:      opts.Metrics,
		sendTimeout:  opts.SendTimeout,
		now:          opts.Now,
	}
}

// Book validates the request, resolves the customer and services, creates a
// pending appointment, and sends the booking email in the background. The
// appointment is returned without waiting for the email.
func (s *AppointmentService) Book(ctx context.Context, req model.BookingRequest) (*model.Appointment, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	names := uniqueNames(req.Services)

	if req.Name == "" || req.Email == "" || req.Phone == "" || req.Date == "" || req.Time == "" || req.Services == nil {
		return nil, invalid("All fields are required.")
	}
	if len(names) == 0 {
		return nil, invalid("At least one service must be selected.")
	}
	if !isValidEmail(req.Email) {
		return nil, invalid("email is not a valid email address")
	}
	date, err := time.Parse(model.DateLayout, req.Date)
	if err != nil {
		return nil, invalid("date must be in YYYY-MM-DD format")
	}

	customer, err := s.customers.FindOrCreate(ctx, req.Email, req.Name, req.Phone)
	if err != nil {
		return nil, fmt.Errorf("resolve customer: %w", err)
	}

	serviceIDs := make([]string, 0, len(names))
	for _, name := range names {
		svc, err := s.services.FindOrCreate(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolve service %q: %w", name, err)
		}
		serviceIDs = append(serviceIDs, svc.ID)
	}

	appt, err := s.appointments.Create(ctx, customer.ID, serviceIDs, date, req.Time)
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	s.metrics.ObserveBooking()
	log := s.logger.With("appointment_id", appt.ID)
	log.Info("appointment booked", "services", len(serviceIDs))

	msg, err := bookedEmail(customer.Email, req.Name, names, req.Date, req.Time)
	if err != nil {
		log.Error("render booking email", "error", err)
		return appt, nil
	}

	// The entry id identifies this attempt so the outcome updates exactly this row.
	entry := &model.EmailLog{
		ID:      uuid.New().String(),
		To:      msg.To,
		Subject: msg.Subject,
		Body:    msg.HTML,
		Status:  model.EmailPending,
		SentAt:  s.now(),
	}
	if err := s.emailLogs.Append(ctx, entry); err != nil {
		log.Error("append email log", "error", err)
	}

	s.dispatch(ctx, kindBooked, msg, log, func(ctx context.Context, status string, at time.Time) error {
		return s.emailLogs.UpdateStatus(ctx, entry.ID, status, at)
	})
	return appt, nil
}

// Confirm moves an appointment to confirmed and notifies the customer.
func (s *AppointmentService) Confirm(ctx context.Context, id string) error {
	return s.transition(ctx, id, model.StatusConfirmed, kindConfirmed)
}

// Reject moves an appointment to rejected and notifies the customer.
func (s *AppointmentService) Reject(ctx context.Context, id string) error {
	return s.transition(ctx, id, model.StatusRejected, kindRejected)
}

// transition sets the status without checking the current one: confirming a
// rejected appointment, or rejecting it twice, succeeds.
func (s *AppointmentService) transition(ctx context.Context, id, status, kind string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return invalid("id is required")
	}

	view, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("load appointment: %w", err)
	}

	if err := s.appointments.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("set status: %w", err)
	}
	s.metrics.ObserveTransition(status)
	log := s.logger.With("appointment_id", id)
	log.Info("appointment status changed", "from", view.Status, "to", status)

	msg, err := statusEmail(kind, view)
	if err != nil {
		log.Error("render status email", "error", err)
		return nil
	}
	s.dispatch(ctx, kind, msg, log, func(ctx context.Context, outcome string, at time.Time) error {
		return s.emailLogs.Append(ctx, &model.EmailLog{
			ID:      uuid.New().String(),
			To:      msg.To,
			Subject: msg.Subject,
			Body:    msg.HTML,
			Status:  outcome,
			SentAt:  at,
		})
	})
	return nil
}

// dispatch sends msg in the background and passes the outcome to record.
// The send outlives the request but is bounded by sendTimeout; failures are
// logged and recorded, never retried.
func (s *AppointmentService) dispatch(
	ctx context.Context,
	kind string,
	msg notify.Message,
	log *slog.Logger,
	record func(ctx context.Context, outcome string, at time.Time) error,
) {
	bg := context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		sendCtx, cancel := context.WithTimeout(bg, s.sendTimeout)
		err := s.notifier.Send(sendCtx, msg)
		cancel()

		outcome := model.EmailSuccess
		if err != nil {
			outcome = model.EmailFail
			log.Warn("email send failed", "kind", kind, "to", msg.To, "error", err)
		}
		s.metrics.ObserveEmail(kind, outcome)

		recordCtx, cancel := context.WithTimeout(bg, 5*time.Second)
		defer cancel()
		if err := record(recordCtx, outcome, s.now()); err != nil {
			log.Error("record email outcome", "kind", kind, "outcome", outcome, "error", err)
		}
	}()
}

// Drain blocks until every background notification has finished or ctx ends.
func (s *AppointmentService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// List returns all appointments, newest first.
func (s *AppointmentService) List(ctx context.Context) ([]model.AppointmentView, error) {
	views, err := s.appointments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return views, nil
}

// Counts returns the number of appointments per status.
func (s *AppointmentService) Counts(ctx context.Context) (model.StatusCounts, error) {
	var counts model.StatusCounts
	for status, dst := range map[string]*int{
		model.StatusPending:   &counts.Pending,
		model.StatusConfirmed: &counts.Confirmed,
		model.StatusRejected:  &counts.Rejected,
	} {
		n, err := s.appointments.CountByStatus(ctx, status)
		if err != nil {
			return model.StatusCounts{}, fmt.Errorf("count %s: %w", status, err)
		}
		*dst = n
	}
	return counts, nil
}

// Total returns the number of appointments in any status.
func (s *AppointmentService) Total(ctx context.Context) (int, error) {
	n, err := s.appointments.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count appointments: %w", err)
	}
	return n, nil
}

// uniqueNames trims names, drops blanks, and removes duplicates keeping first-seen order.
func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// isValidEmail accepts a bare RFC 5322 address (no display name, no angle
// brackets) whose domain has at least one dot.
func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return strings.Contains(email[at+1:], ".")
}
