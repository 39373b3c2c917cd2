// Package repository implements all database queries for the salon booking system.
// It uses pgx directly (no ORM).
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/salon-booking/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrNoServices is returned when an appointment would reference no services.
var ErrNoServices = errors.New("appointment needs at least one service")

// DBTX is the subset of *pgxpool.Pool used by the repositories.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CustomerRepository handles persistence for customers.
type CustomerRepository struct {
	db DBTX
}

// NewCustomerRepository constructs a CustomerRepository.
func NewCustomerRepository(db DBTX) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// FindOrCreate returns the customer with the given email, creating it when absent.
// An existing row is returned unchanged. The no-op update lets RETURNING yield
// the existing row, and the unique index keeps concurrent first bookings from
// creating duplicates.
func (r *CustomerRepository) FindOrCreate(ctx context.Context, email, name, phone string) (*model.Customer, error) {
	var c model.Customer
	err := r.db.QueryRow(ctx,
		`INSERT INTO customers (id, name, email, phone, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		 RETURNING id::text, name, email, phone, created_at`,
		uuid.New().String(), name, email, phone, time.Now().UTC(),
	).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert customer: %w", err)
	}
	return &c, nil
}

// ServiceRepository handles persistence for salon services.
type ServiceRepository struct {
	db DBTX
}

// NewServiceRepository constructs a ServiceRepository.
func NewServiceRepository(db DBTX) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// FindOrCreate returns the service with exactly this name, creating it with an
// empty description and zero price when absent.
func (r *ServiceRepository) FindOrCreate(ctx context.Context, name string) (*model.Service, error) {
	var s model.Service
	err := r.db.QueryRow(ctx,
		`INSERT INTO services (id, name)
		 VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id::text, name, description, price::float8`,
		uuid.New().String(), name,
	).Scan(&s.ID, &s.Name, &s.Description, &s.Price)
	if err != nil {
		return nil, fmt.Errorf("upsert service: %w", err)
	}
	return &s, nil
}

// AppointmentRepository handles persistence for appointments.
type AppointmentRepository struct {
	db DBTX
}

// NewAppointmentRepository constructs an AppointmentRepository.
func NewAppointmentRepository(db DBTX) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// Create inserts a pending appointment and its ordered service links in one transaction.
func (r *AppointmentRepository) Create(ctx context.Context, customerID string, serviceIDs []string, date time.Time, timeOfDay string) (appt *model.Appointment, err error) {
	if len(serviceIDs) == 0 {
		return nil, ErrNoServices
	}

	appt = &model.Appointment{
		ID:         uuid.New().String(),
		CustomerID: customerID,
		ServiceIDs: uniqueIDs(serviceIDs),
		Date:       date,
		Time:       timeOfDay,
		Status:     model.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO appointments (id, customer_id, appointment_date, appointment_time, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		appt.ID, appt.CustomerID, appt.Date, appt.Time, appt.Status, appt.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}

	for i, serviceID := range appt.ServiceIDs {
		_, err = tx.Exec(ctx,
			`INSERT INTO appointment_services (appointment_id, service_id, position)
			 VALUES ($1, $2, $3)`,
			appt.ID, serviceID, i,
		)
		if err != nil {
			return nil, fmt.Errorf("link service: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return appt, nil
}

const appointmentViewSelect = `
	SELECT a.id::text, a.customer_id::text, c.name, c.email, c.phone,
	       COALESCE(array_agg(s.id::text ORDER BY aps.position) FILTER (WHERE s.id IS NOT NULL), '{}'),
	       COALESCE(array_agg(s.name ORDER BY aps.position) FILTER (WHERE s.id IS NOT NULL), '{}'),
	       a.appointment_date, a.appointment_time, a.status, a.created_at
	FROM appointments a
	JOIN customers c ON c.id = a.customer_id
	LEFT JOIN appointment_services aps ON aps.appointment_id = a.id
	LEFT JOIN services s ON s.id = aps.service_id`

func scanView(row pgx.Row) (*model.AppointmentView, error) {
	var v model.AppointmentView
	err := row.Scan(
		&v.ID, &v.CustomerID, &v.CustomerName, &v.CustomerEmail, &v.CustomerPhone,
		&v.ServiceIDs, &v.ServiceNames,
		&v.Date, &v.Time, &v.Status, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// List returns all appointments with customer and service names, newest first.
func (r *AppointmentRepository) List(ctx context.Context) ([]model.AppointmentView, error) {
	rows, err := r.db.Query(ctx,
		appointmentViewSelect+`
		GROUP BY a.id, c.id
		ORDER BY a.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var views []model.AppointmentView
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		views = append(views, *v)
	}
	return views, rows.Err()
}

// GetByID returns a single appointment view or ErrNotFound.
func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*model.AppointmentView, error) {
	if !isCanonicalID(id) {
		return nil, ErrNotFound
	}
	v, err := scanView(r.db.QueryRow(ctx,
		appointmentViewSelect+`
		WHERE a.id = $1
		GROUP BY a.id, c.id`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return v, nil
}

// SetStatus overwrites the status of an appointment. It does not check the
// current status; callers own the transition policy.
func (r *AppointmentRepository) SetStatus(ctx context.Context, id, status string) error {
	if !isCanonicalID(id) {
		return ErrNotFound
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE appointments SET status = $2 WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStatus returns the number of appointments in the given status.
func (r *AppointmentRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE status = $1`,
		status,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count appointments: %w", err)
	}
	return n, nil
}

// Count returns the total number of appointments.
func (r *AppointmentRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count appointments: %w", err)
	}
	return n, nil
}

// isCanonicalID reports whether id is a hyphenated 36-character UUID. uuid.Parse
// also takes urn and braced forms, which never match a stored id.
func isCanonicalID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// EmailLogRepository writes the notification audit trail. Nothing reads it back.
type EmailLogRepository struct {
	db DBTX
}

// NewEmailLogRepository constructs an EmailLogRepository.
func NewEmailLogRepository(db DBTX) *EmailLogRepository {
	return &EmailLogRepository{db: db}
}

// Append inserts an entry. An empty ID is filled in.
func (r *EmailLogRepository) Append(ctx context.Context, entry *model.EmailLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.SentAt.IsZero() {
		entry.SentAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO email_logs (id, "to", subject, body, status, sent_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.To, entry.Subject, entry.Body, entry.Status, entry.SentAt,
	)
	if err != nil {
		return fmt.Errorf("insert email log: %w", err)
	}
	return nil
}

// UpdateStatus records the outcome of the attempt identified by id.
func (r *EmailLogRepository) UpdateStatus(ctx context.Context, id, status string, sentAt time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE email_logs SET status = $2, sent_at = $3 WHERE id = $1`,
		id, status, sentAt,
	)
	if err != nil {
		return fmt.Errorf("update email log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
