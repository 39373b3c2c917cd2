// Package model defines the core domain types for the salon booking system.
package model

import "time"

// Appointment statuses. Pending is the only non-terminal state.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
)

// EmailLog statuses.
const (
	EmailPending = "pending"
	EmailSuccess = "success"
	EmailFail    = "fail"
)

// DateLayout is the wire format of an appointment date.
const DateLayout = "2006-01-02"

// Customer is a person who has booked at least once. Email is the lookup key.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// Service is a salon offering, created lazily the first time its name is booked.
type Service struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Appointment links one customer to one or more services at a date and time.
type Appointment struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	ServiceIDs []string  `json:"service_ids"`
	Date       time.Time `json:"date"`
	Time       string    `json:"time"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// AppointmentView is an appointment joined with its customer and ordered service names.
type AppointmentView struct {
	Appointment
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	ServiceNames  []string
}

// EmailLog is the audit record of one notification attempt.
type EmailLog struct {
	ID      string
	To      string
	Subject string
	Body    string
	Status  string
	SentAt  time.Time
}

// StatusCounts holds the number of appointments in each lifecycle state.
type StatusCounts struct {
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Rejected  int `json:"rejected"`
}

// BookingRequest is the payload for requesting an appointment.
type BookingRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Services []string `json:"services"`
	Date     string   `json:"date"`
	Time     string   `json:"time"`
}

// BookingResponse is returned after a successful booking.
type BookingResponse struct {
	Success       bool   `json:"success"`
	AppointmentID string `json:"appointmentId"`
}

// StatusChangeRequest is the payload for confirming or rejecting an appointment.
type StatusChangeRequest struct {
	ID string `json:"id"`
}

// LoginRequest is the admin login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AppointmentListItem is one row of the admin appointment listing.
type AppointmentListItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Services string `json:"services"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Status   string `json:"status"`
}

// Result is the generic success/failure envelope used by the API.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
