package model

import "strings"

type AppointmentStatus string

const (
	AppointmentStatusBooked      AppointmentStatus = "booked"
	AppointmentStatusArrived     AppointmentStatus = "arrived"
	AppointmentStatusOnGoing     AppointmentStatus = "on-going"
	AppointmentStatusReviewed    AppointmentStatus = "reviewed"
	AppointmentStatusScheduled   AppointmentStatus = "scheduled"
	AppointmentStatusCanceled    AppointmentStatus = "canceled"
	AppointmentStatusRescheduled AppointmentStatus = "rescheduled"
	AppointmentStatusPending     AppointmentStatus = "pending"
	AppointmentStatusCompleted   AppointmentStatus = "completed"
)

// AppointmentStatuses lists every status the backend uses, in workflow order.
var AppointmentStatuses = []AppointmentStatus{
	AppointmentStatusBooked,
	AppointmentStatusArrived,
	AppointmentStatusOnGoing,
	AppointmentStatusReviewed,
	AppointmentStatusScheduled,
	AppointmentStatusCanceled,
	AppointmentStatusRescheduled,
	AppointmentStatusPending,
	AppointmentStatusCompleted,
}

// Normalize lowercases the status and turns spaces into dashes ("On Going" -> "on-going").
func (s AppointmentStatus) Normalize() AppointmentStatus {
	v := strings.ToLower(strings.TrimSpace(string(s)))
	return AppointmentStatus(strings.ReplaceAll(v, " ", "-"))
}

func (s AppointmentStatus) Valid() bool {
	n := s.Normalize()
	for _, known := range AppointmentStatuses {
		if n == known {
			return true
		}
	}
	return false
}

type Person struct {
	ID        ID     `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Gender    string `json:"gender,omitempty"`
}

func (p Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Appointment mirrors the backend record. AppointmentDate is kept raw: it is
// parsed per record when the calendar is built so a bad value only drops that record.
type Appointment struct {
	ID              ID                 `json:"id"`
	Patient         Person             `json:"patient"`
	Doctor          Person             `json:"doctor"`
	AppointmentDate string             `json:"appointment_date"`
	Status          *AppointmentStatus `json:"status"`
	Notes           string             `json:"notes,omitempty"`
	IsEmergency     bool               `json:"is_emergency"`
}

// StatusValue returns the status or "" when it is missing.
func (a Appointment) StatusValue() AppointmentStatus {
	if a.Status == nil {
		return ""
	}
	return *a.Status
}

type Doctor struct {
	ID             ID     `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Specialization string `json:"specialization,omitempty"`
}

// AppointmentQuery is the key of a calendar fetch.
type AppointmentQuery struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	DoctorID  string `json:"doctor_id"`
}

// AppointmentUpdate is the body of PATCH /appointments/edit/{id}/. Nil fields are not sent.
type AppointmentUpdate struct {
	Status          *AppointmentStatus `json:"status,omitempty"`
	AppointmentDate *string            `json:"appointment_date,omitempty"`
	DoctorID        *ID                `json:"doctor,omitempty"`
	Notes           *string            `json:"notes,omitempty"`
}
