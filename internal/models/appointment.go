package models

import (
	"errors"
	"time"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// PaymentStatus represents the payment state of an appointment
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// PaymentMethod enumerates the supported payment providers.
type PaymentMethod string

const (
	PaymentMethodEsewa  PaymentMethod = "esewa"
	PaymentMethodKhalti PaymentMethod = "khalti"
)

// transitions is the appointment state machine. Completed and cancelled are
// terminal.
var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidPaymentStatus reports whether v is a known payment status.
func ValidPaymentStatus(v PaymentStatus) bool {
	switch v {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether v is a supported payment method.
func ValidPaymentMethod(v PaymentMethod) bool {
	switch v {
	case PaymentMethodEsewa, PaymentMethodKhalti:
		return true
	}
	return false
}

// Appointment represents a booked slot between a patient and a doctor.
// The composite unique index over (doctor, date, start, end) is the slot
// invariant: a duplicate booking fails at insert time with
// gorm.ErrDuplicatedKey rather than racing an application pre-check.
// Cancelled rows keep their slot; an appointment is never deleted.
type Appointment struct {
	BaseModel
	PatientID       string            `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID        string            `gorm:"size:36;index;not null;uniqueIndex:idx_slot,priority:1" json:"doctorId"`
	AppointmentDate time.Time         `gorm:"type:date;not null;uniqueIndex:idx_slot,priority:2" json:"appointmentDate"`
	StartTime       string            `gorm:"size:5;not null;uniqueIndex:idx_slot,priority:3" json:"startTime"`
	EndTime         string            `gorm:"size:5;not null;uniqueIndex:idx_slot,priority:4" json:"endTime"`
	Status          AppointmentStatus `gorm:"size:20;default:'pending'" json:"status"`
	PaymentStatus   PaymentStatus     `gorm:"size:20;default:'pending'" json:"paymentStatus"`
	PaymentID       *string           `gorm:"size:100;uniqueIndex" json:"paymentId,omitempty"`
	PaymentDate     *time.Time        `json:"paymentDate,omitempty"`
	PaymentAmount   float64           `gorm:"not null" json:"paymentAmount"` // fee snapshot at booking time
	PaymentMethod   PaymentMethod     `gorm:"size:20;default:'esewa'" json:"paymentMethod"`
	Notes           string            `gorm:"size:500" json:"notes,omitempty"`

	Patient User          `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  DoctorProfile `gorm:"foreignKey:DoctorID" json:"-"`
}

// TimeRange returns the appointment window as a TimeRange.
func (a *Appointment) TimeRange() TimeRange {
	return TimeRange{Start: a.StartTime, End: a.EndTime}
}

// AppointmentDetail is an appointment plus the public identities of the
// parties, used by the listing endpoints. Only preloaded associations are
// attached.
type AppointmentDetail struct {
	Appointment
	Patient *PartySummary  `json:"patient,omitempty"`
	Doctor  *DoctorSummary `json:"doctor,omitempty"`
}

// Detail attaches the preloaded patient and doctor to the appointment for
// serialization.
func (a *Appointment) Detail() AppointmentDetail {
	d := AppointmentDetail{Appointment: *a}
	if a.Patient.ID != "" {
		s := a.Patient.Summary()
		d.Patient = &s
	}
	if a.Doctor.ID != "" {
		s := a.Doctor.Summary()
		d.Doctor = &s
	}
	return d
}

// Payment update guards. These never mutate the appointment; callers only
// persist after a nil result.
var (
	ErrUnknownPaymentStatus = errors.New("invalid payment status")
	ErrPaymentCancelled     = errors.New("cannot update payment for a cancelled appointment")
	ErrPaymentAlreadyPaid   = errors.New("payment already completed")
	ErrPaymentIDRequired    = errors.New("payment id is required for paid status")
)

// ValidatePaymentUpdate checks an admin payment-status change against the
// appointment's current state.
func (a *Appointment) ValidatePaymentUpdate(target PaymentStatus, paymentID string) error {
	if !ValidPaymentStatus(target) {
		return ErrUnknownPaymentStatus
	}
	if a.Status == StatusCancelled {
		return ErrPaymentCancelled
	}
	if a.PaymentStatus == PaymentPaid {
		return ErrPaymentAlreadyPaid
	}
	if target == PaymentPaid && paymentID == "" {
		return ErrPaymentIDRequired
	}
	return nil
}
