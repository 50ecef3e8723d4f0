package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    AppointmentStatus
		to      AppointmentStatus
		allowed bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusConfirmed, false},
		{StatusPending, StatusPending, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestValidPaymentStatus(t *testing.T) {
	for _, valid := range []PaymentStatus{PaymentPending, PaymentPaid, PaymentFailed} {
		if !ValidPaymentStatus(valid) {
			t.Errorf("expected %q to be valid", valid)
		}
	}
	for _, invalid := range []PaymentStatus{"", "done", "PAID", "refunded"} {
		if ValidPaymentStatus(invalid) {
			t.Errorf("expected %q to be invalid", invalid)
		}
	}
}

func TestValidPaymentMethod(t *testing.T) {
	if !ValidPaymentMethod(PaymentMethodEsewa) || !ValidPaymentMethod(PaymentMethodKhalti) {
		t.Fatal("expected esewa and khalti to be valid methods")
	}
	for _, invalid := range []PaymentMethod{"", "stripe", "Esewa"} {
		if ValidPaymentMethod(invalid) {
			t.Errorf("expected %q to be invalid", invalid)
		}
	}
}

func TestValidatePaymentUpdate(t *testing.T) {
	cases := []struct {
		name          string
		status        AppointmentStatus
		paymentStatus PaymentStatus
		target        PaymentStatus
		paymentID     string
		want          error
	}{
		{"mark pending as paid", StatusConfirmed, PaymentPending, PaymentPaid, "TXN-1", nil},
		{"mark pending as failed", StatusPending, PaymentPending, PaymentFailed, "", nil},
		{"recover failed payment", StatusPending, PaymentFailed, PaymentPaid, "TXN-2", nil},
		{"unknown target status", StatusPending, PaymentPending, "refunded", "", ErrUnknownPaymentStatus},
		{"cancelled appointment", StatusCancelled, PaymentPending, PaymentPaid, "TXN-3", ErrPaymentCancelled},
		{"already paid", StatusConfirmed, PaymentPaid, PaymentFailed, "", ErrPaymentAlreadyPaid},
		{"paid without payment id", StatusConfirmed, PaymentPending, PaymentPaid, "", ErrPaymentIDRequired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := Appointment{Status: tc.status, PaymentStatus: tc.paymentStatus}
			if err := a.ValidatePaymentUpdate(tc.target, tc.paymentID); !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestAppointmentDetailIncludesParties(t *testing.T) {
	a := Appointment{
		Patient: User{BaseModel: BaseModel{ID: "p-1"}, Name: "Asha Karki", Email: "asha@example.com"},
		Doctor:  DoctorProfile{BaseModel: BaseModel{ID: "d-1"}, Name: "Dr. Rao", Specialization: "Cardiology"},
	}
	a.Status = StatusPending

	raw, err := json.Marshal(a.Detail())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)

	for _, want := range []string{"Asha Karki", "Dr. Rao", "Cardiology", `"patient"`, `"doctor"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s in %s", want, body)
		}
	}
	if !strings.Contains(body, "asha@example.com") {
		t.Errorf("expected patient email in %s", body)
	}
}

func TestAppointmentDetailOmitsUnloadedParties(t *testing.T) {
	var a Appointment
	a.Status = StatusPending

	raw, err := json.Marshal(a.Detail())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, absent := range []string{`"patient"`, `"doctor"`} {
		if strings.Contains(string(raw), absent) {
			t.Errorf("expected %s to be omitted, got %s", absent, raw)
		}
	}
}
