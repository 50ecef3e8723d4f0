package policy

import (
	"testing"

	"clinic-booking-server/internal/models"
)

func TestCanBookAppointment(t *testing.T) {
	if !CanBookAppointment(models.RolePatient) {
		t.Fatal("patients should be able to book")
	}
	if CanBookAppointment(models.RoleDoctor) || CanBookAppointment(models.RoleAdmin) {
		t.Fatal("only patients should be able to book")
	}
}

func TestCanCancelAppointment(t *testing.T) {
	appt := &models.Appointment{PatientID: "p1", DoctorID: "d1"}

	cases := []struct {
		name   string
		role   models.Role
		caller string
		want   bool
	}{
		{"owning patient", models.RolePatient, "p1", true},
		{"other patient", models.RolePatient, "p2", false},
		{"doctor", models.RoleDoctor, "p1", false},
		{"admin", models.RoleAdmin, "p1", false},
	}
	for _, tc := range cases {
		if got := CanCancelAppointment(tc.role, tc.caller, appt); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCanActOnAppointmentAsDoctor(t *testing.T) {
	appt := &models.Appointment{PatientID: "p1", DoctorID: "d1"}

	if !CanActOnAppointmentAsDoctor(models.RoleDoctor, "d1", appt) {
		t.Fatal("owning doctor should be allowed")
	}
	if CanActOnAppointmentAsDoctor(models.RoleDoctor, "d2", appt) {
		t.Fatal("other doctor should be denied")
	}
	if CanActOnAppointmentAsDoctor(models.RoleAdmin, "d1", appt) {
		t.Fatal("admin does not act as the doctor")
	}
}

func TestCanViewAppointment(t *testing.T) {
	appt := &models.Appointment{PatientID: "p1", DoctorID: "d1"}

	cases := []struct {
		name      string
		role      models.Role
		caller    string
		profileID string
		want      bool
	}{
		{"admin bypasses ownership", models.RoleAdmin, "x", "", true},
		{"owning patient", models.RolePatient, "p1", "", true},
		{"other patient", models.RolePatient, "p2", "", false},
		{"owning doctor", models.RoleDoctor, "u1", "d1", true},
		{"other doctor", models.RoleDoctor, "u2", "d2", false},
		{"doctor without profile", models.RoleDoctor, "u2", "", false},
	}
	for _, tc := range cases {
		if got := CanViewAppointment(tc.role, tc.caller, tc.profileID, appt); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCanManageUser(t *testing.T) {
	if !CanManageUser(models.RoleAdmin, "a1", "u1") {
		t.Fatal("admin should manage any user")
	}
	if !CanManageUser(models.RolePatient, "u1", "u1") {
		t.Fatal("users should manage themselves")
	}
	if CanManageUser(models.RolePatient, "u1", "u2") {
		t.Fatal("users should not manage others")
	}
}

func TestCanDeleteUser(t *testing.T) {
	if !CanDeleteUser(models.RoleAdmin, "a1", "u1") {
		t.Fatal("admin should delete other users")
	}
	if CanDeleteUser(models.RoleAdmin, "a1", "a1") {
		t.Fatal("admin must not delete their own account")
	}
	if CanDeleteUser(models.RoleDoctor, "d1", "u1") {
		t.Fatal("non-admin should not delete users")
	}
}

func TestCanDeleteDoctorProfile(t *testing.T) {
	if !CanDeleteDoctorProfile(models.RoleDoctor) || !CanDeleteDoctorProfile(models.RoleAdmin) {
		t.Fatal("doctor and admin should be allowed")
	}
	if CanDeleteDoctorProfile(models.RolePatient) {
		t.Fatal("patient should be denied")
	}
}

func TestCanReviewDoctor(t *testing.T) {
	if !CanReviewDoctor(models.RolePatient) {
		t.Fatal("patients should review")
	}
	if CanReviewDoctor(models.RoleDoctor) || CanReviewDoctor(models.RoleAdmin) {
		t.Fatal("only patients should review")
	}
}
