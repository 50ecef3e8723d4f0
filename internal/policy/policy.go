// Package policy holds the per-request access decisions shared by the
// handlers. Every function is a pure check over the caller's role, the
// caller's identity and the ownership fields of the resource; a false
// result is surfaced as a 403, never as silently filtered data.
package policy

import (
	"clinic-booking-server/internal/models"
)

// CanBookAppointment allows only patients to create bookings.
func CanBookAppointment(role models.Role) bool {
	return role == models.RolePatient
}

// CanCancelAppointment allows the owning patient to cancel their own
// appointment. State guards (pending only) are separate from access.
func CanCancelAppointment(role models.Role, callerID string, appt *models.Appointment) bool {
	return role == models.RolePatient && appt.PatientID == callerID
}

// CanActOnAppointmentAsDoctor allows the doctor whose profile owns the
// appointment to confirm, reject or complete it.
func CanActOnAppointmentAsDoctor(role models.Role, doctorProfileID string, appt *models.Appointment) bool {
	return role == models.RoleDoctor && appt.DoctorID == doctorProfileID
}

// CanViewAppointment allows admins, the owning patient, and the owning
// doctor to read a single appointment.
func CanViewAppointment(role models.Role, callerID, doctorProfileID string, appt *models.Appointment) bool {
	if role == models.RoleAdmin {
		return true
	}
	if appt.PatientID == callerID {
		return true
	}
	return role == models.RoleDoctor && doctorProfileID != "" && appt.DoctorID == doctorProfileID
}

// CanManageUser allows admins to read or update any user and everyone else
// only their own record.
func CanManageUser(role models.Role, callerID, targetID string) bool {
	return role == models.RoleAdmin || callerID == targetID
}

// CanDeleteUser allows admins to delete users, except their own account.
func CanDeleteUser(role models.Role, callerID, targetID string) bool {
	return role == models.RoleAdmin && callerID != targetID
}

// CanDeleteDoctorProfile allows a doctor to delete their own profile and an
// admin to delete any profile by id.
func CanDeleteDoctorProfile(role models.Role) bool {
	return role == models.RoleDoctor || role == models.RoleAdmin
}

// CanReviewDoctor allows only patients to leave reviews.
func CanReviewDoctor(role models.Role) bool {
	return role == models.RolePatient
}
