package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/policy"
	"clinic-booking-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	DB *gorm.DB
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB) *AppointmentHandler {
	return &AppointmentHandler{DB: db}
}

// respondWriteError maps a failed insert or update: a duplicate-key
// violation is a conflict, anything else an internal error.
func respondWriteError(c *gin.Context, err error, conflictMsg, failurePrefix string) {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		utils.Conflict(c, conflictMsg)
		return
	}
	utils.InternalServerError(c, failurePrefix+err.Error())
}

// callerProfileID interprets a doctor-profile lookup for the calling user:
// having no profile is not an error, any other failure is an
// infrastructure error.
func callerProfileID(doctor *models.DoctorProfile, err error) (string, error) {
	if err == nil {
		return doctor.ID, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	return "", err
}

// appointmentDetails maps appointments to their listing projection.
func appointmentDetails(appointments []models.Appointment) []models.AppointmentDetail {
	details := make([]models.AppointmentDetail, len(appointments))
	for i := range appointments {
		details[i] = appointments[i].Detail()
	}
	return details
}

// BookAppointmentRequest represents the request body for booking a slot.
type BookAppointmentRequest struct {
	DoctorID        string           `json:"doctorId" binding:"required"`
	AppointmentDate string           `json:"appointmentDate" binding:"required"` // YYYY-MM-DD
	AppointmentTime models.TimeRange `json:"appointmentTime" binding:"required"`
	PaymentMethod   string           `json:"paymentMethod" binding:"required"`
	Notes           string           `json:"notes" binding:"omitempty,max=500"`
}

// BookAppointment creates a pending appointment for the calling patient.
// The slot unique index is the conflict check: a second booking for the
// same (doctor, date, start, end) fails at insert time.
func (h *AppointmentHandler) BookAppointment(c *gin.Context) {
	callerID, _ := middleware.GetUserIDFromContext(c)
	callerRole, _ := middleware.GetUserRoleFromContext(c)

	if !policy.CanBookAppointment(callerRole) {
		utils.Forbidden(c, "Only patients can book appointments")
		return
	}

	var req BookAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	date, err := time.Parse("2006-01-02", req.AppointmentDate)
	if err != nil {
		utils.BadRequest(c, "Appointment date must be in YYYY-MM-DD format")
		return
	}
	if err := req.AppointmentTime.Validate(); err != nil {
		utils.BadRequest(c, "Invalid appointment time: "+err.Error())
		return
	}
	if !models.ValidPaymentMethod(models.PaymentMethod(req.PaymentMethod)) {
		utils.BadRequest(c, "Unsupported payment method")
		return
	}

	var doctor models.DoctorProfile
	if err := h.DB.Where("id = ? AND is_approved = ?", req.DoctorID, true).First(&doctor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found or not approved")
		} else {
			utils.InternalServerError(c, "Database error verifying doctor: "+err.Error())
		}
		return
	}

	// Placeholder until the payment webhook assigns a real id; it must be
	// unique because of the payment_id index.
	placeholderID := "TEMP-" + uuid.New().String()
	now := time.Now()

	appointment := models.Appointment{
		PatientID:       callerID,
		DoctorID:        doctor.ID,
		AppointmentDate: date,
		StartTime:       req.AppointmentTime.Start,
		EndTime:         req.AppointmentTime.End,
		Status:          models.StatusPending,
		PaymentStatus:   models.PaymentPending,
		PaymentID:       &placeholderID,
		PaymentDate:     &now,
		PaymentAmount:   doctor.ConsultationFee, // fee snapshot
		PaymentMethod:   models.PaymentMethod(req.PaymentMethod),
		Notes:           req.Notes,
	}

	if err := h.DB.Create(&appointment).Error; err != nil {
		respondWriteError(c, err, "This time slot is already booked", "Failed to book appointment: ")
		return
	}

	utils.Created(c, "Appointment booked successfully", appointment)
}

// GetPatientAppointments lists the calling patient's appointments, newest
// appointment date first.
func (h *AppointmentHandler) GetPatientAppointments(c *gin.Context) {
	callerID, _ := middleware.GetUserIDFromContext(c)
	callerRole, _ := middleware.GetUserRoleFromContext(c)

	if callerRole != models.RolePatient {
		utils.Forbidden(c, "Only patients are authorized")
		return
	}

	var appointments []models.Appointment
	if err := h.DB.Preload("Doctor").
		Where("patient_id = ?", callerID).
		Order("appointment_date desc").
		Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointmentDetails(appointments))
}

// GetDoctorAppointments lists the appointments on the calling doctor's
// profile, newest appointment date first.
func (h *AppointmentHandler) GetDoctorAppointments(c *gin.Context) {
	callerID, _ := middleware.GetUserIDFromContext(c)
	callerRole, _ := middleware.GetUserRoleFromContext(c)

	if callerRole != models.RoleDoctor {
		utils.Forbidden(c, "Only doctors are authorized")
		return
	}

	var doctor models.DoctorProfile
	if err := h.DB.Where("user_id = ?", callerID).First(&doctor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var appointments []models.Appointment
	if err := h.DB.Preload("Patient").
		Where("doctor_id = ?", doctor.ID).
		Order("appointment_date desc").
		Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointmentDetails(appointments))
}

// GetAllAppointments lists every appointment (admin).
func (h *AppointmentHandler) GetAllAppointments(c *gin.Context) {
	var appointments []models.Appointment
	if err := h.DB.Preload("Patient").Preload("Doctor").
		Order("appointment_date desc").
		Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointmentDetails(appointments))
}

func (h *AppointmentHandler) loadAppointment(c *gin.Context) (*models.Appointment, bool) {
	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &appointment, true
}

// GetAppointmentByID returns a single appointment to the involved patient,
// the involved doctor, or an admin.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	callerID, _ := middleware.GetUserIDFromContext(c)
	callerRole, _ := middleware.GetUserRoleFromContext(c)

	var appointment models.Appointment
	if err := h.DB.Preload("Patient").Preload("Doctor").
		First(&appointment, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var doctorProfileID string
	if callerRole == models.RoleDoctor {
		var doctor models.DoctorProfile
		err := h.DB.Where("user_id = ?", callerID).First(&doctor).Error
		doctorProfileID, err = callerProfileID(&doctor, err)
		if err != nil {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
	}

	if !policy.CanViewAppointment(callerRole, callerID, doctorProfileID, &appointment) {
		utils.Forbidden(c, "You are not authorized to view this appointment")
		return
	}

	utils.Success(c, "Appointment fetched successfully", appointment.Detail())
}

// CancelAppointment lets the owning patient cancel a pending appointment.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	callerID, _ := middleware.GetUserIDFromContext(c)
	callerRole, _ := middleware.GetUserRoleFromContext(c)

	appointment, ok := h.loadAppointment(c)
	if !ok {
		return
	}

	if !policy.CanCancelAppointment(callerRole, callerID, appointment) {
		utils.Forbidden(c, "You are not authorized to cancel this appointment")
		return
	}
	if appointment.Status != models.StatusPending {
		utils.BadRequest(c, "Only pending appointments can be cancelled")
		return
	}

	if err := h.DB.Model(appointment).Update("status", models.StatusCancelled).Error; err != nil {
		utils.InternalServerError(c, "Failed to cancel appointment: "+err.Error())
		return
	}

	utils.Success(c, "Appointment cancelled successfully", nil)
}

// doctorTransition applies a status change on behalf of the owning doctor.
func (h *AppointmentHandler) doctorTransition(c *gin.Context, from, to models.AppointmentStatus, success string) {
	callerID, _ := middleware.GetUserIDFromContext(c)
	callerRole, _ := middleware.GetUserRoleFromContext(c)

	appointment, ok := h.loadAppointment(c)
	if !ok {
		return
	}

	var doctor models.DoctorProfile
	if err := h.DB.Where("user_id = ?", callerID).First(&doctor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !policy.CanActOnAppointmentAsDoctor(callerRole, doctor.ID, appointment) {
		utils.Forbidden(c, "You are not authorized to update this appointment")
		return
	}

	if appointment.Status != from || !appointment.Status.CanTransitionTo(to) {
		utils.BadRequest(c, "Appointment is not in "+string(from)+" state")
		return
	}

	if err := h.DB.Model(appointment).Update("status", to).Error; err != nil {
		utils.InternalServerError(c, "Failed to update appointment: "+err.Error())
		return
	}

	utils.Success(c, success, nil)
}

// ConfirmAppointment moves a pending appointment to confirmed (owning doctor).
func (h *AppointmentHandler) ConfirmAppointment(c *gin.Context) {
	h.doctorTransition(c, models.StatusPending, models.StatusConfirmed, "Appointment confirmed successfully")
}

// RejectAppointment moves a pending appointment to cancelled (owning doctor).
func (h *AppointmentHandler) RejectAppointment(c *gin.Context) {
	h.doctorTransition(c, models.StatusPending, models.StatusCancelled, "Appointment rejected successfully")
}

// CompleteAppointment moves a confirmed appointment to completed (owning doctor).
func (h *AppointmentHandler) CompleteAppointment(c *gin.Context) {
	h.doctorTransition(c, models.StatusConfirmed, models.StatusCompleted, "Appointment completed successfully")
}

// UpdatePaymentStatusRequest represents the request body for the admin
// payment update.
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus" binding:"required"`
	PaymentID     string `json:"paymentId"`
}

// UpdatePaymentStatus sets the payment state of an appointment (admin).
// Marking as paid requires a payment id and stamps the payment date; the
// unique index on payment_id rejects reuse across appointments.
func (h *AppointmentHandler) UpdatePaymentStatus(c *gin.Context) {
	var req UpdatePaymentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	target := models.PaymentStatus(req.PaymentStatus)

	appointment, ok := h.loadAppointment(c)
	if !ok {
		return
	}

	if err := appointment.ValidatePaymentUpdate(target, req.PaymentID); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{"payment_status": target}
	if target == models.PaymentPaid {
		now := time.Now()
		updates["payment_id"] = req.PaymentID
		updates["payment_date"] = now
		appointment.PaymentID = &req.PaymentID
		appointment.PaymentDate = &now
	}

	if err := h.DB.Model(appointment).Updates(updates).Error; err != nil {
		respondWriteError(c, err, "Payment ID already exists", "Failed to update payment status: ")
		return
	}
	appointment.PaymentStatus = target

	utils.Success(c, "Payment status updated successfully", appointment)
}
