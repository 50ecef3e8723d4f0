package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/policy"
	"clinic-booking-server/internal/utils"
)

// DoctorHandler handles doctor profile and review requests.
type DoctorHandler struct {
	DB *gorm.DB
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(db *gorm.DB) *DoctorHandler {
	return &DoctorHandler{DB: db}
}

// CreateDoctorProfileRequest represents the request body for creating a
// doctor profile. Identity fields left empty are copied from the user
// record.
type CreateDoctorProfileRequest struct {
	Name                string                `json:"name"`
	Email               string                `json:"email" binding:"omitempty,email"`
	PhoneNumber         string                `json:"phoneNumber" binding:"omitempty,len=10,numeric"`
	Address             *AddressRequest       `json:"address"`
	Specialization      string                `json:"specialization" binding:"required"`
	Experience          *int                  `json:"experience" binding:"required,min=0"`
	ConsultationFee     *float64              `json:"consultationFee" binding:"required,min=0"`
	AppointmentDuration *int                  `json:"appointmentDuration" binding:"required,min=1,max=120"`
	ProfilePicture      string                `json:"profilePicture"`
	AvailableSchedule   models.WeeklySchedule `json:"availableSchedule"`
}

// CreateDoctorProfile creates the profile for a user with an active doctor
// request. The unique index on user_id is the real duplicate guard.
func (h *DoctorHandler) CreateDoctorProfile(c *gin.Context) {
	user, exists := middleware.GetUserFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if !user.IsDoctorRequested {
		utils.Forbidden(c, "You have not requested to be a doctor")
		return
	}

	var req CreateDoctorProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	schedule := req.AvailableSchedule
	if schedule == nil {
		schedule = models.DefaultWeeklySchedule()
	}
	if err := schedule.Validate(); err != nil {
		utils.BadRequest(c, "Invalid schedule: "+err.Error())
		return
	}

	doctor := models.DoctorProfile{
		UserID:              user.ID,
		Name:                req.Name,
		Email:               strings.ToLower(req.Email),
		PhoneNumber:         req.PhoneNumber,
		Specialization:      req.Specialization,
		Experience:          *req.Experience,
		ConsultationFee:     *req.ConsultationFee,
		AppointmentDuration: *req.AppointmentDuration,
		AvailableSchedule:   schedule,
		ProfilePicture:      req.ProfilePicture,
		Address:             user.Address,
	}
	if doctor.Name == "" {
		doctor.Name = user.Name
	}
	if doctor.Email == "" {
		doctor.Email = user.Email
	}
	if doctor.PhoneNumber == "" {
		doctor.PhoneNumber = user.PhoneNumber
	}
	if req.Address != nil {
		doctor.Address = models.Address{
			State:   strings.ToLower(req.Address.State),
			City:    strings.ToLower(req.Address.City),
			ZipCode: req.Address.ZipCode,
		}
	}
	if doctor.ProfilePicture == "" {
		if user.ProfilePicture != "" {
			doctor.ProfilePicture = user.ProfilePicture
		} else {
			doctor.ProfilePicture = models.DefaultProfilePicture
		}
	}

	if err := h.DB.Create(&doctor).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Conflict(c, "Doctor profile already exists")
		} else {
			utils.InternalServerError(c, "Failed to create doctor profile: "+err.Error())
		}
		return
	}

	utils.Created(c, "Doctor profile created successfully", doctor)
}

// findOwnProfile loads the doctor profile belonging to the caller.
func (h *DoctorHandler) findOwnProfile(c *gin.Context) (*models.DoctorProfile, bool) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return nil, false
	}

	var doctor models.DoctorProfile
	if err := h.DB.Where("user_id = ?", userID).First(&doctor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &doctor, true
}

// GetMyDoctorProfile returns the caller's own doctor profile.
func (h *DoctorHandler) GetMyDoctorProfile(c *gin.Context) {
	doctor, ok := h.findOwnProfile(c)
	if !ok {
		return
	}
	utils.Success(c, "Doctor profile fetched successfully", doctor)
}

// UpdateDoctorProfileRequest represents a partial profile update.
type UpdateDoctorProfileRequest struct {
	Name                string                `json:"name"`
	Email               string                `json:"email" binding:"omitempty,email"`
	PhoneNumber         string                `json:"phoneNumber" binding:"omitempty,len=10,numeric"`
	Address             *AddressRequest       `json:"address"`
	Specialization      string                `json:"specialization"`
	Experience          *int                  `json:"experience" binding:"omitempty,min=0"`
	ConsultationFee     *float64              `json:"consultationFee" binding:"omitempty,min=0"`
	AppointmentDuration *int                  `json:"appointmentDuration" binding:"omitempty,min=1,max=120"`
	ProfilePicture      string                `json:"profilePicture"`
	AvailableSchedule   models.WeeklySchedule `json:"availableSchedule"`
}

// UpdateDoctorProfile updates the caller's own profile. Fee changes do not
// touch existing appointments; the fee is snapshotted at booking time.
func (h *DoctorHandler) UpdateDoctorProfile(c *gin.Context) {
	doctor, ok := h.findOwnProfile(c)
	if !ok {
		return
	}

	var req UpdateDoctorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if req.Name != "" {
		doctor.Name = req.Name
	}
	if req.Email != "" {
		doctor.Email = strings.ToLower(req.Email)
	}
	if req.PhoneNumber != "" {
		doctor.PhoneNumber = req.PhoneNumber
	}
	if req.Address != nil {
		doctor.Address = models.Address{
			State:   strings.ToLower(req.Address.State),
			City:    strings.ToLower(req.Address.City),
			ZipCode: req.Address.ZipCode,
		}
	}
	if req.Specialization != "" {
		doctor.Specialization = req.Specialization
	}
	if req.Experience != nil {
		doctor.Experience = *req.Experience
	}
	if req.ConsultationFee != nil {
		doctor.ConsultationFee = *req.ConsultationFee
	}
	if req.AppointmentDuration != nil {
		doctor.AppointmentDuration = *req.AppointmentDuration
	}
	if req.ProfilePicture != "" {
		doctor.ProfilePicture = req.ProfilePicture
	}
	if req.AvailableSchedule != nil {
		if err := req.AvailableSchedule.Validate(); err != nil {
			utils.BadRequest(c, "Invalid schedule: "+err.Error())
			return
		}
		doctor.AvailableSchedule = req.AvailableSchedule
	}

	if err := h.DB.Save(doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to update doctor profile: "+err.Error())
		return
	}

	utils.Success(c, "Doctor profile updated successfully", doctor)
}

// GetDoctorByID returns the public projection of a doctor profile.
func (h *DoctorHandler) GetDoctorByID(c *gin.Context) {
	doctorID := c.Param("id")

	var doctor models.DoctorProfile
	if err := h.DB.First(&doctor, "id = ?", doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Doctor found successfully", doctor.Public())
}

// GetApprovedDoctors lists the doctors patients can book.
func (h *DoctorHandler) GetApprovedDoctors(c *gin.Context) {
	var doctors []models.DoctorProfile
	if err := h.DB.Where("is_approved = ?", true).Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	public := make([]models.DoctorPublic, len(doctors))
	for i, d := range doctors {
		public[i] = d.Public()
	}

	utils.Success(c, "Approved doctors fetched successfully", public)
}

// GetPendingDoctors lists unapproved profiles awaiting review (admin).
func (h *DoctorHandler) GetPendingDoctors(c *gin.Context) {
	var doctors []models.DoctorProfile
	if err := h.DB.Where("is_approved = ?", false).Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch pending doctors: "+err.Error())
		return
	}

	utils.Success(c, "Pending doctors fetched successfully", doctors)
}

// ApproveDoctor flips the profile to approved and elevates the user's role.
// Both writes happen in one transaction.
func (h *DoctorHandler) ApproveDoctor(c *gin.Context) {
	doctorID := c.Param("id")

	var doctor models.DoctorProfile
	if err := h.DB.First(&doctor, "id = ?", doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if doctor.IsApproved {
		utils.Conflict(c, "Doctor is already approved")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&doctor).Update("is_approved", true).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", doctor.UserID).
			Updates(map[string]interface{}{
				"role":                models.RoleDoctor,
				"is_doctor_requested": false,
			}).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to approve doctor: "+err.Error())
		return
	}

	utils.Success(c, "Doctor approved successfully", nil)
}

// RejectDoctor deletes an unapproved profile and clears the user's request
// flag. Approved doctors cannot be rejected; they are removed through
// profile deletion instead.
func (h *DoctorHandler) RejectDoctor(c *gin.Context) {
	doctorID := c.Param("id")

	var doctor models.DoctorProfile
	if err := h.DB.First(&doctor, "id = ?", doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if doctor.IsApproved {
		utils.Conflict(c, "Doctor is already approved, delete the profile instead")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.DoctorProfile{}, "id = ?", doctor.ID).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", doctor.UserID).
			Updates(map[string]interface{}{
				"role":                models.RolePatient,
				"is_doctor_requested": false,
			}).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to reject doctor: "+err.Error())
		return
	}

	utils.Success(c, "Doctor rejected successfully", nil)
}

// DeleteDoctorProfile removes a profile. Doctors delete their own; admins
// delete by the owning user's id. The user's role reverts to patient in the
// same transaction.
func (h *DoctorHandler) DeleteDoctorProfile(c *gin.Context) {
	callerID, _ := middleware.GetUserIDFromContext(c)
	callerRole, _ := middleware.GetUserRoleFromContext(c)

	if !policy.CanDeleteDoctorProfile(callerRole) {
		utils.Forbidden(c, "You are not allowed to delete doctor profiles")
		return
	}

	ownerID := callerID
	if callerRole == models.RoleAdmin {
		ownerID = c.Param("id")
		if ownerID == "" {
			utils.BadRequest(c, "User id is required")
			return
		}
	}

	var doctor models.DoctorProfile
	if err := h.DB.Where("user_id = ?", ownerID).First(&doctor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.DoctorProfile{}, "id = ?", doctor.ID).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", doctor.UserID).
			Updates(map[string]interface{}{
				"role":                models.RolePatient,
				"is_doctor_requested": false,
			}).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete doctor profile: "+err.Error())
		return
	}

	utils.Success(c, "Doctor profile deleted successfully", nil)
}

// AddReviewRequest represents the request body for reviewing a doctor.
type AddReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"omitempty,max=500"`
}

// AddReview lets a patient review a doctor after a completed appointment.
// The review insert and the aggregate recompute run in one transaction; the
// composite unique index on (doctor, reviewer) rejects duplicates.
func (h *DoctorHandler) AddReview(c *gin.Context) {
	doctorID := c.Param("id")
	callerID, _ := middleware.GetUserIDFromContext(c)
	callerRole, _ := middleware.GetUserRoleFromContext(c)

	if !policy.CanReviewDoctor(callerRole) {
		utils.Forbidden(c, "Only patients are allowed to review")
		return
	}

	var req AddReviewRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var doctor models.DoctorProfile
	if err := h.DB.First(&doctor, "id = ?", doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var completed int64
	err := h.DB.Model(&models.Appointment{}).
		Where("patient_id = ? AND doctor_id = ? AND status = ?", callerID, doctor.ID, models.StatusCompleted).
		Count(&completed).Error
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if completed == 0 {
		utils.Forbidden(c, "You can only review after a completed appointment")
		return
	}

	review := models.Review{
		DoctorID:   doctor.ID,
		ReviewerID: callerID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		if err := tx.Where("doctor_id = ?", doctor.ID).Find(&doctor.Reviews).Error; err != nil {
			return err
		}
		doctor.RecalculateRating()
		return tx.Model(&doctor).Updates(map[string]interface{}{
			"average_rating": doctor.AverageRating,
			"total_reviews":  doctor.TotalReviews,
		}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Conflict(c, "You have already reviewed this doctor")
		} else {
			utils.InternalServerError(c, "Failed to add review: "+err.Error())
		}
		return
	}

	utils.Created(c, "Review added successfully", review)
}

// ReviewsResponse is the doctor-facing review listing.
type ReviewsResponse struct {
	TotalReviews  int                   `json:"totalReviews"`
	AverageRating float64               `json:"averageRating"`
	Reviews       []models.ReviewDetail `json:"reviews"`
}

// GetMyReviews returns the reviews left on the caller's doctor profile.
func (h *DoctorHandler) GetMyReviews(c *gin.Context) {
	doctor, ok := h.findOwnProfile(c)
	if !ok {
		return
	}

	var reviews []models.Review
	if err := h.DB.Preload("Reviewer").Where("doctor_id = ?", doctor.ID).
		Order("created_at desc").Find(&reviews).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch reviews: "+err.Error())
		return
	}

	details := make([]models.ReviewDetail, len(reviews))
	for i := range reviews {
		details[i] = reviews[i].Detail()
	}

	utils.Success(c, "Reviews fetched successfully", ReviewsResponse{
		TotalReviews:  doctor.TotalReviews,
		AverageRating: doctor.AverageRating,
		Reviews:       details,
	})
}
