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

// UserHandler handles user management requests.
type UserHandler struct {
	DB *gorm.DB
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

// GetUsers handles fetching all users (admin).
func (h *UserHandler) GetUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}

	sanitizedUsers := make([]models.UserSanitized, len(users))
	for i, u := range users {
		sanitizedUsers[i] = u.Sanitize()
	}

	utils.Success(c, "Users fetched successfully", sanitizedUsers)
}

// GetUserByID handles fetching a single user by ID (admin or self).
func (h *UserHandler) GetUserByID(c *gin.Context) {
	userID := c.Param("id")
	callerID, _ := middleware.GetUserIDFromContext(c)
	callerRole, _ := middleware.GetUserRoleFromContext(c)

	if !policy.CanManageUser(callerRole, callerID, userID) {
		utils.Forbidden(c, "You are not allowed to view this user")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "User fetched successfully", user.Sanitize())
}

// UpdateUserRequest represents the request body for updating a user.
// Role and password are deliberately absent: the role only changes through
// the doctor approval workflow, passwords through the change-password
// endpoint.
type UpdateUserRequest struct {
	Name           string          `json:"name"`
	Email          string          `json:"email,omitempty"`
	PhoneNumber    string          `json:"phoneNumber,omitempty"`
	Address        *AddressRequest `json:"address,omitempty"`
	ProfilePicture string          `json:"profilePicture,omitempty"`
}

// UpdateUser handles updating a user by ID (admin or self).
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID := c.Param("id")
	callerID, _ := middleware.GetUserIDFromContext(c)
	callerRole, _ := middleware.GetUserRoleFromContext(c)

	if !policy.CanManageUser(callerRole, callerID, userID) {
		utils.Forbidden(c, "You are not allowed to update this user")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil { // Use ShouldBindJSON for partial updates
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = strings.ToLower(req.Email)
	}
	if req.PhoneNumber != "" {
		user.PhoneNumber = req.PhoneNumber
	}
	if req.Address != nil {
		user.Address = models.Address{
			State:   strings.ToLower(req.Address.State),
			City:    strings.ToLower(req.Address.City),
			ZipCode: req.Address.ZipCode,
		}
	}
	if req.ProfilePicture != "" {
		user.ProfilePicture = req.ProfilePicture
	}

	if err := h.DB.Save(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Conflict(c, "Email or phone number already in use")
		} else {
			utils.InternalServerError(c, "Failed to update user: "+err.Error())
		}
		return
	}

	utils.Success(c, "User updated successfully", user.Sanitize())
}

// DeleteUser handles deleting a user by ID (admin, never their own account).
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID := c.Param("id")
	callerID, _ := middleware.GetUserIDFromContext(c)
	callerRole, _ := middleware.GetUserRoleFromContext(c)

	if !policy.CanDeleteUser(callerRole, callerID, userID) {
		if callerID == userID {
			utils.BadRequest(c, "Admin cannot delete their own account")
		} else {
			utils.Forbidden(c, "You are not allowed to delete users")
		}
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	// Sessions and the doctor profile go with the account. Appointments
	// stay: the booking ledger keeps its history.
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.RefreshToken{}, "user_id = ?", userID).Error; err != nil {
			return err
		}

		var doctor models.DoctorProfile
		if err := tx.Where("user_id = ?", userID).First(&doctor).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		} else {
			if err := tx.Delete(&models.Review{}, "doctor_id = ?", doctor.ID).Error; err != nil {
				return err
			}
			if err := tx.Delete(&doctor).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.User{}, "id = ?", userID).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete user: "+err.Error())
		return
	}

	utils.Success(c, "User deleted successfully", user.Sanitize())
}
