package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// DefaultProfilePicture is used when a user does not upload their own avatar.
const DefaultProfilePicture = "https://cdn-icons-png.flaticon.com/512/149/149071.png"

// Address holds the postal address embedded in users and doctor profiles.
type Address struct {
	State   string `gorm:"size:100" json:"state"`
	City    string `gorm:"size:100" json:"city"`
	ZipCode string `gorm:"size:10" json:"zipCode"`
}

// User represents an account in the system. The role starts as patient and
// is only elevated through the doctor approval workflow.
type User struct {
	BaseModel
	Name              string  `gorm:"size:100;not null" json:"name"`
	Email             string  `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password          string  `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	Role              Role    `gorm:"size:20;default:'patient'" json:"role"`
	PhoneNumber       string  `gorm:"uniqueIndex;size:20;not null" json:"phoneNumber"`
	Address           Address `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	ProfilePicture    string  `gorm:"size:512" json:"profilePicture,omitempty"`
	IsDoctorRequested bool    `gorm:"default:false" json:"isDoctorRequested"`

	// Relations (not always preloaded)
	RefreshTokens       []RefreshToken `gorm:"foreignKey:UserID" json:"-"`
	PatientAppointments []Appointment  `gorm:"foreignKey:PatientID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Role              Role      `json:"role"`
	PhoneNumber       string    `json:"phoneNumber"`
	Address           Address   `json:"address"`
	ProfilePicture    string    `json:"profilePicture,omitempty"`
	IsDoctorRequested bool      `json:"isDoctorRequested"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// PartySummary is the public identity of a user embedded in appointment
// listings and reviews.
type PartySummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// Summary creates the public identity projection of the user.
func (u *User) Summary() PartySummary {
	return PartySummary{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
	}
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Role:              u.Role,
		PhoneNumber:       u.PhoneNumber,
		Address:           u.Address,
		ProfilePicture:    u.ProfilePicture,
		IsDoctorRequested: u.IsDoctorRequested,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}
