package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"time"
)

// timePattern matches 24h clock times like "09:00" or "23:45".
var timePattern = regexp.MustCompile(`^(?:[01]\d|2[0-3]):[0-5]\d$`)

// TimeRange is a start/end pair of 24h "HH:MM" clock times.
type TimeRange struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

// Validate checks the clock-time format and that the range is not inverted
// or empty.
func (r TimeRange) Validate() error {
	if !timePattern.MatchString(r.Start) || !timePattern.MatchString(r.End) {
		return errors.New("time must be in 24h HH:MM format")
	}
	if r.Start >= r.End {
		return errors.New("end time must be after start time")
	}
	return nil
}

// WeeklySchedule maps a lowercase weekday name to the ranges a doctor is
// available that day. Stored as a JSON column.
type WeeklySchedule map[string][]TimeRange

// DefaultWeeklySchedule returns the schedule applied when a doctor profile
// is created without one.
func DefaultWeeklySchedule() WeeklySchedule {
	workday := []TimeRange{{Start: "09:00", End: "17:00"}}
	return WeeklySchedule{
		"monday":    workday,
		"tuesday":   workday,
		"wednesday": {},
		"thursday":  workday,
		"friday":    workday,
		"saturday":  {},
		"sunday":    {},
	}
}

// Validate checks every range on every day.
func (s WeeklySchedule) Validate() error {
	for day, ranges := range s {
		for _, r := range ranges {
			if err := r.Validate(); err != nil {
				return fmt.Errorf("%s: %w", day, err)
			}
		}
	}
	return nil
}

// Value implements driver.Valuer so GORM persists the schedule as JSON.
func (s WeeklySchedule) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *WeeklySchedule) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	raw, ok := value.([]byte)
	if !ok {
		if str, isStr := value.(string); isStr {
			raw = []byte(str)
		} else {
			return fmt.Errorf("cannot scan %T into WeeklySchedule", value)
		}
	}
	return json.Unmarshal(raw, s)
}

// Review is a patient's rating of a doctor. A patient may review a given
// doctor once, and only after a completed appointment between them.
type Review struct {
	BaseModel
	DoctorID   string `gorm:"size:36;not null;uniqueIndex:idx_doctor_reviewer" json:"doctorId"`
	ReviewerID string `gorm:"size:36;not null;uniqueIndex:idx_doctor_reviewer" json:"reviewerId"`
	Rating     int    `gorm:"not null" json:"rating"`
	Comment    string `gorm:"size:500" json:"comment,omitempty"`

	Reviewer User `gorm:"foreignKey:ReviewerID" json:"-"`
}

// DoctorProfile holds the practitioner data for a user who has been through
// the doctor request workflow. One profile per user.
type DoctorProfile struct {
	BaseModel
	UserID              string         `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	Name                string         `gorm:"size:100;not null" json:"name"`
	Email               string         `gorm:"size:255;not null" json:"email"`
	PhoneNumber         string         `gorm:"size:20;not null" json:"phoneNumber"`
	Specialization      string         `gorm:"size:100;not null" json:"specialization"`
	Experience          int            `gorm:"not null" json:"experience"`
	ConsultationFee     float64        `gorm:"not null" json:"consultationFee"`
	AppointmentDuration int            `gorm:"not null" json:"appointmentDuration"` // minutes
	AvailableSchedule   WeeklySchedule `gorm:"type:json" json:"availableSchedule"`
	ProfilePicture      string         `gorm:"size:512" json:"profilePicture,omitempty"`
	Address             Address        `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	IsApproved          bool           `gorm:"default:false" json:"isApproved"`
	AverageRating       float64        `gorm:"default:0" json:"averageRating"`
	TotalReviews        int            `gorm:"default:0" json:"totalReviews"`

	User    User     `gorm:"foreignKey:UserID" json:"-"`
	Reviews []Review `gorm:"foreignKey:DoctorID" json:"reviews,omitempty"`
}

// RatingSummary computes the aggregate rating fields from a review list.
// The average is rounded to 2 decimals; both values are 0 for no reviews.
func RatingSummary(reviews []Review) (average float64, total int) {
	if len(reviews) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	average = math.Round(float64(sum)/float64(len(reviews))*100) / 100
	return average, len(reviews)
}

// RecalculateRating refreshes AverageRating and TotalReviews from the loaded
// review list. Callers must persist the profile in the same transaction as
// the review mutation.
func (d *DoctorProfile) RecalculateRating() {
	d.AverageRating, d.TotalReviews = RatingSummary(d.Reviews)
}

// DoctorSummary is the public identity of a doctor embedded in appointment
// listings.
type DoctorSummary struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Specialization  string  `json:"specialization"`
	Experience      int     `json:"experience"`
	ConsultationFee float64 `json:"consultationFee"`
	ProfilePicture  string  `json:"profilePicture,omitempty"`
}

// Summary creates the listing projection of the profile.
func (d *DoctorProfile) Summary() DoctorSummary {
	return DoctorSummary{
		ID:              d.ID,
		Name:            d.Name,
		Specialization:  d.Specialization,
		Experience:      d.Experience,
		ConsultationFee: d.ConsultationFee,
		ProfilePicture:  d.ProfilePicture,
	}
}

// ReviewDetail is a review plus the reviewer's public identity.
type ReviewDetail struct {
	Review
	Reviewer *PartySummary `json:"reviewer,omitempty"`
}

// Detail attaches the preloaded reviewer to the review for serialization.
func (r *Review) Detail() ReviewDetail {
	d := ReviewDetail{Review: *r}
	if r.Reviewer.ID != "" {
		s := r.Reviewer.Summary()
		d.Reviewer = &s
	}
	return d
}

// DoctorPublic is the projection of a profile shown to patients browsing
// doctors.
type DoctorPublic struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	PhoneNumber         string         `json:"phoneNumber"`
	ProfilePicture      string         `json:"profilePicture,omitempty"`
	Specialization      string         `json:"specialization"`
	Experience          int            `json:"experience"`
	ConsultationFee     float64        `json:"consultationFee"`
	AppointmentDuration int            `json:"appointmentDuration"`
	AvailableSchedule   WeeklySchedule `json:"availableSchedule"`
	AverageRating       float64        `json:"averageRating"`
	TotalReviews        int            `json:"totalReviews"`
	CreatedAt           time.Time      `json:"createdAt"`
}

// Public creates the patient-facing projection of the profile.
func (d *DoctorProfile) Public() DoctorPublic {
	return DoctorPublic{
		ID:                  d.ID,
		Name:                d.Name,
		PhoneNumber:         d.PhoneNumber,
		ProfilePicture:      d.ProfilePicture,
		Specialization:      d.Specialization,
		Experience:          d.Experience,
		ConsultationFee:     d.ConsultationFee,
		AppointmentDuration: d.AppointmentDuration,
		AvailableSchedule:   d.AvailableSchedule,
		AverageRating:       d.AverageRating,
		TotalReviews:        d.TotalReviews,
		CreatedAt:           d.CreatedAt,
	}
}
