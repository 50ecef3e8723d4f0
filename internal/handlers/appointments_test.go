package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/utils"
)

func TestRespondWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"duplicate key is a conflict", gorm.ErrDuplicatedKey, http.StatusConflict, "This time slot is already booked"},
		{"wrapped duplicate key is a conflict", errors.Join(errors.New("insert"), gorm.ErrDuplicatedKey), http.StatusConflict, "This time slot is already booked"},
		{"other errors are internal", errors.New("connection reset"), http.StatusInternalServerError, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondWriteError(c, tc.err, "This time slot is already booked", "Failed to book appointment: ")

			if w.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, w.Code)
			}
			var resp utils.ResponseData
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid response JSON: %v", err)
			}
			if resp.Error == "" {
				t.Fatalf("expected error in envelope: %#v", resp)
			}
			if tc.message != "" && resp.Error != tc.message {
				t.Fatalf("expected %q, got %q", tc.message, resp.Error)
			}
		})
	}
}

func TestCallerProfileID(t *testing.T) {
	doctor := &models.DoctorProfile{}
	doctor.ID = "profile-1"

	id, err := callerProfileID(doctor, nil)
	if err != nil || id != "profile-1" {
		t.Fatalf("got (%q, %v), want (profile-1, nil)", id, err)
	}

	// No profile is a legitimate state for the caller, not a failure.
	id, err = callerProfileID(doctor, gorm.ErrRecordNotFound)
	if err != nil || id != "" {
		t.Fatalf("got (%q, %v), want (\"\", nil)", id, err)
	}

	dbErr := errors.New("connection reset")
	if _, err = callerProfileID(doctor, dbErr); !errors.Is(err, dbErr) {
		t.Fatalf("expected the database error to propagate, got %v", err)
	}
}
