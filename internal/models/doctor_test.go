package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTimeRangeValidate(t *testing.T) {
	cases := []struct {
		name    string
		r       TimeRange
		wantErr bool
	}{
		{"valid morning slot", TimeRange{"09:00", "09:30"}, false},
		{"valid full day", TimeRange{"00:00", "23:59"}, false},
		{"inverted", TimeRange{"10:00", "09:00"}, true},
		{"zero length", TimeRange{"09:00", "09:00"}, true},
		{"bad hour", TimeRange{"25:00", "26:00"}, true},
		{"bad minutes", TimeRange{"09:61", "10:00"}, true},
		{"missing zero padding", TimeRange{"9:00", "10:00"}, true},
		{"empty", TimeRange{}, true},
	}

	for _, tc := range cases {
		err := tc.r.Validate()
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: got err=%v, wantErr=%v", tc.name, err, tc.wantErr)
		}
	}
}

func TestWeeklyScheduleValidate(t *testing.T) {
	if err := DefaultWeeklySchedule().Validate(); err != nil {
		t.Fatalf("default schedule should validate: %v", err)
	}

	bad := WeeklySchedule{"monday": {{Start: "17:00", End: "09:00"}}}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for inverted range")
	}
}

func TestRatingSummary(t *testing.T) {
	cases := []struct {
		name    string
		ratings []int
		avg     float64
		total   int
	}{
		{"empty", nil, 0, 0},
		{"single", []int{5}, 5, 1},
		{"exact mean", []int{4, 2}, 3, 2},
		{"rounds to 2 decimals", []int{5, 4, 4}, 4.33, 3},
		{"rounds up", []int{5, 5, 4}, 4.67, 3},
	}

	for _, tc := range cases {
		reviews := make([]Review, len(tc.ratings))
		for i, r := range tc.ratings {
			reviews[i] = Review{Rating: r}
		}
		avg, total := RatingSummary(reviews)
		if avg != tc.avg || total != tc.total {
			t.Errorf("%s: got (%v, %d), want (%v, %d)", tc.name, avg, total, tc.avg, tc.total)
		}
	}
}

func TestRecalculateRating(t *testing.T) {
	d := DoctorProfile{Reviews: []Review{{Rating: 5}, {Rating: 3}}}
	d.RecalculateRating()
	if d.AverageRating != 4 || d.TotalReviews != 2 {
		t.Fatalf("got (%v, %d), want (4, 2)", d.AverageRating, d.TotalReviews)
	}

	// Invariant holds after removal too.
	d.Reviews = nil
	d.RecalculateRating()
	if d.AverageRating != 0 || d.TotalReviews != 0 {
		t.Fatalf("got (%v, %d), want (0, 0)", d.AverageRating, d.TotalReviews)
	}
}

func TestWeeklyScheduleScanRoundTrip(t *testing.T) {
	original := WeeklySchedule{"friday": {{Start: "09:00", End: "12:00"}}}
	value, err := original.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var scanned WeeklySchedule
	if err := scanned.Scan(value); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	ranges, ok := scanned["friday"]
	if !ok || len(ranges) != 1 || ranges[0].Start != "09:00" || ranges[0].End != "12:00" {
		t.Fatalf("unexpected scanned schedule: %#v", scanned)
	}
}

func TestReviewDetailIncludesReviewer(t *testing.T) {
	r := Review{
		Rating:   4,
		Comment:  "Very attentive",
		Reviewer: User{BaseModel: BaseModel{ID: "u-1"}, Name: "Bikash Thapa"},
	}

	raw, err := json.Marshal(r.Detail())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	if !strings.Contains(body, "Bikash Thapa") || !strings.Contains(body, `"reviewer"`) {
		t.Errorf("expected reviewer name in %s", body)
	}

	// A review loaded without its reviewer stays anonymous.
	bare := Review{Rating: 4}
	raw, err = json.Marshal(bare.Detail())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), `"reviewer"`) {
		t.Errorf("expected reviewer to be omitted, got %s", raw)
	}
}
