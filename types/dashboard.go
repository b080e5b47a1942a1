package types

import "time"

// Recommendation kinds. The kind column is constrained to this set.
const (
	RecommendationKindCourse = "course"
	RecommendationKindTrack  = "track"
)

// WellbeingEntry is one self-reported well-being measurement.
type WellbeingEntry struct {
	// RecordedAt is the date the measurement was taken.
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`

	// StressLevel is the reported stress level (0-10).
	StressLevel int `json:"stress_level" db:"stress_level"`

	// MotivationLevel is the reported motivation level (0-10).
	MotivationLevel int `json:"motivation_level" db:"motivation_level"`

	// SleepQuality is the reported sleep quality (0-10).
	SleepQuality int `json:"sleep_quality" db:"sleep_quality"`
}

// TrackProgress is a user's progress on one learning track.
type TrackProgress struct {
	TrackName   string  `json:"track_name" db:"track_name"`
	ProgressPct float64 `json:"progress_pct" db:"progress_pct"`
	Status      string  `json:"status" db:"status"`
}

// Recommendation is a content recommendation delivered to a user.
type Recommendation struct {
	// Kind is one of the RecommendationKind constants.
	Kind string `json:"kind" db:"kind"`

	// ReferenceID identifies the recommended course or track.
	ReferenceID int `json:"reference_id" db:"reference_id"`

	// Reason is the free-text justification shown to the user.
	Reason string `json:"reason" db:"reason"`

	RecommendedAt time.Time `json:"recommended_at" db:"recommended_at"`
}

// CareerLevelCount is one bucket of a company's career-level distribution.
type CareerLevelCount struct {
	CareerLevel string `json:"career_level" db:"career_level"`
	Total       int    `json:"total" db:"total"`
}

// WellbeingAverages holds company-wide averages rounded to two decimal
// places. HasRecords is false when no well-being records exist for the
// company, in which case the averages are zero.
type WellbeingAverages struct {
	AvgStress     float64 `json:"avg_stress" db:"avg_stress"`
	AvgMotivation float64 `json:"avg_motivation" db:"avg_motivation"`
	AvgSleep      float64 `json:"avg_sleep" db:"avg_sleep"`
	HasRecords    bool    `json:"has_records"`
}

// TrackUsage is one bucket of a company's track popularity ranking.
type TrackUsage struct {
	TrackName  string `json:"track_name" db:"track_name"`
	TotalUsers int    `json:"total_users" db:"total_users"`
}

// LowMotivationFlag is a well-being record whose motivation level fell
// below the alert threshold.
type LowMotivationFlag struct {
	FullName        string    `json:"full_name" db:"full_name"`
	MotivationLevel int       `json:"motivation_level" db:"motivation_level"`
	RecordedAt      time.Time `json:"recorded_at" db:"recorded_at"`
}
