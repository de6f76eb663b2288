package model

import "time"

// Intensity levels accepted by the workout-schedule endpoint.
const (
	IntensityLow    = "low"
	IntensityMedium = "medium"
	IntensityHigh   = "high"
)

// WorkoutSchedule is a weekly workout plan with its exercises.
type WorkoutSchedule struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Days        []string   `json:"days,omitempty"` // e.g. "monday", "thursday"
	Exercises   []Exercise `json:"exercises,omitempty"`
	Intensity   string     `json:"intensity,omitempty"`
	Duration    int        `json:"duration,omitempty"` // minutes
	CreatedAt   time.Time  `json:"createdAt,omitzero"`
	UpdatedAt   time.Time  `json:"updatedAt,omitzero"`
}

// Exercise is one entry in a workout schedule.
type Exercise struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Sets      int    `json:"sets,omitempty"`
	Reps      int    `json:"reps,omitempty"`
	Completed bool   `json:"completed"`
}
