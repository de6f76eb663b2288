package model

import "time"

// Progress tracks one personal goal over time (weight, strength, endurance).
type Progress struct {
	ID              int64     `json:"id"`
	GoalType        string    `json:"goalType"`
	GoalDescription string    `json:"goalDescription,omitempty"`
	InitialValue    float64   `json:"initialValue"`
	CurrentValue    float64   `json:"currentValue"`
	TargetValue     float64   `json:"targetValue"`
	Unit            string    `json:"unit,omitempty"`
	StartedAt       time.Time `json:"startedAt,omitzero"`
	TargetDate      time.Time `json:"targetDate,omitzero"`
	UpdatedAt       time.Time `json:"updatedAt,omitzero"`
	Completed       bool      `json:"isCompleted"`
}

// ProgressHistory is one recorded measurement for a goal.
type ProgressHistory struct {
	ID               int64     `json:"id"`
	MeasurementValue float64   `json:"measurementValue"`
	RecordedAt       time.Time `json:"recordedAt,omitzero"`
	Notes            string    `json:"notes,omitempty"`
}
