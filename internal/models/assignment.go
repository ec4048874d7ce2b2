package models

import "time"

// AssignmentStatus enumerates the states of one assignment episode.
type AssignmentStatus string

const (
	AssignmentActive   AssignmentStatus = "active"
	AssignmentReturned AssignmentStatus = "returned"
)

// AssignmentRecord is one assignment episode linking an asset to an employee.
// The record in the assignment_history collection is the source of truth;
// copies embedded in Asset.AssignmentHistory and Employee.AssignmentHistory
// are mirrors kept in sync by the coordinator.
type AssignmentRecord struct {
	ID                    string           `bson:"_id" json:"id"`
	AssetID               string           `bson:"asset_id" json:"asset_id"`
	AssetName             string           `bson:"asset_name" json:"asset_name"`
	EmployeeID            string           `bson:"employee_id" json:"employee_id"`
	EmployeeName          string           `bson:"employee_name" json:"employee_name"`
	AssignmentDate        time.Time        `bson:"assignment_date" json:"assignment_date"`
	ExpectedReturnDate    *time.Time       `bson:"expected_return_date,omitempty" json:"expected_return_date,omitempty"`
	ReturnDate            *time.Time       `bson:"return_date,omitempty" json:"return_date,omitempty"` // nil while open
	Status                AssignmentStatus `bson:"status" json:"status"`
	ConditionAtAssignment string           `bson:"condition_at_assignment" json:"condition_at_assignment"`
	ConditionAfter        string           `bson:"condition_after,omitempty" json:"condition_after,omitempty"`
	Notes                 string           `bson:"notes,omitempty" json:"notes,omitempty"`
	ReturnNotes           string           `bson:"return_notes,omitempty" json:"return_notes,omitempty"`
	CreatedAt             time.Time        `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time        `bson:"updated_at" json:"updated_at"`
}

// Open reports whether the episode has not yet been returned.
func (r *AssignmentRecord) Open() bool {
	return r.ReturnDate == nil && r.Status == AssignmentActive
}

// AssignOptions carries caller-supplied parameters for an assign operation.
// Expected return is resolved in priority order: duration, explicit date,
// default of one year.
type AssignOptions struct {
	DurationValue      int    `json:"duration_value,omitempty"`
	DurationUnit       string `json:"duration_unit,omitempty"` // "days", "weeks", "months", "years"
	ExpectedReturnDate string `json:"expected_return_date,omitempty"`
	Condition          string `json:"condition,omitempty"`
	Notes              string `json:"notes,omitempty"`
}

// UnassignOptions carries caller-supplied parameters for an unassign operation.
type UnassignOptions struct {
	ReturnDate     string `json:"return_date,omitempty"`
	ConditionAfter string `json:"condition_after,omitempty"`
	Notes          string `json:"notes,omitempty"`
}
