package models

import "time"

// Employee represents a member of the organization that assets can be
// assigned to. The current_assets fields are a denormalized view of the
// employee's open assignment episodes.
type Employee struct {
	ID                      string             `bson:"_id" json:"id"`
	Name                    string             `bson:"name" json:"name"`
	Email                   string             `bson:"email" json:"email"`
	Phone                   string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Department              string             `bson:"department" json:"department"`
	Position                string             `bson:"position,omitempty" json:"position,omitempty"`
	CurrentAssets           []AssetSnapshot    `bson:"current_assets" json:"current_assets"`
	AssignedAssetIDs        []string           `bson:"assigned_asset_ids" json:"assigned_asset_ids"`
	HasAssignedAssets       bool               `bson:"has_assigned_assets" json:"has_assigned_assets"`
	CurrentAssignmentsCount int                `bson:"current_assignments_count" json:"current_assignments_count"`
	AssignmentHistory       []AssignmentRecord `bson:"assignment_history" json:"assignment_history"`
	CreatedAt               time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt               time.Time          `bson:"updated_at" json:"updated_at"`
}

// AssetSnapshot is the denormalized view of one actively assigned asset
// embedded in Employee.CurrentAssets.
type AssetSnapshot struct {
	AssetID            string     `bson:"asset_id" json:"asset_id"`
	AssetName          string     `bson:"asset_name" json:"asset_name"`
	SerialNumber       string     `bson:"serial_number" json:"serial_number"`
	CategoryID         string     `bson:"category_id" json:"category_id"`
	AssignmentID       string     `bson:"assignment_id" json:"assignment_id"`
	AssignmentDate     time.Time  `bson:"assignment_date" json:"assignment_date"`
	ExpectedReturnDate *time.Time `bson:"expected_return_date,omitempty" json:"expected_return_date,omitempty"`
}
