package models

import "time"

// AssetStatus enumerates asset lifecycle states.
type AssetStatus string

const (
	AssetAvailable            AssetStatus = "available"
	AssetAssigned             AssetStatus = "assigned"
	AssetUnderMaintenance     AssetStatus = "under_maintenance"
	AssetMaintenanceRequested AssetStatus = "maintenance_requested"
	AssetRetired              AssetStatus = "retired"
	AssetLost                 AssetStatus = "lost"
	AssetPending              AssetStatus = "pending"
	AssetDamaged              AssetStatus = "damaged"
	AssetNonServiceable       AssetStatus = "non_serviceable"
)

// IsValidAssetStatus checks if a status value is known.
func IsValidAssetStatus(s AssetStatus) bool {
	switch s {
	case AssetAvailable, AssetAssigned, AssetUnderMaintenance, AssetMaintenanceRequested,
		AssetRetired, AssetLost, AssetPending, AssetDamaged, AssetNonServiceable:
		return true
	default:
		return false
	}
}

// Asset represents a trackable item in the catalog. The assignment fields
// (has_active_assignment, current_assignee_*) are derived from the open
// ledger entry for the asset and must only be mutated through the
// assignment coordinator.
type Asset struct {
	ID                    string              `bson:"_id" json:"id"`
	Name                  string              `bson:"name" json:"name"`
	SerialNumber          string              `bson:"serial_number" json:"serial_number"`
	CategoryID            string              `bson:"category_id" json:"category_id"`
	Status                AssetStatus         `bson:"status" json:"status"`
	Condition             string              `bson:"condition" json:"condition"` // "new", "good", "fair", "poor"
	HasActiveAssignment   bool                `bson:"has_active_assignment" json:"has_active_assignment"`
	CurrentAssigneeID     string              `bson:"current_assignee_id,omitempty" json:"current_assignee_id,omitempty"`
	CurrentAssigneeName   string              `bson:"current_assignee_name,omitempty" json:"current_assignee_name,omitempty"`
	CurrentAssignmentID   string              `bson:"current_assignment_id,omitempty" json:"current_assignment_id,omitempty"`
	CurrentAssignmentDate *time.Time          `bson:"current_assignment_date,omitempty" json:"current_assignment_date,omitempty"`
	ExpectedReturnDate    *time.Time          `bson:"expected_return_date,omitempty" json:"expected_return_date,omitempty"`
	Location              string              `bson:"location" json:"location"`
	Department            string              `bson:"department" json:"department"`
	PurchaseCost          float64             `bson:"purchase_cost" json:"purchase_cost"`
	PurchaseDate          *time.Time          `bson:"purchase_date,omitempty" json:"purchase_date,omitempty"`
	IsOperational         bool                `bson:"is_operational" json:"is_operational"`
	NextMaintenanceDate   *time.Time          `bson:"next_maintenance_date,omitempty" json:"next_maintenance_date,omitempty"`
	AssignmentHistory     []AssignmentRecord  `bson:"assignment_history" json:"assignment_history"`
	MaintenanceHistory    []MaintenanceRecord `bson:"maintenance_history" json:"maintenance_history"`
	Documents             []Document          `bson:"documents" json:"documents"`
	CreatedAt             time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time           `bson:"updated_at" json:"updated_at"`
}

// Document is a file reference attached to an asset (invoice, warranty, photo).
type Document struct {
	ID         string    `bson:"id" json:"id"`
	Name       string    `bson:"name" json:"name"`
	Type       string    `bson:"type" json:"type"`
	URL        string    `bson:"url" json:"url"`
	UploadedAt time.Time `bson:"uploaded_at" json:"uploaded_at"`
}
