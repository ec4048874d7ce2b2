package models

import "time"

// MaintenanceStatus enumerates the states of one maintenance episode.
type MaintenanceStatus string

const (
	MaintenanceRequested  MaintenanceStatus = "requested"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceCompleted  MaintenanceStatus = "completed"
	MaintenanceCancelled  MaintenanceStatus = "cancelled"
)

// MaintenanceRecord is one maintenance episode for an asset. The record in
// the maintenance_history collection is mirrored inside
// Asset.MaintenanceHistory.
type MaintenanceRecord struct {
	ID                       string            `bson:"_id" json:"id"`
	AssetID                  string            `bson:"asset_id" json:"asset_id"`
	MaintenanceType          string            `bson:"maintenance_type" json:"maintenance_type"` // "repair", "inspection", "upgrade", "cleaning"
	Status                   MaintenanceStatus `bson:"status" json:"status"`
	Description              string            `bson:"description,omitempty" json:"description,omitempty"`
	ConditionBefore          string            `bson:"condition_before,omitempty" json:"condition_before,omitempty"`
	ConditionAfter           string            `bson:"condition_after,omitempty" json:"condition_after,omitempty"`
	MaintenanceDate          time.Time         `bson:"maintenance_date" json:"maintenance_date"`
	CompletedDate            *time.Time        `bson:"completed_date,omitempty" json:"completed_date,omitempty"`
	NextScheduledMaintenance *time.Time        `bson:"next_scheduled_maintenance,omitempty" json:"next_scheduled_maintenance,omitempty"`
	Cost                     float64           `bson:"cost" json:"cost"`
	Technician               string            `bson:"technician,omitempty" json:"technician,omitempty"`
	Notes                    string            `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt                time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt                time.Time         `bson:"updated_at" json:"updated_at"`
}
