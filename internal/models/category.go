package models

import "time"

// Category groups assets and carries the policy flags the assignment and
// maintenance flows consult.
type Category struct {
	ID                       string    `bson:"_id" json:"id"`
	Name                     string    `bson:"name" json:"name"`
	Description              string    `bson:"description" json:"description"`
	AllowMultipleAssignments bool      `bson:"allow_multiple_assignments" json:"allow_multiple_assignments"`
	RequiresMaintenance      bool      `bson:"requires_maintenance" json:"requires_maintenance"`
	MaintenanceFrequency     string    `bson:"maintenance_frequency" json:"maintenance_frequency"` // "<int> days|months|years"
	CreatedAt                time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt                time.Time `bson:"updated_at" json:"updated_at"`
}
