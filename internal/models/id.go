package models

import (
	"strings"

	"github.com/google/uuid"
)

// ID prefixes identify the entity type behind an opaque identifier.
const (
	AssetIDPrefix       = "AST"
	EmployeeIDPrefix    = "EMP"
	AssignmentIDPrefix  = "ASG"
	MaintenanceIDPrefix = "MNT"
	RequestIDPrefix     = "REQ"
	CategoryIDPrefix    = "CAT"
	DocumentIDPrefix    = "DOC"
)

// NewID generates a prefixed opaque identifier, e.g. "AST-3f9a1c2b".
func NewID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + raw[:8]
}

func NewAssetID() string       { return NewID(AssetIDPrefix) }
func NewEmployeeID() string    { return NewID(EmployeeIDPrefix) }
func NewAssignmentID() string  { return NewID(AssignmentIDPrefix) }
func NewMaintenanceID() string { return NewID(MaintenanceIDPrefix) }
func NewRequestID() string     { return NewID(RequestIDPrefix) }
func NewCategoryID() string    { return NewID(CategoryIDPrefix) }
func NewDocumentID() string    { return NewID(DocumentIDPrefix) }
