package service

import "errors"

// Expected domain errors. Handlers translate these to 4xx responses; anything
// else is a storage or programming failure and surfaces as a 500.
var (
	ErrAssetNotFound       = errors.New("asset not found")
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrMaintenanceNotFound = errors.New("maintenance record not found")
	ErrRequestNotFound     = errors.New("request not found")

	ErrAssetAlreadyAssigned      = errors.New("asset already has an active assignment")
	ErrAssignmentAlreadyReturned = errors.New("assignment already returned")
	ErrMaintenanceNotRequired    = errors.New("asset category does not require maintenance")
	ErrMaintenanceFinalized      = errors.New("maintenance record already finalized")
	ErrRequestFinalized          = errors.New("request already finalized")
	ErrApproverNotFound          = errors.New("approver not found on request")

	ErrInvalidInput = errors.New("invalid input")
)

// IsNotFound reports whether err is one of the not-found domain errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAssetNotFound) ||
		errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrAssignmentNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrMaintenanceNotFound) ||
		errors.Is(err, ErrRequestNotFound) ||
		errors.Is(err, ErrApproverNotFound)
}

// IsConflict reports whether err is one of the policy/conflict domain errors.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAssetAlreadyAssigned) ||
		errors.Is(err, ErrAssignmentAlreadyReturned) ||
		errors.Is(err, ErrMaintenanceNotRequired) ||
		errors.Is(err, ErrMaintenanceFinalized) ||
		errors.Is(err, ErrRequestFinalized)
}
