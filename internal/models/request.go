package models

import "time"

// RequestType enumerates the kinds of approval requests.
type RequestType string

const (
	RequestMaintenanceApproval RequestType = "maintenance_approval"
	RequestAssetReturn         RequestType = "asset_return"
	RequestAssetPurchase       RequestType = "asset_purchase"
	RequestAssetTransfer       RequestType = "asset_transfer"
)

// RequestStatus enumerates approval workflow states.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// ApproverStatus is one approver's individual decision state.
type ApproverStatus string

const (
	ApproverPending  ApproverStatus = "pending"
	ApproverApproved ApproverStatus = "approved"
	ApproverRejected ApproverStatus = "rejected"
)

// Approver is one participant in an approval request.
type Approver struct {
	EmployeeID string         `bson:"employee_id" json:"employee_id"`
	Name       string         `bson:"name" json:"name"`
	Status     ApproverStatus `bson:"status" json:"status"`
	Comment    string         `bson:"comment,omitempty" json:"comment,omitempty"`
	ActedAt    *time.Time     `bson:"acted_at,omitempty" json:"acted_at,omitempty"`
}

// RequestAssetDetails is the asset payload of an approval request. One
// struct covers every request type; which fields are meaningful depends
// on the type.
type RequestAssetDetails struct {
	AssetID       string  `bson:"asset_id,omitempty" json:"asset_id,omitempty"`
	AssetName     string  `bson:"asset_name,omitempty" json:"asset_name,omitempty"`
	CategoryID    string  `bson:"category_id,omitempty" json:"category_id,omitempty"`
	EstimatedCost float64 `bson:"estimated_cost,omitempty" json:"estimated_cost,omitempty"`
	ToDepartment  string  `bson:"to_department,omitempty" json:"to_department,omitempty"`
	Reason        string  `bson:"reason,omitempty" json:"reason,omitempty"`
}

// Request is a generic approval workflow document. Overall status is derived
// from the approvers: any rejection makes it rejected, unanimous approval
// makes it approved, otherwise it stays pending.
type Request struct {
	ID           string              `bson:"_id" json:"id"`
	Type         RequestType         `bson:"type" json:"type"`
	Status       RequestStatus       `bson:"status" json:"status"`
	Requestor    string              `bson:"requestor" json:"requestor"`
	Approvers    []Approver          `bson:"approvers" json:"approvers"`
	AssetDetails RequestAssetDetails `bson:"asset_details" json:"asset_details"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updated_at"`
}

// Terminal reports whether the request has reached a final state.
func (r *Request) Terminal() bool {
	return r.Status == RequestApproved || r.Status == RequestRejected
}
