package model

import "time"

// Status is the lifecycle state of a document. Transitions between statuses
// are owned by the service layer; nothing else may change a document's status.
type Status string

const (
	StatusReceived  Status = "RECEIVED"
	StatusValidated Status = "VALIDATED"
	StatusQueued    Status = "QUEUED"
	StatusProcessed Status = "PROCESSED"
	StatusRejected  Status = "REJECTED"
)

// Statuses lists every known status in lifecycle order.
var Statuses = []Status{
	StatusReceived,
	StatusValidated,
	StatusQueued,
	StatusProcessed,
	StatusRejected,
}

// Known reports whether s is one of the five defined statuses.
func (s Status) Known() bool {
	for _, k := range Statuses {
		if s == k {
			return true
		}
	}
	return false
}

// Terminal reports whether s has no outgoing transitions.
func (s Status) Terminal() bool {
	return s == StatusProcessed || s == StatusRejected
}

// Document represents one client submission moving through the status
// lifecycle. This is a pure domain model with no database-specific tags.
// The content payload is not embedded here; it lives in object storage
// keyed by the document ID.
type Document struct {
	ID              string    `json:"id"`
	ClientReference string    `json:"clientReference"`
	DocumentType    string    `json:"documentType"`
	FileName        string    `json:"fileName"`
	Status          Status    `json:"status"`
	RejectionReason *string   `json:"rejectionReason"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
