package models

import "gorm.io/datatypes"

// VerificationStatus tracks where a property sits in the admin review flow.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// Property is a listing owned by an agent. New listings always start out
// pending and unadvertised; every later status change goes through the
// lifecycle service, never through raw column updates.
//
// Invariant: IsAdvertised is true only while VerificationStatus is verified.
type Property struct {
	BaseModel

	AgentEmail string `gorm:"index;not null" json:"agent_email"`
	AgentName  string `json:"agent_name,omitempty"`

	Title       string `gorm:"not null" json:"title"`
	Location    string `json:"location"`
	Description string `json:"description,omitempty"`

	PriceMin int64 `json:"price_min"`
	PriceMax int64 `json:"price_max"`

	Images datatypes.JSON `json:"images,omitempty"`

	VerificationStatus VerificationStatus `gorm:"type:varchar(16);default:'pending';index" json:"verification_status"`
	IsAdvertised       bool               `gorm:"default:false;index" json:"is_advertised"`
}
