package models

// Review is a buyer's rating of a property listing.
type Review struct {
	BaseModel

	PropertyID    string `gorm:"type:uuid;index;not null" json:"property_id"`
	ReviewerEmail string `gorm:"index;not null" json:"reviewer_email"`
	ReviewerName  string `json:"reviewer_name,omitempty"`

	Rating  int    `gorm:"not null" json:"rating"`
	Comment string `json:"comment,omitempty"`
}
