package models

// Role enumerates the access levels a user can hold. A user without an
// explicit grant is RoleNone: authenticated, but unprivileged.
type Role string

const (
	RoleNone  Role = "none"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// ParseRole maps a stored or client-supplied string onto a known role.
// Anything unrecognised degrades to RoleNone.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAgent:
		return RoleAgent
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleNone
	}
}

// User describes a marketplace account. Accounts are created on first
// registration; the email is the identity key and is matched case-sensitively.
type User struct {
	BaseModel

	Name  string `json:"name"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`
	Photo string `json:"photo,omitempty"`

	// Role is only ever mutated through an admin grant, never self-escalated.
	Role Role `gorm:"type:varchar(16);default:'none'" json:"role"`
}
