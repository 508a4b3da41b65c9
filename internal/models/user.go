package models

// ===========================================================================
// User
// A salesperson (or manager) in the dealership. Round-robin rows,
// lead assignments and notifications all point at a user.
// ===========================================================================

// UserRole role inside the dealership
type UserRole string

const (
	RoleSalesperson UserRole = "salesperson"
	RoleManager     UserRole = "manager"
)

// User represents a dealership user
type User struct {
	BaseModel

	// Name display name
	Name string `gorm:"size:255;not null" json:"name"`

	// Email unique contact email
	Email string `gorm:"size:255;uniqueIndex;not null" json:"email"`

	// Role salesperson or manager
	Role UserRole `gorm:"size:50;not null;default:'salesperson'" json:"role"`

	// IsActive inactive users are ignored everywhere
	IsActive bool `gorm:"default:true" json:"is_active"`
}

// TableName returns the table name
func (User) TableName() string {
	return "users"
}
