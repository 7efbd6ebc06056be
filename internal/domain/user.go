package domain

// Role enumerates restaurant staff roles.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
	RoleKitchen Role = "kitchen"
)

// ParseRole maps a backend role onto a known Role, defaulting to staff.
func ParseRole(raw string) Role {
	switch Role(normalize(raw)) {
	case RoleAdmin:
		return RoleAdmin
	case RoleKitchen:
		return RoleKitchen
	default:
		return RoleStaff
	}
}

// User is the signed-in restaurant operator.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"isActive"`
}
