package progression

import "fmt"

// Role is a participant's standing within a guild. Lower ordinals carry more authority.
type Role int32

// Roles
const (
	RoleSuperAdmin    Role = 0
	RoleAdmin         Role = 1
	RolePremiumMember Role = 2
	RoleMember        Role = 3
)

var roleNames = map[Role]string{
	RoleSuperAdmin:    "Super Admin",
	RoleAdmin:         "Admin",
	RolePremiumMember: "Premium Member",
	RoleMember:        "Member",
}

// String returns the display name of the role
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", int32(r))
}

// IsKnown reports whether r is one of the defined roles
func (r Role) IsKnown() bool {
	_, ok := roleNames[r]
	return ok
}
