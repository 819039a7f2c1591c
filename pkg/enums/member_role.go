package enums

import "fmt"

// MemberRole represents the actor role carried in access tokens.
type MemberRole string

const (
	MemberRoleAdmin      MemberRole = "admin"
	MemberRoleManager    MemberRole = "manager"
	MemberRoleTechnician MemberRole = "technician"
	MemberRoleViewer     MemberRole = "viewer"
)

var validMemberRoles = []MemberRole{
	MemberRoleAdmin,
	MemberRoleManager,
	MemberRoleTechnician,
	MemberRoleViewer,
}

// String implements fmt.Stringer.
func (m MemberRole) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MemberRole.
func (m MemberRole) IsValid() bool {
	for _, candidate := range validMemberRoles {
		if candidate == m {
			return true
		}
	}
	return false
}

// CanRequestTransfers reports whether the role may initiate stock transfers.
func (m MemberRole) CanRequestTransfers() bool {
	return m == MemberRoleAdmin || m == MemberRoleManager
}

// CanManageStock reports whether the role may create or remove stock entries.
func (m MemberRole) CanManageStock() bool {
	return m == MemberRoleAdmin || m == MemberRoleManager
}

// ParseMemberRole converts raw input into a MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	for _, candidate := range validMemberRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member role %q", value)
}
