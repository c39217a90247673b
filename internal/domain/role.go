package domain

// Role is the numeric role code carried in the "type" field of a user.
type Role int

const (
	RoleAdmin   Role = 0
	RoleManager Role = 1
)

// Known reports whether the code maps to a role bucket.
// Users with an unknown code never match a role filter.
func (r Role) Known() bool {
	return r == RoleAdmin || r == RoleManager
}

// RoleFilterOption is one entry of the role checkbox group.
type RoleFilterOption struct {
	ID    Role   `json:"id"`
	Label string `json:"label"`
}

// RoleFilterOptions returns the checkbox group entries in display order.
func RoleFilterOptions() []RoleFilterOption {
	return []RoleFilterOption{
		{ID: RoleAdmin, Label: "Admin"},
		{ID: RoleManager, Label: "Manager"},
	}
}

// FindRoleFilterOption looks up an option by id.
func FindRoleFilterOption(id Role) (RoleFilterOption, error) {
	for _, opt := range RoleFilterOptions() {
		if opt.ID == id {
			return opt, nil
		}
	}
	return RoleFilterOption{}, ErrRoleNotFound
}
