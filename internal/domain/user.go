package domain

// User is a roster entry as served by the roster endpoint.
type User struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type Role   `json:"type"`
}

// Initial returns the first character of the user's name, or "" for an empty name.
func (u User) Initial() string {
	for _, r := range u.Name {
		return string(r)
	}
	return ""
}

// RoleLabel is the role text shown next to a user.
// Everything that is not a manager is rendered as an admin, unknown codes included.
func (u User) RoleLabel() string {
	if u.Type == RoleManager {
		return "Manager"
	}
	return "Admin"
}
