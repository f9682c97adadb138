package models

// User represents a user in the system. User has a username, password, and role.
// Username and password are required fields.
// Role is assigned to the user on login.
type User struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"`
}
