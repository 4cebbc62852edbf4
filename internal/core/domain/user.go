package domain

const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// User is an operator of the admin interface, from configuration or the operators collection.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}
