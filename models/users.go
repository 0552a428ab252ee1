package models

// Admin is the single back-office operator allowed to reset the store and
// read the journal. Its password hash comes from configuration.
type Admin struct {
	Username     string
	PasswordHash string
	Role         string
}

const RoleAdmin = "admin"
