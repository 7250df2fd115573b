package domain

import "time"

type Role string

const (
	RoleTutor Role = "tutor"
	RoleAdmin Role = "admin"
)

// Account is a staff login. Guardians never sign in.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
