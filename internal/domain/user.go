package domain

import "strings"

// User is a read-only projection of the external user store. The chat
// service never creates or mutates users.
type User struct {
	ID        int64  `db:"id"`
	Email     string `db:"email"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	UserType  string `db:"user_type"`
	IsActive  bool   `db:"is_active"`
}

func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}
