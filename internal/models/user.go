package models

// User is an account. PasswordHash never leaves the store layer in JSON or templates.
type User struct {
	ID           int    `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"hashed_password"`
}

// Public returns a copy of the user with the hash cleared, for handing to templates.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}
