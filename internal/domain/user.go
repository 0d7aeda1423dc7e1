package domain

// User is the domain entity for a registered account.
// PasswordHash is the bcrypt digest; the plaintext is never kept.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}
