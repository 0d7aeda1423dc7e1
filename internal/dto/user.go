package dto

// LoginRequest is the JSON body for POST /login.
type LoginRequest struct {
	Email    string `json:"email" example:"ann@example.com"`
	Password string `json:"password" example:"s3cret"`
}

// RegisterRequest is the JSON body for POST /register.
type RegisterRequest struct {
	Name     string `json:"name" example:"Ann"`
	Email    string `json:"email" example:"ann@example.com"`
	Password string `json:"password" example:"s3cret"`
}

// UserResponse is the public view of a user. The password hash never leaves the server.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
	Token   string       `json:"token,omitempty"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
