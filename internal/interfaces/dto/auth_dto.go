package dto

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Username string `json:"username" binding:"required"`
}

type RegisterResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse hands the client the one-time code and the callback URL
// that trades it for a session cookie.
type LoginResponse struct {
	Code        string `json:"code"`
	CallbackURL string `json:"callback_url"`
}

type LogoutResponse struct {
	Success bool `json:"success"`
}
