package authsdk

import "time"

// RegisterRequest is the body for POST /v1/auth/register.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the body for POST /v1/auth/password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// UserProfile is the public view of a user record. The password hash never
// leaves the service.
type UserProfile struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AuthResponse is returned from register and login: a signed identity token
// plus the profile it was issued for.
type AuthResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    UserProfile `json:"user"`
}

// MessageResponse carries a bare success message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the wire shape of an API error. Client code should use
// the APIError type from errors.go instead.
type ErrorResponse struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}
