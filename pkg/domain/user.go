package domain

// UserProfile is the current user as reported by GET /users/me.
// Username holds the first (display) name.
type UserProfile struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Lastname string `json:"lastname"`
}

// DisplayName returns "First Last", falling back to the email.
func (u *UserProfile) DisplayName() string {
	if u == nil {
		return ""
	}
	switch {
	case u.Username != "" && u.Lastname != "":
		return u.Username + " " + u.Lastname
	case u.Username != "":
		return u.Username
	case u.Lastname != "":
		return u.Lastname
	}
	return u.Email
}

// Credentials is the login form input.
type Credentials struct {
	Email    string
	Password string
	Remember bool
}

// Token is the login acknowledgement. The backend may also (or only) set a
// session cookie, in which case AccessToken is empty.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Registration is the payload for POST /auth/register.
type Registration struct {
	Username string `json:"username"`
	Lastname string `json:"lastname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordChange is the payload for PUT /users/change-password.
type PasswordChange struct {
	CurrentPassword    string `json:"current_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}
