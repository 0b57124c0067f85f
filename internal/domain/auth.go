package domain

// Identity is the signed-in user of a session.
type Identity struct {
	Token  string `json:"token"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	UserID string `json:"user_id"`
}

// LoginResult is a successful login.
type LoginResult struct {
	Message  string
	Identity Identity
}
