package domain

import "time"

// Identity is the authenticated user as returned by the login and profile endpoints.
type Identity struct {
	ID        string    `json:"_id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullname,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	County    string    `json:"county,omitempty"`
	Role      Role      `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// DisplayName prefers the full name, then the username, then the email.
func (i Identity) DisplayName() string {
	switch {
	case i.FullName != "":
		return i.FullName
	case i.Username != "":
		return i.Username
	default:
		return i.Email
	}
}
