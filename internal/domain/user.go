package domain

import "time"

type Role string

const (
	RoleCustomer Role = "Customer"
	RoleManager  Role = "Manager"
	RoleAdmin    Role = "Admin"
)

var Roles = []Role{RoleCustomer, RoleManager, RoleAdmin}

func (r Role) Valid() bool {
	for _, v := range Roles {
		if r == v {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// User is a row of the admin user list.
type User struct {
	ID        string    `json:"_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullname,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Registration is the signup payload.
type Registration struct {
	Username        string `json:"username"`
	FullName        string `json:"fullname"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	County          string `json:"county"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
}
