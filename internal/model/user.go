package model

type UserRole string

const (
	UserRoleProvider UserRole = "provider"
	UserRoleCustomer UserRole = "customer"
)

type User struct {
	Base
	Email               string   `db:"email" json:"email"`
	Name                string   `db:"name" json:"name"`
	PasswordHash        string   `db:"password_hash" json:"-"`
	Role                UserRole `db:"role" json:"role"`
	Phone               *string  `db:"phone" json:"phone,omitempty"`
	OnboardingCompleted bool     `db:"onboarding_completed" json:"onboarding_completed"`
}

func (u *User) IsProvider() bool {
	return u.Role == UserRoleProvider
}
