package api

import (
	"fmt"
	"net/mail"
)

//UserRoles are allowed user roles
var UserRoles = []string{"management", "hotel_staff", "guest"}

//User represents an authenticatable user
type User struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
	MobileNo string `json:"mobile_no,omitempty"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role"`
	City     string `json:"city,omitempty"`
	IsActive bool   `json:"is_active,omitempty"`
	Image    string `json:"image,omitempty"`
}

//Validate validates the given User
func (u *User) Validate() error {
	if e, err := mail.ParseAddress(fmt.Sprintf("User <%s>", u.Email)); err != nil || e.Address != u.Email {
		if err != nil {
			return fmt.Errorf("email (%s) must be a valid email: %v", u.Email, err)
		}
		return fmt.Errorf("email (%s) must be a valid email", u.Email)
	}
	if err := ValidateString("username", u.Username, 255); err != nil {
		return err
	}
	return ValidateChoice("role", u.Role, UserRoles)
}

//LoginResponse is a successful authentication response
type LoginResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

//RoleCounts breaks down users per role
type RoleCounts struct {
	Management int `json:"management"`
	HotelStaff int `json:"hotel_staff"`
	Guest      int `json:"guest"`
}

//DashboardData represents admin dashboard statistics
type DashboardData struct {
	TotalUsers int        `json:"total_users"`
	RoleCounts RoleCounts `json:"role_counts"`
}
