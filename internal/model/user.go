package model

import "gorm.io/gorm"

// User is an account in the identity directory. Password and RefreshToken are
// credentials and never leave the repository layer: every outward shape goes
// through Profile or Sender.
type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Password     string `json:"-"`
	RefreshToken string `json:"-"`
	Avatar       string `json:"avatar"`
}

// Profile returns the public projection of the user.
func (u *User) Profile() Profile {
	return Profile{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Avatar:   u.Avatar,
	}
}
