package models

import (
	"net/mail"
	"strings"

	"agora/internal/apperr"

	"gorm.io/gorm"
)

// UserProfile 用户资料，与 User 一对一，可选
type UserProfile struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	UserID       uint   `gorm:"not null;uniqueIndex" json:"user_id"`
	User         *User  `json:"-"`
	Firstname    string `gorm:"size:64;not null" json:"firstname"`
	Lastname     string `gorm:"size:64;not null" json:"lastname"`
	Address      string `gorm:"size:128" json:"address"`
	Postcode     string `gorm:"size:16" json:"postcode"`
	City         string `gorm:"size:64" json:"city"`
	Country      string `gorm:"size:64" json:"country"`
	Phone        string `gorm:"size:32" json:"phone"`
	Organization string `gorm:"size:128" json:"organization"`
	Email        string `gorm:"size:128" json:"email"`
	PicturePath  string `gorm:"size:255" json:"picture_path"`
	Description  string `gorm:"size:1024" json:"description"`
}

func (p *UserProfile) key() uint { return p.ID }

// AttachTo binds the profile to user on both sides.
func (p *UserProfile) AttachTo(user *User) error {
	if user == nil {
		return apperr.Null("UserProfile.AttachTo", "user")
	}
	if user.Profile != nil && user.Profile != p && user.Profile.User == user {
		user.Profile.User = nil
	}
	p.User = user
	p.UserID = user.ID
	user.Profile = p
	return nil
}

func (p *UserProfile) Validate() error {
	if strings.TrimSpace(p.Firstname) == "" || strings.TrimSpace(p.Lastname) == "" {
		return apperr.Invalid("UserProfile.Validate", "firstname and lastname are required")
	}
	if p.Email != "" {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			return apperr.Invalid("UserProfile.Validate", "email %q is not valid", p.Email)
		}
	}
	if p.UserID == 0 {
		return apperr.Invalid("UserProfile.Validate", "profile must belong to a saved user")
	}
	return nil
}

func (p *UserProfile) BeforeSave(tx *gorm.DB) error {
	if p.User != nil && p.User.ID != 0 {
		p.UserID = p.User.ID
	}
	return p.Validate()
}
