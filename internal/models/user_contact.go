package models

import (
	"time"

	"agora/internal/apperr"

	"gorm.io/gorm"
)

// UserContact 用户联系人，(user_id, contact_id) 唯一
type UserContact struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_contact" json:"user_id"`
	User      *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ContactID uint      `gorm:"not null;index;uniqueIndex:idx_user_contact" json:"contact_id"`
	Contact   *User     `gorm:"foreignKey:ContactID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"contact,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *UserContact) key() uint { return c.ID }

func NewUserContact(user, contact *User) (*UserContact, error) {
	if user == nil {
		return nil, apperr.Null("NewUserContact", "user")
	}
	if contact == nil {
		return nil, apperr.Null("NewUserContact", "contact")
	}
	if same(user, contact) {
		return nil, apperr.Invalid("NewUserContact", "user %d can not add themselves as a contact", user.ID)
	}
	return &UserContact{User: user, UserID: user.ID, Contact: contact, ContactID: contact.ID}, nil
}

func (c *UserContact) Validate() error {
	if c.UserID == 0 || c.ContactID == 0 {
		return apperr.Invalid("UserContact.Validate", "user and contact must be saved users")
	}
	if c.UserID == c.ContactID {
		return apperr.Invalid("UserContact.Validate", "user %d can not add themselves as a contact", c.UserID)
	}
	return nil
}

func (c *UserContact) BeforeSave(tx *gorm.DB) error {
	if c.User != nil && c.User.ID != 0 {
		c.UserID = c.User.ID
	}
	if c.Contact != nil && c.Contact.ID != 0 {
		c.ContactID = c.Contact.ID
	}
	return c.Validate()
}
