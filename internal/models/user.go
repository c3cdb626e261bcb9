package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"agora/internal/apperr"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const MaxUsernameLength = 64

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Password  string    `gorm:"not null" json:"-"` // bcrypt hash
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Profile *UserProfile `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"profile,omitempty"`
	Roles   []*Tag       `gorm:"many2many:tag_user;" json:"roles"`
	Likes   []*Tag       `gorm:"many2many:tag_user_like;" json:"likes"`

	Posts            []*Post           `gorm:"foreignKey:UserID" json:"-"`
	SentMessages     []*PrivateMessage `gorm:"foreignKey:SenderID" json:"-"`
	ReceivedMessages []*PrivateMessage `gorm:"foreignKey:ReceiverID" json:"-"`
	Communities      []*Community      `gorm:"many2many:community_member;" json:"-"`
}

func (u *User) key() uint { return u.ID }

// NewUser builds an unsaved user and hashes the plain password.
func NewUser(username, password string) (*User, error) {
	u := &User{}
	if err := u.SetUsername(username); err != nil {
		return nil, err
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) SetUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return apperr.Invalid("User.SetUsername", "username must not be blank")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return apperr.Invalid("User.SetUsername", "username exceeds %d characters", MaxUsernameLength)
	}
	u.Username = username
	return nil
}

// SetPassword stores the bcrypt hash of plain.
func (u *User) SetPassword(plain string) error {
	if plain == "" {
		return apperr.Invalid("User.SetPassword", "password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Invalid("User.SetPassword", "%v", err)
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword compares plain against the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

// HasRole reports whether the user holds the built-in role w.
func (u *User) HasRole(w WellKnown) bool {
	for _, r := range u.Roles {
		if r.Is(w) {
			return true
		}
	}
	return false
}

func (u *User) HasLike(tag *Tag) bool {
	return contains(u.Likes, tag)
}

func (u *User) addSentMessage(m *PrivateMessage) {
	u.SentMessages = appendUnique(u.SentMessages, m)
}

func (u *User) addReceivedMessage(m *PrivateMessage) {
	u.ReceivedMessages = appendUnique(u.ReceivedMessages, m)
}

func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return apperr.Invalid("User.Validate", "username must not be blank")
	}
	if utf8.RuneCountInString(u.Username) > MaxUsernameLength {
		return apperr.Invalid("User.Validate", "username exceeds %d characters", MaxUsernameLength)
	}
	if u.Password == "" {
		return apperr.Invalid("User.Validate", "password must not be empty")
	}
	return nil
}

func (u *User) BeforeSave(tx *gorm.DB) error {
	return u.Validate()
}
