package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"agora/internal/apperr"

	"gorm.io/gorm"
)

const (
	MaxCommunityNameLength        = 64
	MaxCommunityDescriptionLength = 1024
)

// Community 社区：名称唯一，state 指向当前生命周期标签 (PENDING/APPROVED/REFUSED)
type Community struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:64;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"size:1024" json:"description"`
	StateTagID  uint      `gorm:"not null;index" json:"state_tag_id"`
	State       *Tag      `gorm:"foreignKey:StateTagID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"state"`
	Members     []*User   `gorm:"many2many:community_member;" json:"members"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Community) key() uint { return c.ID }

// NewCommunity builds an unsaved community in the given state.
func NewCommunity(name, description string, state *Tag) (*Community, error) {
	c := &Community{}
	if err := c.SetName(name); err != nil {
		return nil, err
	}
	if err := c.SetDescription(description); err != nil {
		return nil, err
	}
	if err := c.SetState(state); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Community) SetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperr.Invalid("Community.SetName", "name must not be blank")
	}
	if utf8.RuneCountInString(name) > MaxCommunityNameLength {
		return apperr.Invalid("Community.SetName", "name exceeds %d characters", MaxCommunityNameLength)
	}
	c.Name = name
	return nil
}

func (c *Community) SetDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxCommunityDescriptionLength {
		return apperr.Invalid("Community.SetDescription", "description exceeds %d characters", MaxCommunityDescriptionLength)
	}
	c.Description = description
	return nil
}

// SetState moves the community to state, keeping the old and new tag's
// community relation in step.
func (c *Community) SetState(state *Tag) error {
	if state == nil {
		return apperr.Null("Community.SetState", "state")
	}
	if c.State != nil && !same(c.State, state) {
		c.State.Communities = remove(c.State.Communities, c)
	}
	c.State = state
	c.StateTagID = state.ID
	state.Communities = appendUnique(state.Communities, c)
	return nil
}

// InState reports whether the current state carries the canonical name of w.
func (c *Community) InState(w WellKnown) bool {
	return c.State.Is(w)
}

func (c *Community) AddMember(user *User) error {
	if user == nil {
		return apperr.Null("Community.AddMember", "user")
	}
	c.Members = appendUnique(c.Members, user)
	user.Communities = appendUnique(user.Communities, c)
	return nil
}

func (c *Community) RemoveMember(user *User) error {
	if user == nil {
		return apperr.Null("Community.RemoveMember", "user")
	}
	c.Members = remove(c.Members, user)
	user.Communities = remove(user.Communities, c)
	return nil
}

func (c *Community) HasMember(user *User) bool {
	return contains(c.Members, user)
}

// Detach drops the community from its state tag and its members after a delete.
func (c *Community) Detach() {
	if c.State != nil {
		c.State.Communities = remove(c.State.Communities, c)
	}
	for _, m := range c.Members {
		if m != nil {
			m.Communities = remove(m.Communities, c)
		}
	}
	c.Members = nil
}

// Validate checks every stored field.
func (c *Community) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return apperr.Invalid("Community.Validate", "name must not be blank")
	}
	if utf8.RuneCountInString(c.Name) > MaxCommunityNameLength {
		return apperr.Invalid("Community.Validate", "name exceeds %d characters", MaxCommunityNameLength)
	}
	if utf8.RuneCountInString(c.Description) > MaxCommunityDescriptionLength {
		return apperr.Invalid("Community.Validate", "description exceeds %d characters", MaxCommunityDescriptionLength)
	}
	if c.StateTagID == 0 {
		return apperr.Invalid("Community.Validate", "state must reference a saved tag")
	}
	return nil
}

// BeforeSave syncs the state key and rejects invalid rows on every write.
func (c *Community) BeforeSave(tx *gorm.DB) error {
	if c.State != nil && c.State.ID != 0 {
		c.StateTagID = c.State.ID
	}
	return c.Validate()
}
