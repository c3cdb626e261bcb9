package models

import (
	"strings"

	"agora/internal/apperr"
)

// WellKnown is the stable code of a built-in tag.
type WellKnown int

const (
	TagPending WellKnown = iota + 1
	TagApproved
	TagRefused
	TagAdmin
	TagPortalAdmin
	TagUser
	TagLike
)

var wellKnownNames = map[WellKnown]string{
	TagPending:     "PENDING",
	TagApproved:    "APPROVED",
	TagRefused:     "REFUSED",
	TagAdmin:       "ADMIN",
	TagPortalAdmin: "PORTALADMIN",
	TagUser:        "USER",
	TagLike:        "LIKE",
}

// WellKnownCodes lists every built-in code in code order.
func WellKnownCodes() []WellKnown {
	return []WellKnown{TagPending, TagApproved, TagRefused, TagAdmin, TagPortalAdmin, TagUser, TagLike}
}

// ParseWellKnown maps a raw code onto the built-in set.
func ParseWellKnown(code int) (WellKnown, error) {
	w := WellKnown(code)
	if _, ok := wellKnownNames[w]; !ok {
		return 0, apperr.Invalid("ParseWellKnown", "unknown well-known tag code %d", code)
	}
	return w, nil
}

func (w WellKnown) String() string {
	if name, ok := wellKnownNames[w]; ok {
		return name
	}
	return "UNKNOWN"
}

// Tag is a named marker used as a role, a lifecycle state or a like-marker.
// It takes part in four separate relations, each with its own join table.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:64;not null;uniqueIndex" json:"name"`

	// tag_user: role held by user
	Users []*User `gorm:"many2many:tag_user;" json:"-"`
	// tag_community: state held by community
	Communities []*Community `gorm:"many2many:tag_community;" json:"-"`
	// tag_post_like: like placed on a post
	LikedPosts []*Post `gorm:"many2many:tag_post_like;" json:"-"`
	// tag_user_like: user who placed a like
	LikedBy []*User `gorm:"many2many:tag_user_like;" json:"-"`
}

func (t *Tag) key() uint { return t.ID }

// NewTag builds an unsaved tag.
func NewTag(name string) (*Tag, error) {
	t := &Tag{}
	if err := t.SetName(name); err != nil {
		return nil, err
	}
	return t, nil
}

// NewWellKnownTag builds the unsaved canonical tag for code.
func NewWellKnownTag(code int) (*Tag, error) {
	w, err := ParseWellKnown(code)
	if err != nil {
		return nil, err
	}
	return &Tag{Name: w.String()}, nil
}

func (t *Tag) SetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperr.Invalid("Tag.SetName", "name must not be blank")
	}
	if len(name) > 64 {
		return apperr.Invalid("Tag.SetName", "name exceeds 64 characters")
	}
	t.Name = name
	return nil
}

// Is reports whether the tag carries the canonical name of w.
func (t *Tag) Is(w WellKnown) bool {
	return t != nil && t.Name == w.String()
}

// AddLikedPost links the tag and post on relation tag_post_like. Idempotent.
func (t *Tag) AddLikedPost(post *Post) error {
	if post == nil {
		return apperr.Null("Tag.AddLikedPost", "post")
	}
	t.LikedPosts = appendUnique(t.LikedPosts, post)
	post.LikedTags = appendUnique(post.LikedTags, t)
	return nil
}

// AddLiker links the tag and user on relation tag_user_like, on both sides.
func (t *Tag) AddLiker(user *User) error {
	if user == nil {
		return apperr.Null("Tag.AddLiker", "user")
	}
	t.LikedBy = appendUnique(t.LikedBy, user)
	user.Likes = appendUnique(user.Likes, t)
	return nil
}

// RemoveLike detaches the tag from the user's likes and the post's likes,
// along with the tag's own cross-references. Nothing changes when either
// endpoint is nil.
func (t *Tag) RemoveLike(user *User, post *Post) error {
	if user == nil {
		return apperr.Null("Tag.RemoveLike", "user")
	}
	if post == nil {
		return apperr.Null("Tag.RemoveLike", "post")
	}
	t.LikedBy = remove(t.LikedBy, user)
	t.LikedPosts = remove(t.LikedPosts, post)
	user.Likes = remove(user.Likes, t)
	post.LikedTags = remove(post.LikedTags, t)
	return nil
}

// AddUser grants the tag to user as a role (relation tag_user).
func (t *Tag) AddUser(user *User) error {
	if user == nil {
		return apperr.Null("Tag.AddUser", "user")
	}
	t.Users = appendUnique(t.Users, user)
	user.Roles = appendUnique(user.Roles, t)
	return nil
}

// RemoveUser revokes the role from user.
func (t *Tag) RemoveUser(user *User) error {
	if user == nil {
		return apperr.Null("Tag.RemoveUser", "user")
	}
	t.Users = remove(t.Users, user)
	user.Roles = remove(user.Roles, t)
	return nil
}

// HasLikedPost reports whether post is on this tag's like relation.
func (t *Tag) HasLikedPost(post *Post) bool {
	return contains(t.LikedPosts, post)
}

// HasLiker reports whether user is on this tag's liked-by relation.
func (t *Tag) HasLiker(user *User) bool {
	return contains(t.LikedBy, user)
}
