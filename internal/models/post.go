package models

import (
	"time"
	"unicode/utf8"

	"agora/internal/apperr"

	"gorm.io/gorm"
)

const MaxTextLength = 1024

// Post is a node in a reply tree. Every post belongs to one author and one
// community; replies point at their parent through ParentPostID.
type Post struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ParentPostID *uint      `gorm:"index" json:"parent_post_id"`
	Parent       *Post      `gorm:"foreignKey:ParentPostID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	Children     []*Post    `gorm:"foreignKey:ParentPostID" json:"children,omitempty"`
	CommunityID  uint       `gorm:"not null;index" json:"community_id"`
	Community    *Community `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	User         *User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"author,omitempty"`
	Text         string     `gorm:"size:1024;not null" json:"text"`
	Created      time.Time  `gorm:"not null;index" json:"created"`
	LikedTags    []*Tag     `gorm:"many2many:tag_post_like;" json:"liked_tags"`
}

func (p *Post) key() uint { return p.ID }

// NewPost binds every required field up front; parent may be nil.
func NewPost(parent *Post, community *Community, author *User, text string, created time.Time) (*Post, error) {
	if community == nil {
		return nil, apperr.Null("NewPost", "community")
	}
	if author == nil {
		return nil, apperr.Null("NewPost", "author")
	}
	if err := checkText("NewPost", text); err != nil {
		return nil, err
	}
	if created.IsZero() {
		return nil, apperr.Invalid("NewPost", "created timestamp must be set")
	}

	p := &Post{
		Community:   community,
		CommunityID: community.ID,
		User:        author,
		UserID:      author.ID,
		Text:        text,
		Created:     created,
	}
	author.Posts = appendUnique(author.Posts, p)
	if parent != nil {
		if err := p.SetParent(parent); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func checkText(op, text string) error {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return apperr.Invalid(op, "text must not be empty")
	}
	if n > MaxTextLength {
		return apperr.Invalid(op, "text exceeds %d characters", MaxTextLength)
	}
	return nil
}

func (p *Post) SetText(text string) error {
	if err := checkText("Post.SetText", text); err != nil {
		return err
	}
	p.Text = text
	return nil
}

func (p *Post) SetCommunity(community *Community) error {
	if community == nil {
		return apperr.Null("Post.SetCommunity", "community")
	}
	p.Community = community
	p.CommunityID = community.ID
	return nil
}

func (p *Post) SetUser(author *User) error {
	if author == nil {
		return apperr.Null("Post.SetUser", "author")
	}
	if p.User != nil && !same(p.User, author) {
		p.User.Posts = remove(p.User.Posts, p)
	}
	p.User = author
	p.UserID = author.ID
	author.Posts = appendUnique(author.Posts, p)
	return nil
}

func (p *Post) SetCreated(created time.Time) error {
	if created.IsZero() {
		return apperr.Invalid("Post.SetCreated", "created timestamp must be set")
	}
	p.Created = created
	return nil
}

// SetParent re-links the post under parent, or detaches it when parent is nil.
// The post leaves its previous parent's children before joining the new one.
// A post can not become its own ancestor.
func (p *Post) SetParent(parent *Post) error {
	if parent != nil {
		for a := parent; a != nil; a = a.Parent {
			if same(a, p) {
				return apperr.Invalid("Post.SetParent", "post %d can not reply to itself or its own reply", p.ID)
			}
		}
	}

	if p.Parent != nil && !same(p.Parent, parent) {
		p.Parent.Children = remove(p.Parent.Children, p)
	}

	p.Parent = parent
	if parent == nil {
		p.ParentPostID = nil
		return nil
	}
	if parent.ID != 0 {
		id := parent.ID
		p.ParentPostID = &id
	} else {
		// filled in by syncKeys once the parent is saved
		p.ParentPostID = nil
	}
	parent.Children = appendUnique(parent.Children, p)
	return nil
}

// AddChildPost makes child a reply to p. Adding an existing child is a no-op.
func (p *Post) AddChildPost(child *Post) error {
	if child == nil {
		return apperr.Null("Post.AddChildPost", "child")
	}
	if contains(p.Children, child) && child.Parent != nil && same(child.Parent, p) {
		return nil
	}
	return child.SetParent(p)
}

// AddLike places the like-marker tag on the post, on both sides.
func (p *Post) AddLike(tag *Tag) error {
	if tag == nil {
		return apperr.Null("Post.AddLike", "tag")
	}
	return tag.AddLikedPost(p)
}

func (p *Post) HasChild(child *Post) bool {
	return contains(p.Children, child)
}

func (p *Post) IsLikedWith(tag *Tag) bool {
	return contains(p.LikedTags, tag)
}

// IsRoot reports whether the post starts a thread.
func (p *Post) IsRoot() bool {
	return p.Parent == nil && p.ParentPostID == nil
}

// Detach unlinks a deleted post from its parent, its author and its likes.
func (p *Post) Detach() {
	if p.Parent != nil {
		p.Parent.Children = remove(p.Parent.Children, p)
	}
	if p.User != nil {
		p.User.Posts = remove(p.User.Posts, p)
	}
	for _, t := range p.LikedTags {
		if t != nil {
			t.LikedPosts = remove(t.LikedPosts, p)
		}
	}
	p.LikedTags = nil
}

// syncKeys copies identities from linked entities into the key columns.
func (p *Post) syncKeys() {
	if p.Parent != nil && p.Parent.ID != 0 {
		id := p.Parent.ID
		p.ParentPostID = &id
	}
	if p.Community != nil && p.Community.ID != 0 {
		p.CommunityID = p.Community.ID
	}
	if p.User != nil && p.User.ID != 0 {
		p.UserID = p.User.ID
	}
}

// Validate checks every stored field.
func (p *Post) Validate() error {
	if err := checkText("Post.Validate", p.Text); err != nil {
		return err
	}
	if p.Created.IsZero() {
		return apperr.Invalid("Post.Validate", "created timestamp must be set")
	}
	if p.CommunityID == 0 {
		return apperr.Invalid("Post.Validate", "post must belong to a saved community")
	}
	if p.UserID == 0 {
		return apperr.Invalid("Post.Validate", "post must have a saved author")
	}
	if p.ParentPostID != nil && p.ID != 0 && *p.ParentPostID == p.ID {
		return apperr.Invalid("Post.Validate", "post %d can not reply to itself", p.ID)
	}
	return nil
}

// BeforeSave keeps keys in step with linked entities and rejects invalid rows
// on every write, not only at construction.
func (p *Post) BeforeSave(tx *gorm.DB) error {
	p.syncKeys()
	return p.Validate()
}
