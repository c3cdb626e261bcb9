package handlers

import (
	"time"

	"agora/internal/models"
	"agora/internal/utils"
)

type UserView struct {
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

func NewUserView(u *models.User) *UserView {
	if u == nil {
		return nil
	}
	v := &UserView{ID: u.ID, Username: u.Username, Roles: []string{}}
	for _, r := range u.Roles {
		v.Roles = append(v.Roles, r.Name)
	}
	return v
}

type CommunityView struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	State       string `json:"state"`
	Members     int    `json:"members"`
}

func NewCommunityView(c *models.Community) CommunityView {
	v := CommunityView{ID: c.ID, Name: c.Name, Description: c.Description, Members: len(c.Members)}
	if c.State != nil {
		v.State = c.State.Name
	}
	return v
}

func NewCommunityViews(cs []*models.Community) []CommunityView {
	views := make([]CommunityView, 0, len(cs))
	for _, c := range cs {
		views = append(views, NewCommunityView(c))
	}
	return views
}

// PostView 帖子读模型，html 为渲染并净化后的正文
type PostView struct {
	ID          uint       `json:"id"`
	ParentID    *uint      `json:"parent_id"`
	CommunityID uint       `json:"community_id"`
	AuthorID    uint       `json:"author_id"`
	Author      string     `json:"author,omitempty"`
	Text        string     `json:"text"`
	HTML        string     `json:"html"`
	Created     time.Time  `json:"created"`
	Liked       bool       `json:"liked"`
	Replies     []PostView `json:"replies,omitempty"`
}

func NewPostView(p *models.Post) PostView {
	v := PostView{
		ID:          p.ID,
		ParentID:    p.ParentPostID,
		CommunityID: p.CommunityID,
		AuthorID:    p.UserID,
		Text:        p.Text,
		HTML:        utils.RenderMarkdown(p.Text),
		Created:     p.Created,
		Liked:       len(p.LikedTags) > 0,
	}
	if p.User != nil {
		v.Author = p.User.Username
	}
	for _, child := range p.Children {
		v.Replies = append(v.Replies, NewPostView(child))
	}
	return v
}

func NewPostViews(posts []*models.Post) []PostView {
	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, NewPostView(p))
	}
	return views
}

type MessageView struct {
	ID         uint      `json:"id"`
	SenderID   uint      `json:"sender_id"`
	ReceiverID uint      `json:"receiver_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewMessageViews(ms []*models.PrivateMessage) []MessageView {
	views := make([]MessageView, 0, len(ms))
	for _, m := range ms {
		views = append(views, MessageView{
			ID:         m.ID,
			SenderID:   m.SenderID,
			ReceiverID: m.ReceiverID,
			Text:       m.Text,
			CreatedAt:  m.CreatedAt,
		})
	}
	return views
}
