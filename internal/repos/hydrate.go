package repos

import (
	"agora/internal/models"

	"gorm.io/gorm"
)

// Every aggregate leaves the repository with its relation collections
// loaded, so callers can use it after the transaction that read it is gone.

func orderedByID(db *gorm.DB) *gorm.DB {
	return db.Order(byID)
}

func hydrateTag(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Users", orderedByID).
		Preload("Communities", orderedByID).
		Preload("LikedPosts", orderedByID).
		Preload("LikedBy", orderedByID)
}

func hydrateCommunity(db *gorm.DB) *gorm.DB {
	return db.
		Preload("State").
		Preload("Members", orderedByID)
}

func hydrateUser(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Profile").
		Preload("Roles", orderedByID).
		Preload("Likes", orderedByID).
		Preload("SentMessages", orderedByID).
		Preload("ReceivedMessages", orderedByID)
}

func hydratePost(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Parent").
		Preload("Parent.Children", orderedByID).
		Preload("Children", orderedByID).
		Preload("LikedTags", orderedByID).
		Preload("Community.State").
		Preload("User")
}

func hydrateProfile(db *gorm.DB) *gorm.DB {
	return db.Preload("User")
}

func hydrateMessage(db *gorm.DB) *gorm.DB {
	return db.Preload("Sender").Preload("Receiver")
}

func hydrateContact(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("Contact")
}

// linkThread points preloaded children back at their parent and puts the
// post itself in its parent's children in place of the preloaded copy.
func linkThread(posts ...*models.Post) {
	for _, p := range posts {
		if p == nil {
			continue
		}
		for _, c := range p.Children {
			c.Parent = p
		}
		if p.Parent == nil {
			continue
		}
		found := false
		for i, sibling := range p.Parent.Children {
			if sibling.ID == p.ID {
				p.Parent.Children[i] = p
				found = true
				continue
			}
			sibling.Parent = p.Parent
		}
		if !found {
			p.Parent.Children = append(p.Parent.Children, p)
		}
	}
}
