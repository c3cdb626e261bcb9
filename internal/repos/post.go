package repos

import (
	"context"
	"errors"
	"time"

	"agora/internal/apperr"
	"agora/internal/logger"
	"agora/internal/models"

	"gorm.io/gorm"
)

type PostRepo interface {
	Insert(ctx context.Context, tx *gorm.DB, p *models.Post) (*models.Post, error)
	Update(ctx context.Context, tx *gorm.DB, p *models.Post) (*models.Post, error)
	Delete(ctx context.Context, tx *gorm.DB, p *models.Post) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Post, error)
	FindAll(ctx context.Context, tx *gorm.DB) ([]*models.Post, error)
	FindByCommunity(ctx context.Context, tx *gorm.DB, communityID uint) ([]*models.Post, error)
	FindByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Post, error)
	FindChildren(ctx context.Context, tx *gorm.DB, postID uint) ([]*models.Post, error)
	FindRoots(ctx context.Context, tx *gorm.DB, communityID uint) ([]*models.Post, error)

	// Create validates every field, then persists the post under parent (nil for a thread root).
	Create(ctx context.Context, tx *gorm.DB, parent *models.Post, community *models.Community, author *models.User, text string, created time.Time) (*models.Post, error)
	AddChildPost(ctx context.Context, tx *gorm.DB, parent, child *models.Post) error
	// Reparent moves p under newParent, or makes it a root when newParent is nil.
	Reparent(ctx context.Context, tx *gorm.DB, p, newParent *models.Post) error
	AddLike(ctx context.Context, tx *gorm.DB, p *models.Post, tag *models.Tag) error
	RemoveLike(ctx context.Context, tx *gorm.DB, p *models.Post, tag *models.Tag, user *models.User) error
}

type postRepo struct {
	store[models.Post]
	tags TagRepo
}

func NewPostRepo(db *gorm.DB, baseLog *logger.Logger, tags TagRepo) PostRepo {
	return &postRepo{
		store: newStore[models.Post](db, baseLog, "PostRepo", hydratePost),
		tags:  tags,
	}
}

func (r *postRepo) Insert(ctx context.Context, tx *gorm.DB, p *models.Post) (*models.Post, error) {
	if p == nil {
		return nil, apperr.Null(r.op("Insert"), "post")
	}
	if p.ID != 0 {
		return nil, apperr.Invalid(r.op("Insert"), "post %d is already stored", p.ID)
	}
	err := r.atomic(ctx, tx, func(tx *gorm.DB) error {
		if err := r.insert(tx, "Insert", p); err != nil {
			return err
		}
		for _, t := range p.LikedTags {
			if t == nil || t.ID == 0 {
				continue
			}
			if err := tagPostLike.link(tx, t.ID, p.ID); err != nil {
				return translate(r.op("Insert"), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postRepo) Create(ctx context.Context, tx *gorm.DB, parent *models.Post, community *models.Community, author *models.User, text string, created time.Time) (*models.Post, error) {
	if parent != nil {
		if err := requireSaved(r.op("Create"), "parent post", parent.ID); err != nil {
			return nil, err
		}
	}
	p, err := models.NewPost(parent, community, author, text, created)
	if err != nil {
		return nil, err
	}
	if _, err := r.Insert(ctx, tx, p); err != nil {
		p.Detach()
		return nil, err
	}
	return p, nil
}

func (r *postRepo) Update(ctx context.Context, tx *gorm.DB, p *models.Post) (*models.Post, error) {
	if p == nil {
		return nil, apperr.Null(r.op("Update"), "post")
	}
	var merged *models.Post
	err := r.atomic(ctx, tx, func(tx *gorm.DB) error {
		if p.Parent != nil && p.Parent.ID != 0 {
			id := p.Parent.ID
			p.ParentPostID = &id
		}
		if p.ParentPostID != nil {
			if err := r.checkAncestry(tx, "Update", p.ID, *p.ParentPostID); err != nil {
				return err
			}
		}
		if err := r.save(tx, "Update", p.ID, p); err != nil {
			return err
		}
		var err error
		merged, err = r.findByID(tx, "Update", p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	linkThread(merged)
	return merged, nil
}

// Delete refuses while the post still has replies. Its likes go with it.
func (r *postRepo) Delete(ctx context.Context, tx *gorm.DB, p *models.Post) error {
	if p == nil {
		return apperr.Null(r.op("Delete"), "post")
	}
	err := r.atomic(ctx, tx, func(tx *gorm.DB) error {
		children, err := r.count(tx, "Delete", "parent_post_id = ?", p.ID)
		if err != nil {
			return err
		}
		if children > 0 {
			return inUse(r.op("Delete"), "post %d still has %d replies", p.ID, children)
		}
		if err := tagPostLike.unlinkRight(tx, p.ID); err != nil {
			return translate(r.op("Delete"), err)
		}
		return r.remove(tx, "Delete", p.ID)
	})
	if err != nil {
		return err
	}
	p.Detach()
	return nil
}

func (r *postRepo) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Post, error) {
	p, err := r.findByID(r.conn(ctx, tx), "FindByID", id)
	linkThread(p)
	return p, err
}

func (r *postRepo) FindAll(ctx context.Context, tx *gorm.DB) ([]*models.Post, error) {
	return r.thread(r.findMany(r.conn(ctx, tx), "FindAll", nil))
}

func (r *postRepo) FindByCommunity(ctx context.Context, tx *gorm.DB, communityID uint) ([]*models.Post, error) {
	return r.thread(r.findMany(r.conn(ctx, tx), "FindByCommunity", "community_id = ?", communityID))
}

func (r *postRepo) FindByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Post, error) {
	return r.thread(r.findMany(r.conn(ctx, tx), "FindByUser", "user_id = ?", userID))
}

func (r *postRepo) FindChildren(ctx context.Context, tx *gorm.DB, postID uint) ([]*models.Post, error) {
	return r.thread(r.findMany(r.conn(ctx, tx), "FindChildren", "parent_post_id = ?", postID))
}

func (r *postRepo) FindRoots(ctx context.Context, tx *gorm.DB, communityID uint) ([]*models.Post, error) {
	return r.thread(r.findMany(r.conn(ctx, tx), "FindRoots", "community_id = ? AND parent_post_id IS NULL", communityID))
}

func (r *postRepo) thread(posts []*models.Post, err error) ([]*models.Post, error) {
	if err != nil {
		return nil, err
	}
	linkThread(posts...)
	return posts, nil
}

func (r *postRepo) AddChildPost(ctx context.Context, tx *gorm.DB, parent, child *models.Post) error {
	op := r.op("AddChildPost")
	if parent == nil {
		return apperr.Null(op, "parent")
	}
	if child == nil {
		return apperr.Null(op, "child")
	}
	if err := requireSaved(op, "parent post", parent.ID); err != nil {
		return err
	}
	if err := requireSaved(op, "child post", child.ID); err != nil {
		return err
	}
	if child.ParentPostID != nil && *child.ParentPostID == parent.ID && parent.HasChild(child) {
		return nil
	}

	// the in-memory link can still refuse a stale ancestor chain, so it
	// runs inside the transaction and rolls the column back with it
	return r.atomic(ctx, tx, func(tx *gorm.DB) error {
		if err := r.checkAncestry(tx, "AddChildPost", child.ID, parent.ID); err != nil {
			return err
		}
		if err := r.setParentColumn(tx, op, child.ID, &parent.ID); err != nil {
			return err
		}
		return parent.AddChildPost(child)
	})
}

func (r *postRepo) Reparent(ctx context.Context, tx *gorm.DB, p, newParent *models.Post) error {
	op := r.op("Reparent")
	if p == nil {
		return apperr.Null(op, "post")
	}
	if newParent != nil {
		return r.AddChildPost(ctx, tx, newParent, p)
	}
	if err := requireSaved(op, "post", p.ID); err != nil {
		return err
	}
	if err := r.setParentColumn(r.conn(ctx, tx), op, p.ID, nil); err != nil {
		return err
	}
	return p.SetParent(nil)
}

func (r *postRepo) setParentColumn(tx *gorm.DB, op string, postID uint, parentID *uint) error {
	res := tx.Model(&models.Post{}).Where("id = ?", postID).UpdateColumn("parent_post_id", parentID)
	if res.Error != nil {
		return translate(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(op, apperr.ErrNotFound, nil)
	}
	return nil
}

// checkAncestry walks up from newParentID and fails if it reaches postID.
func (r *postRepo) checkAncestry(tx *gorm.DB, method string, postID, newParentID uint) error {
	op := r.op(method)
	seen := map[uint]bool{}
	for id := newParentID; ; {
		if postID != 0 && id == postID {
			return apperr.Invalid(op, "post %d can not reply to itself or its own reply", postID)
		}
		if seen[id] {
			return apperr.Invalid(op, "reply chain above post %d loops", newParentID)
		}
		seen[id] = true

		var row struct{ ParentPostID *uint }
		err := tx.Model(&models.Post{}).Select("parent_post_id").Where("id = ?", id).Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(op, apperr.ErrNotFound, errors.New("parent post does not exist"))
		}
		if err != nil {
			return translate(op, err)
		}
		if row.ParentPostID == nil {
			return nil
		}
		id = *row.ParentPostID
	}
}

func (r *postRepo) AddLike(ctx context.Context, tx *gorm.DB, p *models.Post, tag *models.Tag) error {
	if p == nil {
		return apperr.Null(r.op("AddLike"), "post")
	}
	if tag == nil {
		return apperr.Null(r.op("AddLike"), "tag")
	}
	return r.tags.AddLikeRelation(ctx, tx, tag, p)
}

func (r *postRepo) RemoveLike(ctx context.Context, tx *gorm.DB, p *models.Post, tag *models.Tag, user *models.User) error {
	return r.tags.RemoveLikeRelation(ctx, tx, tag, user, p)
}
