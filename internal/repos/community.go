package repos

import (
	"context"

	"agora/internal/apperr"
	"agora/internal/logger"
	"agora/internal/models"

	"gorm.io/gorm"
)

type CommunityRepo interface {
	Insert(ctx context.Context, tx *gorm.DB, c *models.Community) (*models.Community, error)
	Update(ctx context.Context, tx *gorm.DB, c *models.Community) (*models.Community, error)
	Delete(ctx context.Context, tx *gorm.DB, c *models.Community) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Community, error)
	FindAll(ctx context.Context, tx *gorm.DB) ([]*models.Community, error)
	FindByName(ctx context.Context, tx *gorm.DB, name string) (*models.Community, error)
	FindByState(ctx context.Context, tx *gorm.DB, code int) ([]*models.Community, error)
	FindPending(ctx context.Context, tx *gorm.DB) ([]*models.Community, error)
	FindApproved(ctx context.Context, tx *gorm.DB) ([]*models.Community, error)

	// CreateCommunity inserts a new community in the PENDING state.
	CreateCommunity(ctx context.Context, tx *gorm.DB, name, description string) (*models.Community, error)
	SetState(ctx context.Context, tx *gorm.DB, c *models.Community, code int) error
	AddMember(ctx context.Context, tx *gorm.DB, c *models.Community, user *models.User) error
	RemoveMember(ctx context.Context, tx *gorm.DB, c *models.Community, user *models.User) error
}

type communityRepo struct {
	store[models.Community]
	tags TagRepo
}

func NewCommunityRepo(db *gorm.DB, baseLog *logger.Logger, tags TagRepo) CommunityRepo {
	return &communityRepo{
		store: newStore[models.Community](db, baseLog, "CommunityRepo", hydrateCommunity),
		tags:  tags,
	}
}

func (r *communityRepo) Insert(ctx context.Context, tx *gorm.DB, c *models.Community) (*models.Community, error) {
	if c == nil {
		return nil, apperr.Null(r.op("Insert"), "community")
	}
	err := r.atomic(ctx, tx, func(tx *gorm.DB) error {
		if err := r.insert(tx, "Insert", c); err != nil {
			return err
		}
		if err := tagCommunity.link(tx, c.StateTagID, c.ID); err != nil {
			return translate(r.op("Insert"), err)
		}
		for _, m := range c.Members {
			if m == nil || m.ID == 0 {
				continue
			}
			if err := communityMember.link(tx, c.ID, m.ID); err != nil {
				return translate(r.op("Insert"), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.log.Debug("Community inserted", "id", c.ID, "name", c.Name)
	return c, nil
}

func (r *communityRepo) Update(ctx context.Context, tx *gorm.DB, c *models.Community) (*models.Community, error) {
	if c == nil {
		return nil, apperr.Null(r.op("Update"), "community")
	}
	var merged *models.Community
	err := r.atomic(ctx, tx, func(tx *gorm.DB) error {
		if err := r.save(tx, "Update", c.ID, c); err != nil {
			return err
		}
		if err := r.syncState(tx, c.ID, c.StateTagID); err != nil {
			return translate(r.op("Update"), err)
		}
		var err error
		merged, err = r.findByID(tx, "Update", c.ID)
		return err
	})
	return merged, err
}

// syncState keeps tag_community holding exactly the current state.
func (r *communityRepo) syncState(tx *gorm.DB, communityID, stateID uint) error {
	if err := tx.Exec("DELETE FROM tag_community WHERE community_id = ? AND tag_id <> ?", communityID, stateID).Error; err != nil {
		return err
	}
	return tagCommunity.link(tx, stateID, communityID)
}

// Delete refuses while posts still belong to the community.
func (r *communityRepo) Delete(ctx context.Context, tx *gorm.DB, c *models.Community) error {
	if c == nil {
		return apperr.Null(r.op("Delete"), "community")
	}
	err := r.atomic(ctx, tx, func(tx *gorm.DB) error {
		var posts int64
		if err := tx.Model(&models.Post{}).Where("community_id = ?", c.ID).Count(&posts).Error; err != nil {
			return translate(r.op("Delete"), err)
		}
		if posts > 0 {
			return inUse(r.op("Delete"), "community %d still has %d posts", c.ID, posts)
		}
		if err := tagCommunity.unlinkRight(tx, c.ID); err != nil {
			return translate(r.op("Delete"), err)
		}
		if err := communityMember.unlinkLeft(tx, c.ID); err != nil {
			return translate(r.op("Delete"), err)
		}
		return r.remove(tx, "Delete", c.ID)
	})
	if err != nil {
		return err
	}
	c.Detach()
	return nil
}

func (r *communityRepo) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Community, error) {
	return r.findByID(r.conn(ctx, tx), "FindByID", id)
}

func (r *communityRepo) FindAll(ctx context.Context, tx *gorm.DB) ([]*models.Community, error) {
	return r.findMany(r.conn(ctx, tx), "FindAll", nil)
}

func (r *communityRepo) FindByName(ctx context.Context, tx *gorm.DB, name string) (*models.Community, error) {
	return r.findOne(r.conn(ctx, tx), "FindByName", "name = ?", name)
}

// FindByState matches the state tag by its canonical name, so the result does
// not depend on the order tags were created in.
func (r *communityRepo) FindByState(ctx context.Context, tx *gorm.DB, code int) ([]*models.Community, error) {
	w, err := models.ParseWellKnown(code)
	if err != nil {
		return nil, err
	}
	db := r.conn(ctx, tx).Joins("JOIN tags ON tags.id = communities.state_tag_id")
	return r.findMany(db, "FindByState", "tags.name = ?", w.String())
}

func (r *communityRepo) FindPending(ctx context.Context, tx *gorm.DB) ([]*models.Community, error) {
	return r.FindByState(ctx, tx, int(models.TagPending))
}

func (r *communityRepo) FindApproved(ctx context.Context, tx *gorm.DB) ([]*models.Community, error) {
	return r.FindByState(ctx, tx, int(models.TagApproved))
}

func (r *communityRepo) CreateCommunity(ctx context.Context, tx *gorm.DB, name, description string) (*models.Community, error) {
	var created *models.Community
	err := r.atomic(ctx, tx, func(tx *gorm.DB) error {
		pending, err := r.tags.CreateWellKnown(ctx, tx, int(models.TagPending))
		if err != nil {
			return err
		}
		c, err := models.NewCommunity(name, description, pending)
		if err != nil {
			return err
		}
		taken, err := r.FindByName(ctx, tx, c.Name)
		if err != nil {
			return err
		}
		if taken != nil {
			return inUse(r.op("CreateCommunity"), "community name %q is taken", c.Name)
		}
		created, err = r.Insert(ctx, tx, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *communityRepo) SetState(ctx context.Context, tx *gorm.DB, c *models.Community, code int) error {
	op := r.op("SetState")
	if c == nil {
		return apperr.Null(op, "community")
	}
	if err := requireSaved(op, "community", c.ID); err != nil {
		return err
	}
	var state *models.Tag
	err := r.atomic(ctx, tx, func(tx *gorm.DB) error {
		var err error
		state, err = r.tags.CreateWellKnown(ctx, tx, code)
		if err != nil {
			return err
		}
		res := tx.Model(&models.Community{}).Where("id = ?", c.ID).UpdateColumn("state_tag_id", state.ID)
		if res.Error != nil {
			return translate(op, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.New(op, apperr.ErrNotFound, nil)
		}
		if err := r.syncState(tx, c.ID, state.ID); err != nil {
			return translate(op, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.log.Info("Community state changed", "id", c.ID, "state", state.Name)
	return c.SetState(state)
}

func (r *communityRepo) AddMember(ctx context.Context, tx *gorm.DB, c *models.Community, user *models.User) error {
	op := r.op("AddMember")
	if c == nil {
		return apperr.Null(op, "community")
	}
	if user == nil {
		return apperr.Null(op, "user")
	}
	if err := requireSaved(op, "community", c.ID); err != nil {
		return err
	}
	if err := requireSaved(op, "user", user.ID); err != nil {
		return err
	}
	if err := communityMember.link(r.conn(ctx, tx), c.ID, user.ID); err != nil {
		return translate(op, err)
	}
	return c.AddMember(user)
}

func (r *communityRepo) RemoveMember(ctx context.Context, tx *gorm.DB, c *models.Community, user *models.User) error {
	op := r.op("RemoveMember")
	if c == nil {
		return apperr.Null(op, "community")
	}
	if user == nil {
		return apperr.Null(op, "user")
	}
	if err := communityMember.unlink(r.conn(ctx, tx), c.ID, user.ID); err != nil {
		return translate(op, err)
	}
	return c.RemoveMember(user)
}
