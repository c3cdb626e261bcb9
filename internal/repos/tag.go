package repos

import (
	"context"
	"errors"

	"agora/internal/apperr"
	"agora/internal/logger"
	"agora/internal/models"

	"gorm.io/gorm"
)

type TagRepo interface {
	Insert(ctx context.Context, tx *gorm.DB, tag *models.Tag) (*models.Tag, error)
	Update(ctx context.Context, tx *gorm.DB, tag *models.Tag) (*models.Tag, error)
	Delete(ctx context.Context, tx *gorm.DB, tag *models.Tag) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Tag, error)
	FindAll(ctx context.Context, tx *gorm.DB) ([]*models.Tag, error)
	FindByName(ctx context.Context, tx *gorm.DB, name string) (*models.Tag, error)

	// CreateWellKnown returns the canonical tag for code, creating it only
	// when no tag with that name exists yet.
	CreateWellKnown(ctx context.Context, tx *gorm.DB, code int) (*models.Tag, error)

	FindUsersByTag(ctx context.Context, tx *gorm.DB, tagID uint) ([]*models.User, error)
	FindCommunitiesByTag(ctx context.Context, tx *gorm.DB, tagID uint) ([]*models.Community, error)
	FindLikedPostsByTag(ctx context.Context, tx *gorm.DB, tagID uint) ([]*models.Post, error)
	FindLikersByTag(ctx context.Context, tx *gorm.DB, tagID uint) ([]*models.User, error)

	AddLikeRelation(ctx context.Context, tx *gorm.DB, tag *models.Tag, post *models.Post) error
	AddLiker(ctx context.Context, tx *gorm.DB, tag *models.Tag, user *models.User) error
	RemoveLikeRelation(ctx context.Context, tx *gorm.DB, tag *models.Tag, user *models.User, post *models.Post) error
	AssignRole(ctx context.Context, tx *gorm.DB, user *models.User, tag *models.Tag) error
	RevokeRole(ctx context.Context, tx *gorm.DB, user *models.User, tag *models.Tag) error
}

type tagRepo struct {
	store[models.Tag]
}

func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) TagRepo {
	return &tagRepo{store: newStore[models.Tag](db, baseLog, "TagRepo", hydrateTag)}
}

func (r *tagRepo) Insert(ctx context.Context, tx *gorm.DB, tag *models.Tag) (*models.Tag, error) {
	if tag == nil {
		return nil, apperr.Null(r.op("Insert"), "tag")
	}
	if err := tag.SetName(tag.Name); err != nil {
		return nil, err
	}
	if err := r.insert(r.conn(ctx, tx), "Insert", tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (r *tagRepo) Update(ctx context.Context, tx *gorm.DB, tag *models.Tag) (*models.Tag, error) {
	if tag == nil {
		return nil, apperr.Null(r.op("Update"), "tag")
	}
	if err := tag.SetName(tag.Name); err != nil {
		return nil, err
	}
	db := r.conn(ctx, tx)
	if err := r.save(db, "Update", tag.ID, tag); err != nil {
		return nil, err
	}
	return r.findByID(db, "Update", tag.ID)
}

// Delete refuses while any relation or community state still references the tag.
func (r *tagRepo) Delete(ctx context.Context, tx *gorm.DB, tag *models.Tag) error {
	if tag == nil {
		return apperr.Null(r.op("Delete"), "tag")
	}
	return r.atomic(ctx, tx, func(tx *gorm.DB) error {
		for _, j := range []joinTable{tagUser, tagCommunity, tagPostLike, tagUserLike} {
			n, err := j.countLeft(tx, tag.ID)
			if err != nil {
				return translate(r.op("Delete"), err)
			}
			if n > 0 {
				return inUse(r.op("Delete"), "tag %d is still referenced by %s", tag.ID, j.name)
			}
		}
		var states int64
		if err := tx.Model(&models.Community{}).Where("state_tag_id = ?", tag.ID).Count(&states).Error; err != nil {
			return translate(r.op("Delete"), err)
		}
		if states > 0 {
			return inUse(r.op("Delete"), "tag %d is the state of %d communities", tag.ID, states)
		}
		return r.remove(tx, "Delete", tag.ID)
	})
}

func (r *tagRepo) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Tag, error) {
	return r.findByID(r.conn(ctx, tx), "FindByID", id)
}

func (r *tagRepo) FindAll(ctx context.Context, tx *gorm.DB) ([]*models.Tag, error) {
	return r.findMany(r.conn(ctx, tx), "FindAll", nil)
}

func (r *tagRepo) FindByName(ctx context.Context, tx *gorm.DB, name string) (*models.Tag, error) {
	return r.findOne(r.conn(ctx, tx), "FindByName", "name = ?", name)
}

func (r *tagRepo) CreateWellKnown(ctx context.Context, tx *gorm.DB, code int) (*models.Tag, error) {
	tag, err := models.NewWellKnownTag(code)
	if err != nil {
		return nil, err
	}

	db := r.conn(ctx, tx)
	existing, err := r.FindByName(ctx, tx, tag.Name)
	if err != nil || existing != nil {
		return existing, err
	}

	// savepoint, so a lost race does not abort the caller's transaction
	err = db.Transaction(func(tx *gorm.DB) error {
		return r.insert(tx, "CreateWellKnown", tag)
	})
	if err != nil {
		if !errors.Is(err, apperr.ErrConstraintViolation) {
			return nil, err
		}
		r.log.Debug("Well-known tag created concurrently, reusing it", "name", tag.Name)
	} else {
		r.log.Info("Created well-known tag", "name", tag.Name, "code", code)
	}
	return r.FindByName(ctx, tx, tag.Name)
}

func (r *tagRepo) FindUsersByTag(ctx context.Context, tx *gorm.DB, tagID uint) ([]*models.User, error) {
	return r.relatedUsers(ctx, tx, "FindUsersByTag", tagUser, tagID)
}

func (r *tagRepo) FindLikersByTag(ctx context.Context, tx *gorm.DB, tagID uint) ([]*models.User, error) {
	return r.relatedUsers(ctx, tx, "FindLikersByTag", tagUserLike, tagID)
}

func (r *tagRepo) relatedUsers(ctx context.Context, tx *gorm.DB, method string, j joinTable, tagID uint) ([]*models.User, error) {
	users := []*models.User{}
	err := hydrateUser(r.conn(ctx, tx)).
		Joins(j.rightJoin("users")).
		Where(j.name+".tag_id = ?", tagID).
		Order(byID).
		Find(&users).Error
	if err != nil {
		return nil, translate(r.op(method), err)
	}
	return users, nil
}

func (r *tagRepo) FindCommunitiesByTag(ctx context.Context, tx *gorm.DB, tagID uint) ([]*models.Community, error) {
	communities := []*models.Community{}
	err := hydrateCommunity(r.conn(ctx, tx)).
		Joins(tagCommunity.rightJoin("communities")).
		Where("tag_community.tag_id = ?", tagID).
		Order(byID).
		Find(&communities).Error
	if err != nil {
		return nil, translate(r.op("FindCommunitiesByTag"), err)
	}
	return communities, nil
}

func (r *tagRepo) FindLikedPostsByTag(ctx context.Context, tx *gorm.DB, tagID uint) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := hydratePost(r.conn(ctx, tx)).
		Joins(tagPostLike.rightJoin("posts")).
		Where("tag_post_like.tag_id = ?", tagID).
		Order(byID).
		Find(&posts).Error
	if err != nil {
		return nil, translate(r.op("FindLikedPostsByTag"), err)
	}
	linkThread(posts...)
	return posts, nil
}

func (r *tagRepo) AddLikeRelation(ctx context.Context, tx *gorm.DB, tag *models.Tag, post *models.Post) error {
	op := r.op("AddLikeRelation")
	if tag == nil {
		return apperr.Null(op, "tag")
	}
	if post == nil {
		return apperr.Null(op, "post")
	}
	if err := r.requireIDs(op, tag.ID, post.ID); err != nil {
		return err
	}
	if err := tagPostLike.link(r.conn(ctx, tx), tag.ID, post.ID); err != nil {
		return translate(op, err)
	}
	return tag.AddLikedPost(post)
}

func (r *tagRepo) AddLiker(ctx context.Context, tx *gorm.DB, tag *models.Tag, user *models.User) error {
	op := r.op("AddLiker")
	if tag == nil {
		return apperr.Null(op, "tag")
	}
	if user == nil {
		return apperr.Null(op, "user")
	}
	if err := r.requireIDs(op, tag.ID, user.ID); err != nil {
		return err
	}
	if err := tagUserLike.link(r.conn(ctx, tx), tag.ID, user.ID); err != nil {
		return translate(op, err)
	}
	return tag.AddLiker(user)
}

// RemoveLikeRelation drops both like rows in one transaction, then mirrors the
// change on the loaded entities.
func (r *tagRepo) RemoveLikeRelation(ctx context.Context, tx *gorm.DB, tag *models.Tag, user *models.User, post *models.Post) error {
	op := r.op("RemoveLikeRelation")
	if tag == nil {
		return apperr.Null(op, "tag")
	}
	if user == nil {
		return apperr.Null(op, "user")
	}
	if post == nil {
		return apperr.Null(op, "post")
	}
	if err := r.requireIDs(op, tag.ID, user.ID, post.ID); err != nil {
		return err
	}
	err := r.atomic(ctx, tx, func(tx *gorm.DB) error {
		if err := tagUserLike.unlink(tx, tag.ID, user.ID); err != nil {
			return err
		}
		return tagPostLike.unlink(tx, tag.ID, post.ID)
	})
	if err != nil {
		return translate(op, err)
	}
	return tag.RemoveLike(user, post)
}

func (r *tagRepo) AssignRole(ctx context.Context, tx *gorm.DB, user *models.User, tag *models.Tag) error {
	op := r.op("AssignRole")
	if user == nil {
		return apperr.Null(op, "user")
	}
	if tag == nil {
		return apperr.Null(op, "tag")
	}
	if err := r.requireIDs(op, tag.ID, user.ID); err != nil {
		return err
	}
	if err := tagUser.link(r.conn(ctx, tx), tag.ID, user.ID); err != nil {
		return translate(op, err)
	}
	return tag.AddUser(user)
}

func (r *tagRepo) RevokeRole(ctx context.Context, tx *gorm.DB, user *models.User, tag *models.Tag) error {
	op := r.op("RevokeRole")
	if user == nil {
		return apperr.Null(op, "user")
	}
	if tag == nil {
		return apperr.Null(op, "tag")
	}
	if err := tagUser.unlink(r.conn(ctx, tx), tag.ID, user.ID); err != nil {
		return translate(op, err)
	}
	return tag.RemoveUser(user)
}

func (r *tagRepo) requireIDs(op string, ids ...uint) error {
	for _, id := range ids {
		if err := requireSaved(op, "entity", id); err != nil {
			return err
		}
	}
	return nil
}
