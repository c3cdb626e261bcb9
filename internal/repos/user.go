package repos

import (
	"context"

	"agora/internal/apperr"
	"agora/internal/logger"
	"agora/internal/models"

	"gorm.io/gorm"
)

type UserRepo interface {
	Insert(ctx context.Context, tx *gorm.DB, u *models.User) (*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, u *models.User) (*models.User, error)
	Delete(ctx context.Context, tx *gorm.DB, u *models.User) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	FindAll(ctx context.Context, tx *gorm.DB) ([]*models.User, error)
	FindByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error)
}

type userRepo struct {
	store[models.User]
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{store: newStore[models.User](db, baseLog, "UserRepo", hydrateUser)}
}

// Insert stores the user and any saved roles it already carries.
func (r *userRepo) Insert(ctx context.Context, tx *gorm.DB, u *models.User) (*models.User, error) {
	if u == nil {
		return nil, apperr.Null(r.op("Insert"), "user")
	}
	err := r.atomic(ctx, tx, func(tx *gorm.DB) error {
		if err := r.insert(tx, "Insert", u); err != nil {
			return err
		}
		for _, role := range u.Roles {
			if role == nil || role.ID == 0 {
				continue
			}
			if err := tagUser.link(tx, role.ID, u.ID); err != nil {
				return translate(r.op("Insert"), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepo) Update(ctx context.Context, tx *gorm.DB, u *models.User) (*models.User, error) {
	if u == nil {
		return nil, apperr.Null(r.op("Update"), "user")
	}
	var merged *models.User
	err := r.atomic(ctx, tx, func(tx *gorm.DB) error {
		if err := r.save(tx, "Update", u.ID, u); err != nil {
			return err
		}
		var err error
		merged, err = r.findByID(tx, "Update", u.ID)
		return err
	})
	return merged, err
}

// Delete refuses while the user still authors posts or messages. Roles,
// likes, memberships, contacts and the profile are removed with the user.
func (r *userRepo) Delete(ctx context.Context, tx *gorm.DB, u *models.User) error {
	if u == nil {
		return apperr.Null(r.op("Delete"), "user")
	}
	op := r.op("Delete")
	return r.atomic(ctx, tx, func(tx *gorm.DB) error {
		var posts, messages int64
		if err := tx.Model(&models.Post{}).Where("user_id = ?", u.ID).Count(&posts).Error; err != nil {
			return translate(op, err)
		}
		if posts > 0 {
			return inUse(op, "user %d still authors %d posts", u.ID, posts)
		}
		if err := tx.Model(&models.PrivateMessage{}).
			Where("sender_id = ? OR receiver_id = ?", u.ID, u.ID).
			Count(&messages).Error; err != nil {
			return translate(op, err)
		}
		if messages > 0 {
			return inUse(op, "user %d still has %d private messages", u.ID, messages)
		}

		for _, j := range []joinTable{tagUser, tagUserLike} {
			if err := j.unlinkRight(tx, u.ID); err != nil {
				return translate(op, err)
			}
		}
		if err := communityMember.unlinkRight(tx, u.ID); err != nil {
			return translate(op, err)
		}
		if err := tx.Where("user_id = ? OR contact_id = ?", u.ID, u.ID).Delete(&models.UserContact{}).Error; err != nil {
			return translate(op, err)
		}
		if err := tx.Where("user_id = ?", u.ID).Delete(&models.UserProfile{}).Error; err != nil {
			return translate(op, err)
		}
		return r.remove(tx, "Delete", u.ID)
	})
}

func (r *userRepo) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	return r.findByID(r.conn(ctx, tx), "FindByID", id)
}

func (r *userRepo) FindAll(ctx context.Context, tx *gorm.DB) ([]*models.User, error) {
	return r.findMany(r.conn(ctx, tx), "FindAll", nil)
}

func (r *userRepo) FindByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	return r.findOne(r.conn(ctx, tx), "FindByUsername", "username = ?", username)
}
