package repos

import (
	"context"

	"agora/internal/apperr"
	"agora/internal/logger"
	"agora/internal/models"

	"gorm.io/gorm"
)

type UserContactRepo interface {
	Insert(ctx context.Context, tx *gorm.DB, c *models.UserContact) (*models.UserContact, error)
	Update(ctx context.Context, tx *gorm.DB, c *models.UserContact) (*models.UserContact, error)
	Delete(ctx context.Context, tx *gorm.DB, c *models.UserContact) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.UserContact, error)
	FindAll(ctx context.Context, tx *gorm.DB) ([]*models.UserContact, error)

	DoesContactExistForUserID(ctx context.Context, tx *gorm.DB, userID, contactID uint) (bool, error)
	DeleteContactForUserIDAndContactID(ctx context.Context, tx *gorm.DB, userID, contactID uint) error
	FindContactsByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.UserContact, error)
}

type userContactRepo struct {
	store[models.UserContact]
}

func NewUserContactRepo(db *gorm.DB, baseLog *logger.Logger) UserContactRepo {
	return &userContactRepo{store: newStore[models.UserContact](db, baseLog, "UserContactRepo", hydrateContact)}
}

func (r *userContactRepo) Insert(ctx context.Context, tx *gorm.DB, c *models.UserContact) (*models.UserContact, error) {
	if c == nil {
		return nil, apperr.Null(r.op("Insert"), "contact")
	}
	if err := r.insert(r.conn(ctx, tx), "Insert", c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *userContactRepo) Update(ctx context.Context, tx *gorm.DB, c *models.UserContact) (*models.UserContact, error) {
	if c == nil {
		return nil, apperr.Null(r.op("Update"), "contact")
	}
	db := r.conn(ctx, tx)
	if err := r.save(db, "Update", c.ID, c); err != nil {
		return nil, err
	}
	return r.findByID(db, "Update", c.ID)
}

func (r *userContactRepo) Delete(ctx context.Context, tx *gorm.DB, c *models.UserContact) error {
	if c == nil {
		return apperr.Null(r.op("Delete"), "contact")
	}
	return r.remove(r.conn(ctx, tx), "Delete", c.ID)
}

func (r *userContactRepo) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.UserContact, error) {
	return r.findByID(r.conn(ctx, tx), "FindByID", id)
}

func (r *userContactRepo) FindAll(ctx context.Context, tx *gorm.DB) ([]*models.UserContact, error) {
	return r.findMany(r.conn(ctx, tx), "FindAll", nil)
}

func (r *userContactRepo) DoesContactExistForUserID(ctx context.Context, tx *gorm.DB, userID, contactID uint) (bool, error) {
	n, err := r.count(r.conn(ctx, tx), "DoesContactExistForUserID", "user_id = ? AND contact_id = ?", userID, contactID)
	return n > 0, err
}

// DeleteContactForUserIDAndContactID is a no-op when the pair does not exist.
func (r *userContactRepo) DeleteContactForUserIDAndContactID(ctx context.Context, tx *gorm.DB, userID, contactID uint) error {
	err := r.conn(ctx, tx).
		Where("user_id = ? AND contact_id = ?", userID, contactID).
		Delete(&models.UserContact{}).Error
	return translate(r.op("DeleteContactForUserIDAndContactID"), err)
}

func (r *userContactRepo) FindContactsByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.UserContact, error) {
	return r.findMany(r.conn(ctx, tx), "FindContactsByUser", "user_id = ?", userID)
}
