package repos

import (
	"context"

	"agora/internal/apperr"
	"agora/internal/logger"
	"agora/internal/models"

	"gorm.io/gorm"
)

type UserProfileRepo interface {
	Insert(ctx context.Context, tx *gorm.DB, p *models.UserProfile) (*models.UserProfile, error)
	Update(ctx context.Context, tx *gorm.DB, p *models.UserProfile) (*models.UserProfile, error)
	Delete(ctx context.Context, tx *gorm.DB, p *models.UserProfile) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.UserProfile, error)
	FindAll(ctx context.Context, tx *gorm.DB) ([]*models.UserProfile, error)
	FindByUser(ctx context.Context, tx *gorm.DB, userID uint) (*models.UserProfile, error)
}

type userProfileRepo struct {
	store[models.UserProfile]
}

func NewUserProfileRepo(db *gorm.DB, baseLog *logger.Logger) UserProfileRepo {
	return &userProfileRepo{store: newStore[models.UserProfile](db, baseLog, "UserProfileRepo", hydrateProfile)}
}

func (r *userProfileRepo) Insert(ctx context.Context, tx *gorm.DB, p *models.UserProfile) (*models.UserProfile, error) {
	if p == nil {
		return nil, apperr.Null(r.op("Insert"), "profile")
	}
	if err := r.insert(r.conn(ctx, tx), "Insert", p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *userProfileRepo) Update(ctx context.Context, tx *gorm.DB, p *models.UserProfile) (*models.UserProfile, error) {
	if p == nil {
		return nil, apperr.Null(r.op("Update"), "profile")
	}
	db := r.conn(ctx, tx)
	if err := r.save(db, "Update", p.ID, p); err != nil {
		return nil, err
	}
	return r.findByID(db, "Update", p.ID)
}

func (r *userProfileRepo) Delete(ctx context.Context, tx *gorm.DB, p *models.UserProfile) error {
	if p == nil {
		return apperr.Null(r.op("Delete"), "profile")
	}
	if err := r.remove(r.conn(ctx, tx), "Delete", p.ID); err != nil {
		return err
	}
	if p.User != nil && p.User.Profile == p {
		p.User.Profile = nil
	}
	return nil
}

func (r *userProfileRepo) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.UserProfile, error) {
	return r.findByID(r.conn(ctx, tx), "FindByID", id)
}

func (r *userProfileRepo) FindAll(ctx context.Context, tx *gorm.DB) ([]*models.UserProfile, error) {
	return r.findMany(r.conn(ctx, tx), "FindAll", nil)
}

func (r *userProfileRepo) FindByUser(ctx context.Context, tx *gorm.DB, userID uint) (*models.UserProfile, error) {
	return r.findOne(r.conn(ctx, tx), "FindByUser", "user_id = ?", userID)
}
