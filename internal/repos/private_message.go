package repos

import (
	"context"

	"agora/internal/apperr"
	"agora/internal/logger"
	"agora/internal/models"

	"gorm.io/gorm"
)

type PrivateMessageRepo interface {
	Insert(ctx context.Context, tx *gorm.DB, m *models.PrivateMessage) (*models.PrivateMessage, error)
	Update(ctx context.Context, tx *gorm.DB, m *models.PrivateMessage) (*models.PrivateMessage, error)
	Delete(ctx context.Context, tx *gorm.DB, m *models.PrivateMessage) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.PrivateMessage, error)
	FindAll(ctx context.Context, tx *gorm.DB) ([]*models.PrivateMessage, error)
	FindBySender(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.PrivateMessage, error)
	FindByReceiver(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.PrivateMessage, error)
	// FindConversation returns the messages exchanged between a and b in either direction.
	FindConversation(ctx context.Context, tx *gorm.DB, a, b uint) ([]*models.PrivateMessage, error)
}

type privateMessageRepo struct {
	store[models.PrivateMessage]
}

func NewPrivateMessageRepo(db *gorm.DB, baseLog *logger.Logger) PrivateMessageRepo {
	return &privateMessageRepo{store: newStore[models.PrivateMessage](db, baseLog, "PrivateMessageRepo", hydrateMessage)}
}

func (r *privateMessageRepo) Insert(ctx context.Context, tx *gorm.DB, m *models.PrivateMessage) (*models.PrivateMessage, error) {
	if m == nil {
		return nil, apperr.Null(r.op("Insert"), "message")
	}
	if err := r.insert(r.conn(ctx, tx), "Insert", m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *privateMessageRepo) Update(ctx context.Context, tx *gorm.DB, m *models.PrivateMessage) (*models.PrivateMessage, error) {
	if m == nil {
		return nil, apperr.Null(r.op("Update"), "message")
	}
	db := r.conn(ctx, tx)
	if err := r.save(db, "Update", m.ID, m); err != nil {
		return nil, err
	}
	return r.findByID(db, "Update", m.ID)
}

func (r *privateMessageRepo) Delete(ctx context.Context, tx *gorm.DB, m *models.PrivateMessage) error {
	if m == nil {
		return apperr.Null(r.op("Delete"), "message")
	}
	return r.remove(r.conn(ctx, tx), "Delete", m.ID)
}

func (r *privateMessageRepo) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.PrivateMessage, error) {
	return r.findByID(r.conn(ctx, tx), "FindByID", id)
}

func (r *privateMessageRepo) FindAll(ctx context.Context, tx *gorm.DB) ([]*models.PrivateMessage, error) {
	return r.findMany(r.conn(ctx, tx), "FindAll", nil)
}

func (r *privateMessageRepo) FindBySender(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.PrivateMessage, error) {
	return r.findMany(r.conn(ctx, tx), "FindBySender", "sender_id = ?", userID)
}

func (r *privateMessageRepo) FindByReceiver(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.PrivateMessage, error) {
	return r.findMany(r.conn(ctx, tx), "FindByReceiver", "receiver_id = ?", userID)
}

func (r *privateMessageRepo) FindConversation(ctx context.Context, tx *gorm.DB, a, b uint) ([]*models.PrivateMessage, error) {
	return r.findMany(r.conn(ctx, tx), "FindConversation",
		"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a)
}
