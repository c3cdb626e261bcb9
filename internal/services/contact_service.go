package services

import (
	"context"
	"fmt"

	"agora/internal/apperr"
	"agora/internal/logger"
	"agora/internal/models"

	"gorm.io/gorm"
)

// ContactService 联系人列表。参数顺序统一为 (userID, contactID)
type ContactService interface {
	Add(ctx context.Context, userID, contactID uint) (*models.UserContact, error)
	Remove(ctx context.Context, userID, contactID uint) error
	Exists(ctx context.Context, userID, contactID uint) (bool, error)
	List(ctx context.Context, userID uint) ([]*models.UserContact, error)
}

type contactService struct {
	base
	repos *Repos
}

func NewContactService(db *gorm.DB, baseLog *logger.Logger, r *Repos) ContactService {
	return &contactService{base: newBase(db, baseLog, "ContactService"), repos: r}
}

func (s *contactService) Add(ctx context.Context, userID, contactID uint) (*models.UserContact, error) {
	const op = "ContactService.Add"
	var c *models.UserContact
	err := s.inTx(ctx, op, func(tx *gorm.DB) error {
		exists, err := s.repos.Contacts.DoesContactExistForUserID(ctx, tx, userID, contactID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.New(op, apperr.ErrConstraintViolation, fmt.Errorf("user %d already has contact %d", userID, contactID))
		}
		user, err := s.user(ctx, tx, op, userID)
		if err != nil {
			return err
		}
		contact, err := s.user(ctx, tx, op, contactID)
		if err != nil {
			return err
		}
		if c, err = models.NewUserContact(user, contact); err != nil {
			return err
		}
		_, err = s.repos.Contacts.Insert(ctx, tx, c)
		return err
	})
	return c, err
}

func (s *contactService) Remove(ctx context.Context, userID, contactID uint) error {
	const op = "ContactService.Remove"
	return s.inTx(ctx, op, func(tx *gorm.DB) error {
		exists, err := s.repos.Contacts.DoesContactExistForUserID(ctx, tx, userID, contactID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.New(op, apperr.ErrNotFound, fmt.Errorf("contact %d of user %d", contactID, userID))
		}
		return s.repos.Contacts.DeleteContactForUserIDAndContactID(ctx, tx, userID, contactID)
	})
}

func (s *contactService) Exists(ctx context.Context, userID, contactID uint) (bool, error) {
	ok, err := s.repos.Contacts.DoesContactExistForUserID(ctx, nil, userID, contactID)
	return ok, s.fail("ContactService.Exists", err)
}

func (s *contactService) List(ctx context.Context, userID uint) ([]*models.UserContact, error) {
	cs, err := s.repos.Contacts.FindContactsByUser(ctx, nil, userID)
	return cs, s.fail("ContactService.List", err)
}

func (s *contactService) user(ctx context.Context, tx *gorm.DB, op string, id uint) (*models.User, error) {
	u, err := s.repos.Users.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, notFound(op, "user", id)
	}
	return u, nil
}
