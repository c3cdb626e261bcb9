package services

import (
	"context"

	"agora/internal/logger"
	"agora/internal/models"

	"gorm.io/gorm"
)

type MessageService interface {
	Send(ctx context.Context, senderID, receiverID uint, text string) (*models.PrivateMessage, error)
	Get(ctx context.Context, id uint) (*models.PrivateMessage, error)
	Inbox(ctx context.Context, userID uint) ([]*models.PrivateMessage, error)
	Outbox(ctx context.Context, userID uint) ([]*models.PrivateMessage, error)
	// Conversation lists what a and b sent each other, oldest first.
	Conversation(ctx context.Context, a, b uint) ([]*models.PrivateMessage, error)
	Delete(ctx context.Context, id uint) error
}

type messageService struct {
	base
	repos *Repos
}

func NewMessageService(db *gorm.DB, baseLog *logger.Logger, r *Repos) MessageService {
	return &messageService{base: newBase(db, baseLog, "MessageService"), repos: r}
}

func (s *messageService) Send(ctx context.Context, senderID, receiverID uint, text string) (*models.PrivateMessage, error) {
	const op = "MessageService.Send"
	var m *models.PrivateMessage
	err := s.inTx(ctx, op, func(tx *gorm.DB) error {
		sender, err := s.user(ctx, tx, op, senderID)
		if err != nil {
			return err
		}
		receiver, err := s.user(ctx, tx, op, receiverID)
		if err != nil {
			return err
		}
		if m, err = models.NewPrivateMessage(text, sender, receiver); err != nil {
			return err
		}
		_, err = s.repos.Messages.Insert(ctx, tx, m)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("Message sent", "id", m.ID, "sender_id", senderID, "receiver_id", receiverID)
	return m, nil
}

func (s *messageService) Get(ctx context.Context, id uint) (*models.PrivateMessage, error) {
	m, err := s.repos.Messages.FindByID(ctx, nil, id)
	if err != nil {
		return nil, s.fail("MessageService.Get", err)
	}
	if m == nil {
		return nil, notFound("MessageService.Get", "message", id)
	}
	return m, nil
}

func (s *messageService) Inbox(ctx context.Context, userID uint) ([]*models.PrivateMessage, error) {
	ms, err := s.repos.Messages.FindByReceiver(ctx, nil, userID)
	return ms, s.fail("MessageService.Inbox", err)
}

func (s *messageService) Outbox(ctx context.Context, userID uint) ([]*models.PrivateMessage, error) {
	ms, err := s.repos.Messages.FindBySender(ctx, nil, userID)
	return ms, s.fail("MessageService.Outbox", err)
}

func (s *messageService) Conversation(ctx context.Context, a, b uint) ([]*models.PrivateMessage, error) {
	ms, err := s.repos.Messages.FindConversation(ctx, nil, a, b)
	return ms, s.fail("MessageService.Conversation", err)
}

func (s *messageService) Delete(ctx context.Context, id uint) error {
	const op = "MessageService.Delete"
	return s.inTx(ctx, op, func(tx *gorm.DB) error {
		m, err := s.repos.Messages.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return notFound(op, "message", id)
		}
		return s.repos.Messages.Delete(ctx, tx, m)
	})
}

func (s *messageService) user(ctx context.Context, tx *gorm.DB, op string, id uint) (*models.User, error) {
	u, err := s.repos.Users.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, notFound(op, "user", id)
	}
	return u, nil
}
