package services

import (
	"context"
	"fmt"

	"agora/internal/apperr"
	"agora/internal/logger"
	"agora/internal/models"

	"gorm.io/gorm"
)

type CommunityService interface {
	Create(ctx context.Context, name, description string) (*models.Community, error)
	Update(ctx context.Context, c *models.Community) (*models.Community, error)
	Delete(ctx context.Context, id uint) error
	Get(ctx context.Context, id uint) (*models.Community, error)
	FindByName(ctx context.Context, name string) (*models.Community, error)
	List(ctx context.Context) ([]*models.Community, error)
	ByState(ctx context.Context, code int) ([]*models.Community, error)
	Pending(ctx context.Context) ([]*models.Community, error)
	Approved(ctx context.Context) ([]*models.Community, error)

	Approve(ctx context.Context, id uint) (*models.Community, error)
	Refuse(ctx context.Context, id uint) (*models.Community, error)
	Join(ctx context.Context, communityID, userID uint) error
	Leave(ctx context.Context, communityID, userID uint) error
}

type communityService struct {
	base
	repos *Repos
}

func NewCommunityService(db *gorm.DB, baseLog *logger.Logger, r *Repos) CommunityService {
	return &communityService{base: newBase(db, baseLog, "CommunityService"), repos: r}
}

func (s *communityService) Create(ctx context.Context, name, description string) (*models.Community, error) {
	var c *models.Community
	err := s.inTx(ctx, "CommunityService.Create", func(tx *gorm.DB) error {
		var err error
		c, err = s.repos.Communities.CreateCommunity(ctx, tx, name, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Community created", "id", c.ID, "name", c.Name)
	return c, nil
}

func (s *communityService) Update(ctx context.Context, c *models.Community) (*models.Community, error) {
	if c == nil {
		return nil, apperr.Null("CommunityService.Update", "community")
	}
	var merged *models.Community
	err := s.inTx(ctx, "CommunityService.Update", func(tx *gorm.DB) error {
		var err error
		merged, err = s.repos.Communities.Update(ctx, tx, c)
		return err
	})
	return merged, err
}

func (s *communityService) Delete(ctx context.Context, id uint) error {
	const op = "CommunityService.Delete"
	return s.inTx(ctx, op, func(tx *gorm.DB) error {
		c, err := s.community(ctx, tx, op, id)
		if err != nil {
			return err
		}
		return s.repos.Communities.Delete(ctx, tx, c)
	})
}

func (s *communityService) Get(ctx context.Context, id uint) (*models.Community, error) {
	c, err := s.repos.Communities.FindByID(ctx, nil, id)
	if err != nil {
		return nil, s.fail("CommunityService.Get", err)
	}
	if c == nil {
		return nil, notFound("CommunityService.Get", "community", id)
	}
	return c, nil
}

func (s *communityService) FindByName(ctx context.Context, name string) (*models.Community, error) {
	c, err := s.repos.Communities.FindByName(ctx, nil, name)
	if err != nil {
		return nil, s.fail("CommunityService.FindByName", err)
	}
	if c == nil {
		return nil, apperr.New("CommunityService.FindByName", apperr.ErrNotFound, fmt.Errorf("community %q", name))
	}
	return c, nil
}

func (s *communityService) List(ctx context.Context) ([]*models.Community, error) {
	cs, err := s.repos.Communities.FindAll(ctx, nil)
	return cs, s.fail("CommunityService.List", err)
}

func (s *communityService) ByState(ctx context.Context, code int) ([]*models.Community, error) {
	cs, err := s.repos.Communities.FindByState(ctx, nil, code)
	return cs, s.fail("CommunityService.ByState", err)
}

func (s *communityService) Pending(ctx context.Context) ([]*models.Community, error) {
	return s.ByState(ctx, int(models.TagPending))
}

func (s *communityService) Approved(ctx context.Context) ([]*models.Community, error) {
	return s.ByState(ctx, int(models.TagApproved))
}

func (s *communityService) Approve(ctx context.Context, id uint) (*models.Community, error) {
	return s.transition(ctx, "CommunityService.Approve", id, models.TagApproved)
}

func (s *communityService) Refuse(ctx context.Context, id uint) (*models.Community, error) {
	return s.transition(ctx, "CommunityService.Refuse", id, models.TagRefused)
}

// transition moves a PENDING community to its final state.
func (s *communityService) transition(ctx context.Context, op string, id uint, to models.WellKnown) (*models.Community, error) {
	var c *models.Community
	err := s.inTx(ctx, op, func(tx *gorm.DB) error {
		var err error
		c, err = s.community(ctx, tx, op, id)
		if err != nil {
			return err
		}
		if c.InState(to) {
			return nil
		}
		if !c.InState(models.TagPending) {
			return apperr.Invalid(op, "community %d is not PENDING", id)
		}
		return s.repos.Communities.SetState(ctx, tx, c, int(to))
	})
	return c, err
}

func (s *communityService) Join(ctx context.Context, communityID, userID uint) error {
	const op = "CommunityService.Join"
	return s.inTx(ctx, op, func(tx *gorm.DB) error {
		c, u, err := s.pair(ctx, tx, op, communityID, userID)
		if err != nil {
			return err
		}
		return s.repos.Communities.AddMember(ctx, tx, c, u)
	})
}

func (s *communityService) Leave(ctx context.Context, communityID, userID uint) error {
	const op = "CommunityService.Leave"
	return s.inTx(ctx, op, func(tx *gorm.DB) error {
		c, u, err := s.pair(ctx, tx, op, communityID, userID)
		if err != nil {
			return err
		}
		return s.repos.Communities.RemoveMember(ctx, tx, c, u)
	})
}

func (s *communityService) pair(ctx context.Context, tx *gorm.DB, op string, communityID, userID uint) (*models.Community, *models.User, error) {
	c, err := s.community(ctx, tx, op, communityID)
	if err != nil {
		return nil, nil, err
	}
	u, err := s.repos.Users.FindByID(ctx, tx, userID)
	if err != nil {
		return nil, nil, err
	}
	if u == nil {
		return nil, nil, notFound(op, "user", userID)
	}
	return c, u, nil
}

func (s *communityService) community(ctx context.Context, tx *gorm.DB, op string, id uint) (*models.Community, error) {
	c, err := s.repos.Communities.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, notFound(op, "community", id)
	}
	return c, nil
}
