package services

import (
	"context"
	"time"

	"agora/internal/logger"
	"agora/internal/models"
	"agora/internal/repos"
	"agora/internal/utils"

	"gorm.io/gorm"
)

type TagService interface {
	// WellKnown returns the built-in tag, creating it on first use. Results
	// are cached, so it must be called before the caller opens a transaction.
	WellKnown(ctx context.Context, w models.WellKnown) (*models.Tag, error)
	Get(ctx context.Context, id uint) (*models.Tag, error)
	List(ctx context.Context) ([]*models.Tag, error)
	UsersWithRole(ctx context.Context, w models.WellKnown) ([]*models.User, error)
}

type tagService struct {
	base
	tags  repos.TagRepo
	cache *utils.Cache[models.WellKnown, models.Tag]
}

func NewTagService(db *gorm.DB, baseLog *logger.Logger, tags repos.TagRepo, cacheSize int, ttl time.Duration) (TagService, error) {
	if cacheSize <= 0 {
		cacheSize = len(models.WellKnownCodes())
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	cache, err := utils.NewCache[models.WellKnown, models.Tag](cacheSize, ttl)
	if err != nil {
		return nil, err
	}
	return &tagService{base: newBase(db, baseLog, "TagService"), tags: tags, cache: cache}, nil
}

func (s *tagService) WellKnown(ctx context.Context, w models.WellKnown) (*models.Tag, error) {
	if cached, ok := s.cache.Get(w); ok {
		return &cached, nil
	}
	var tag *models.Tag
	err := s.inTx(ctx, "TagService.WellKnown", func(tx *gorm.DB) error {
		var err error
		tag, err = s.tags.CreateWellKnown(ctx, tx, int(w))
		return err
	})
	if err != nil {
		return nil, err
	}
	// only identity is cached; relation collections go stale
	s.cache.Set(w, models.Tag{ID: tag.ID, Name: tag.Name})
	return &models.Tag{ID: tag.ID, Name: tag.Name}, nil
}

func (s *tagService) Get(ctx context.Context, id uint) (*models.Tag, error) {
	tag, err := s.tags.FindByID(ctx, nil, id)
	if err != nil {
		return nil, s.fail("TagService.Get", err)
	}
	if tag == nil {
		return nil, notFound("TagService.Get", "tag", id)
	}
	return tag, nil
}

func (s *tagService) List(ctx context.Context) ([]*models.Tag, error) {
	tags, err := s.tags.FindAll(ctx, nil)
	return tags, s.fail("TagService.List", err)
}

func (s *tagService) UsersWithRole(ctx context.Context, w models.WellKnown) ([]*models.User, error) {
	tag, err := s.WellKnown(ctx, w)
	if err != nil {
		return nil, err
	}
	users, err := s.tags.FindUsersByTag(ctx, nil, tag.ID)
	return users, s.fail("TagService.UsersWithRole", err)
}
