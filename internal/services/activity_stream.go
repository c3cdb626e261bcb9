package services

import (
	"context"
	"time"

	"agora/internal/apperr"
	"agora/internal/logger"
	"agora/internal/models"

	"gorm.io/gorm"
)

// ActivityStreamService 帖子流：发帖、回复、点赞以及按用户/社区读取
type ActivityStreamService interface {
	// Insert stores a post built by the caller, moving it to community when one is given.
	Insert(ctx context.Context, post *models.Post, community *models.Community) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) (*models.Post, error)
	Delete(ctx context.Context, post *models.Post) error

	Publish(ctx context.Context, communityID, authorID uint, text string) (*models.Post, error)
	Reply(ctx context.Context, parentID, authorID uint, text string) (*models.Post, error)
	Get(ctx context.Context, id uint) (*models.Post, error)
	GetPostsForUser(ctx context.Context, userID uint) ([]*models.Post, error)
	GetPostsForCommunity(ctx context.Context, communityID uint) ([]*models.Post, error)

	Like(ctx context.Context, postID, userID uint) error
	Unlike(ctx context.Context, postID, userID uint) error
}

type activityStream struct {
	base
	repos *Repos
	tags  TagService
	now   func() time.Time
}

func NewActivityStreamService(db *gorm.DB, baseLog *logger.Logger, r *Repos, tags TagService) ActivityStreamService {
	return &activityStream{
		base:  newBase(db, baseLog, "ActivityStreamService"),
		repos: r,
		tags:  tags,
		now:   time.Now,
	}
}

func (s *activityStream) Insert(ctx context.Context, post *models.Post, community *models.Community) (*models.Post, error) {
	if post == nil {
		return nil, apperr.Null("ActivityStreamService.Insert", "post")
	}
	if community != nil {
		if err := post.SetCommunity(community); err != nil {
			return nil, err
		}
	}
	err := s.inTx(ctx, "ActivityStreamService.Insert", func(tx *gorm.DB) error {
		_, err := s.repos.Posts.Insert(ctx, tx, post)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *activityStream) Update(ctx context.Context, post *models.Post) (*models.Post, error) {
	if post == nil {
		return nil, apperr.Null("ActivityStreamService.Update", "post")
	}
	var merged *models.Post
	err := s.inTx(ctx, "ActivityStreamService.Update", func(tx *gorm.DB) error {
		var err error
		merged, err = s.repos.Posts.Update(ctx, tx, post)
		return err
	})
	return merged, err
}

func (s *activityStream) Delete(ctx context.Context, post *models.Post) error {
	if post == nil {
		return apperr.Null("ActivityStreamService.Delete", "post")
	}
	return s.inTx(ctx, "ActivityStreamService.Delete", func(tx *gorm.DB) error {
		return s.repos.Posts.Delete(ctx, tx, post)
	})
}

func (s *activityStream) Publish(ctx context.Context, communityID, authorID uint, text string) (*models.Post, error) {
	const op = "ActivityStreamService.Publish"
	var post *models.Post
	err := s.inTx(ctx, op, func(tx *gorm.DB) error {
		community, err := s.repos.Communities.FindByID(ctx, tx, communityID)
		if err != nil {
			return err
		}
		if community == nil {
			return notFound(op, "community", communityID)
		}
		if !community.InState(models.TagApproved) {
			return apperr.Invalid(op, "community %q is not approved", community.Name)
		}
		author, err := s.user(ctx, tx, op, authorID)
		if err != nil {
			return err
		}
		post, err = s.repos.Posts.Create(ctx, tx, nil, community, author, text, s.now().UTC())
		return err
	})
	return post, err
}

func (s *activityStream) Reply(ctx context.Context, parentID, authorID uint, text string) (*models.Post, error) {
	const op = "ActivityStreamService.Reply"
	var post *models.Post
	err := s.inTx(ctx, op, func(tx *gorm.DB) error {
		parent, err := s.post(ctx, tx, op, parentID)
		if err != nil {
			return err
		}
		author, err := s.user(ctx, tx, op, authorID)
		if err != nil {
			return err
		}
		post, err = s.repos.Posts.Create(ctx, tx, parent, parent.Community, author, text, s.now().UTC())
		return err
	})
	return post, err
}

func (s *activityStream) Get(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.repos.Posts.FindByID(ctx, nil, id)
	if err != nil {
		return nil, s.fail("ActivityStreamService.Get", err)
	}
	if post == nil {
		return nil, notFound("ActivityStreamService.Get", "post", id)
	}
	return post, nil
}

func (s *activityStream) GetPostsForUser(ctx context.Context, userID uint) ([]*models.Post, error) {
	s.log.Debug("getting posts relevant for user", "user_id", userID)
	posts, err := s.repos.Posts.FindByUser(ctx, nil, userID)
	return posts, s.fail("ActivityStreamService.GetPostsForUser", err)
}

func (s *activityStream) GetPostsForCommunity(ctx context.Context, communityID uint) ([]*models.Post, error) {
	s.log.Debug("getting posts relevant for community", "community_id", communityID)
	posts, err := s.repos.Posts.FindByCommunity(ctx, nil, communityID)
	return posts, s.fail("ActivityStreamService.GetPostsForCommunity", err)
}

// Like marks the post with the LIKE tag and records the user as a liker.
func (s *activityStream) Like(ctx context.Context, postID, userID uint) error {
	const op = "ActivityStreamService.Like"
	like, err := s.tags.WellKnown(ctx, models.TagLike)
	if err != nil {
		return err
	}
	return s.inTx(ctx, op, func(tx *gorm.DB) error {
		post, err := s.post(ctx, tx, op, postID)
		if err != nil {
			return err
		}
		user, err := s.user(ctx, tx, op, userID)
		if err != nil {
			return err
		}
		if err := s.repos.Posts.AddLike(ctx, tx, post, like); err != nil {
			return err
		}
		return s.repos.Tags.AddLiker(ctx, tx, like, user)
	})
}

func (s *activityStream) Unlike(ctx context.Context, postID, userID uint) error {
	const op = "ActivityStreamService.Unlike"
	like, err := s.tags.WellKnown(ctx, models.TagLike)
	if err != nil {
		return err
	}
	return s.inTx(ctx, op, func(tx *gorm.DB) error {
		post, err := s.post(ctx, tx, op, postID)
		if err != nil {
			return err
		}
		user, err := s.user(ctx, tx, op, userID)
		if err != nil {
			return err
		}
		return s.repos.Posts.RemoveLike(ctx, tx, post, like, user)
	})
}

func (s *activityStream) post(ctx context.Context, tx *gorm.DB, op string, id uint) (*models.Post, error) {
	post, err := s.repos.Posts.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, notFound(op, "post", id)
	}
	return post, nil
}

func (s *activityStream) user(ctx context.Context, tx *gorm.DB, op string, id uint) (*models.User, error) {
	user, err := s.repos.Users.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound(op, "user", id)
	}
	return user, nil
}
