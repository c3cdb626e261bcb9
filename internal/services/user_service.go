package services

import (
	"context"
	"fmt"

	"agora/internal/apperr"
	"agora/internal/logger"
	"agora/internal/models"

	"gorm.io/gorm"
)

type UserService interface {
	// Register creates a user with a hashed password and the USER role.
	Register(ctx context.Context, username, password string) (*models.User, error)
	Get(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Delete(ctx context.Context, id uint) error

	AssignRole(ctx context.Context, userID uint, code int) (*models.User, error)
	RevokeRole(ctx context.Context, userID uint, code int) (*models.User, error)

	// SaveProfile creates the user's profile or replaces the existing one's fields.
	SaveProfile(ctx context.Context, userID uint, profile *models.UserProfile) (*models.UserProfile, error)
	Profile(ctx context.Context, userID uint) (*models.UserProfile, error)
}

type userService struct {
	base
	repos *Repos
	tags  TagService
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, r *Repos, tags TagService) UserService {
	return &userService{base: newBase(db, baseLog, "UserService"), repos: r, tags: tags}
}

func (s *userService) Register(ctx context.Context, username, password string) (*models.User, error) {
	const op = "UserService.Register"
	u, err := models.NewUser(username, password)
	if err != nil {
		return nil, err
	}
	role, err := s.tags.WellKnown(ctx, models.TagUser)
	if err != nil {
		return nil, err
	}
	if err := role.AddUser(u); err != nil {
		return nil, err
	}

	err = s.inTx(ctx, op, func(tx *gorm.DB) error {
		taken, err := s.repos.Users.FindByUsername(ctx, tx, u.Username)
		if err != nil {
			return err
		}
		if taken != nil {
			return apperr.New(op, apperr.ErrConstraintViolation, fmt.Errorf("username %q is taken", u.Username))
		}
		_, err = s.repos.Users.Insert(ctx, tx, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("User registered", "id", u.ID, "username", u.Username)
	return u, nil
}

func (s *userService) Get(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.repos.Users.FindByID(ctx, nil, id)
	if err != nil {
		return nil, s.fail("UserService.Get", err)
	}
	if u == nil {
		return nil, notFound("UserService.Get", "user", id)
	}
	return u, nil
}

func (s *userService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := s.repos.Users.FindByUsername(ctx, nil, username)
	if err != nil {
		return nil, s.fail("UserService.FindByUsername", err)
	}
	if u == nil {
		return nil, apperr.New("UserService.FindByUsername", apperr.ErrNotFound, fmt.Errorf("user %q", username))
	}
	return u, nil
}

func (s *userService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.repos.Users.FindAll(ctx, nil)
	return users, s.fail("UserService.List", err)
}

func (s *userService) Delete(ctx context.Context, id uint) error {
	const op = "UserService.Delete"
	return s.inTx(ctx, op, func(tx *gorm.DB) error {
		u, err := s.user(ctx, tx, op, id)
		if err != nil {
			return err
		}
		return s.repos.Users.Delete(ctx, tx, u)
	})
}

func (s *userService) AssignRole(ctx context.Context, userID uint, code int) (*models.User, error) {
	return s.changeRole(ctx, "UserService.AssignRole", userID, code, s.repos.Tags.AssignRole)
}

func (s *userService) RevokeRole(ctx context.Context, userID uint, code int) (*models.User, error) {
	return s.changeRole(ctx, "UserService.RevokeRole", userID, code, s.repos.Tags.RevokeRole)
}

type roleChange func(ctx context.Context, tx *gorm.DB, user *models.User, tag *models.Tag) error

func (s *userService) changeRole(ctx context.Context, op string, userID uint, code int, change roleChange) (*models.User, error) {
	w, err := models.ParseWellKnown(code)
	if err != nil {
		return nil, err
	}
	role, err := s.tags.WellKnown(ctx, w)
	if err != nil {
		return nil, err
	}
	var u *models.User
	err = s.inTx(ctx, op, func(tx *gorm.DB) error {
		var err error
		if u, err = s.user(ctx, tx, op, userID); err != nil {
			return err
		}
		return change(ctx, tx, u, role)
	})
	return u, err
}

func (s *userService) SaveProfile(ctx context.Context, userID uint, profile *models.UserProfile) (*models.UserProfile, error) {
	const op = "UserService.SaveProfile"
	if profile == nil {
		return nil, apperr.Null(op, "profile")
	}
	var saved *models.UserProfile
	err := s.inTx(ctx, op, func(tx *gorm.DB) error {
		u, err := s.user(ctx, tx, op, userID)
		if err != nil {
			return err
		}
		existing, err := s.repos.Profiles.FindByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := profile.AttachTo(u); err != nil {
			return err
		}
		if existing == nil {
			profile.ID = 0
			saved, err = s.repos.Profiles.Insert(ctx, tx, profile)
			return err
		}
		profile.ID = existing.ID
		saved, err = s.repos.Profiles.Update(ctx, tx, profile)
		return err
	})
	return saved, err
}

func (s *userService) Profile(ctx context.Context, userID uint) (*models.UserProfile, error) {
	p, err := s.repos.Profiles.FindByUser(ctx, nil, userID)
	if err != nil {
		return nil, s.fail("UserService.Profile", err)
	}
	if p == nil {
		return nil, notFound("UserService.Profile", "profile of user", userID)
	}
	return p, nil
}

func (s *userService) user(ctx context.Context, tx *gorm.DB, op string, id uint) (*models.User, error) {
	u, err := s.repos.Users.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, notFound(op, "user", id)
	}
	return u, nil
}
