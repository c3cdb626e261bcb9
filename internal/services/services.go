package services

import (
	"time"

	"agora/internal/logger"
	"agora/internal/repos"

	"gorm.io/gorm"
)

// Repos 所有仓储，共享同一个连接池
type Repos struct {
	Tags        repos.TagRepo
	Communities repos.CommunityRepo
	Posts       repos.PostRepo
	Users       repos.UserRepo
	Profiles    repos.UserProfileRepo
	Messages    repos.PrivateMessageRepo
	Contacts    repos.UserContactRepo
}

func NewRepos(db *gorm.DB, baseLog *logger.Logger) *Repos {
	tags := repos.NewTagRepo(db, baseLog)
	return &Repos{
		Tags:        tags,
		Communities: repos.NewCommunityRepo(db, baseLog, tags),
		Posts:       repos.NewPostRepo(db, baseLog, tags),
		Users:       repos.NewUserRepo(db, baseLog),
		Profiles:    repos.NewUserProfileRepo(db, baseLog),
		Messages:    repos.NewPrivateMessageRepo(db, baseLog),
		Contacts:    repos.NewUserContactRepo(db, baseLog),
	}
}

// Services 应用服务集合，由 main 组装后交给 handlers
type Services struct {
	Tags        TagService
	Activity    ActivityStreamService
	Communities CommunityService
	Users       UserService
	Messages    MessageService
	Contacts    ContactService
}

type Options struct {
	TagCacheSize int
	TagCacheTTL  time.Duration
}

func New(db *gorm.DB, baseLog *logger.Logger, opts Options) (*Services, error) {
	r := NewRepos(db, baseLog)
	tags, err := NewTagService(db, baseLog, r.Tags, opts.TagCacheSize, opts.TagCacheTTL)
	if err != nil {
		return nil, err
	}
	return &Services{
		Tags:        tags,
		Activity:    NewActivityStreamService(db, baseLog, r, tags),
		Communities: NewCommunityService(db, baseLog, r),
		Users:       NewUserService(db, baseLog, r, tags),
		Messages:    NewMessageService(db, baseLog, r),
		Contacts:    NewContactService(db, baseLog, r),
	}, nil
}
