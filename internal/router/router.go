package router

import (
	"agora/internal/handlers"
	"agora/internal/logger"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/services"

	"github.com/gin-gonic/gin"
)

// New builds the engine with the shared middleware chain and every route.
func New(svc *services.Services, baseLog *logger.Logger, origins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(origins))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(baseLog))
	RegisterRoutes(r, svc)
	return r
}

func RegisterRoutes(r *gin.Engine, svc *services.Services) {
	// Handlers
	authHandler := handlers.NewAuthHandler(svc.Users)
	userHandler := handlers.NewUserHandler(svc.Users)
	adminHandler := handlers.NewAdminHandler(svc.Communities, svc.Users)
	communityHandler := handlers.NewCommunityHandler(svc.Communities, svc.Activity)
	postHandler := handlers.NewPostHandler(svc.Activity)
	voteHandler := handlers.NewVoteHandler(svc.Activity)
	messageHandler := handlers.NewMessageHandler(svc.Messages)
	contactHandler := handlers.NewContactHandler(svc.Contacts)
	tagHandler := handlers.NewTagHandler(svc.Tags)

	api := r.Group("/api")
	api.Use(middleware.LoadUser(svc.Users))

	// 公共路由 (Public Routes)
	api.POST("/auth/register", authHandler.Register) // 注册
	api.POST("/auth/login", authHandler.Login)       // 登录校验

	api.GET("/tags", tagHandler.List)       // 所有标签
	api.GET("/tags/:id", tagHandler.Detail) // 标签详情

	api.GET("/communities", communityHandler.List)              // 社区列表，?name= 按名称查找
	api.GET("/communities/pending", communityHandler.Pending)   // 待审核社区
	api.GET("/communities/approved", communityHandler.Approved) // 已批准社区
	api.GET("/communities/:id", communityHandler.Detail)        // 社区详情
	api.GET("/communities/:id/posts", communityHandler.Posts)   // 社区帖子

	api.GET("/posts/:id", postHandler.Detail) // 帖子详情（含回复树）

	api.GET("/users", userHandler.List)                // 用户列表
	api.GET("/users/:id", userHandler.Detail)          // 用户信息
	api.GET("/users/:id/profile", userHandler.Profile) // 用户资料
	api.GET("/users/:id/posts", postHandler.ByUser)    // 用户发布的帖子

	// 受保护路由 (Protected Routes)
	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/me", userHandler.Me)                     // 当前用户
		authorized.PUT("/me/profile", userHandler.UpdateSettings) // 保存资料

		authorized.POST("/communities", communityHandler.Create)              // 申请社区
		authorized.POST("/communities/:id/members", communityHandler.Join)    // 加入社区
		authorized.DELETE("/communities/:id/members", communityHandler.Leave) // 退出社区
		authorized.POST("/communities/:id/posts", postHandler.Create)         // 发帖

		authorized.POST("/posts/:id/replies", postHandler.Reply) // 回复
		authorized.PUT("/posts/:id", postHandler.Update)         // 修改帖子
		authorized.DELETE("/posts/:id", postHandler.Delete)      // 删除帖子
		authorized.POST("/posts/:id/like", voteHandler.Like)     // 点赞
		authorized.DELETE("/posts/:id/like", voteHandler.Unlike) // 取消点赞

		authorized.POST("/messages", messageHandler.Send)                 // 发送私信
		authorized.GET("/messages/inbox", messageHandler.Inbox)           // 收件箱
		authorized.GET("/messages/outbox", messageHandler.Outbox)         // 发件箱
		authorized.GET("/messages/with/:id", messageHandler.Conversation) // 与某人的会话
		authorized.DELETE("/messages/:id", messageHandler.Delete)         // 删除私信

		authorized.GET("/contacts", contactHandler.List)          // 联系人列表
		authorized.POST("/contacts/:id", contactHandler.Add)      // 添加联系人
		authorized.DELETE("/contacts/:id", contactHandler.Remove) // 删除联系人
	}

	// 管理路由 (Admin Routes)
	admin := api.Group("/admin")
	admin.Use(middleware.RoleRequired(models.TagPortalAdmin, models.TagAdmin))
	{
		admin.POST("/communities/:id/approve", adminHandler.Approve) // 批准社区
		admin.POST("/communities/:id/refuse", adminHandler.Refuse)   // 拒绝社区
		admin.DELETE("/communities/:id", communityHandler.Delete)    // 删除社区
		admin.POST("/users/:id/roles", adminHandler.AssignRole)      // 授予角色
		admin.DELETE("/users/:id/roles", adminHandler.RevokeRole)    // 撤销角色
	}
}
