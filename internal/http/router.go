package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/streamhub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/streamhub-backend/internal/http/middleware"
	"github.com/yungbote/streamhub-backend/internal/observability"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

const maxMultipartMemory = 32 << 20

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	TracingEnabled bool
	CORSOrigins    []string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler       *httpH.HealthHandler
	VideoHandler        *httpH.VideoHandler
	CommentHandler      *httpH.CommentHandler
	PostHandler         *httpH.PostHandler
	LikeHandler         *httpH.LikeHandler
	SubscriptionHandler *httpH.SubscriptionHandler
	DashboardHandler    *httpH.DashboardHandler
	UserHandler         *httpH.UserHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = maxMultipartMemory
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Public
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api/v1")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// Videos
	if h := cfg.VideoHandler; h != nil {
		api.GET("/videos", h.ListVideos)
		api.POST("/videos", h.PublishVideo)
		api.GET("/videos/:videoId", h.GetVideo)
		api.PATCH("/videos/:videoId", h.UpdateVideo)
		api.DELETE("/videos/:videoId", h.DeleteVideo)
		api.PATCH("/videos/:videoId/publish", h.TogglePublish)
	}

	// Comments
	if h := cfg.CommentHandler; h != nil {
		api.GET("/comments/:videoId", h.ListComments)
		api.POST("/comments/:videoId", h.AddComment)
		api.PATCH("/comments/c/:commentId", h.UpdateComment)
		api.DELETE("/comments/c/:commentId", h.DeleteComment)
	}

	// Posts
	if h := cfg.PostHandler; h != nil {
		api.POST("/posts", h.CreatePost)
		api.GET("/posts/user/:userId", h.ListPostsByOwner)
		api.PATCH("/posts/:postId", h.UpdatePost)
		api.DELETE("/posts/:postId", h.DeletePost)
	}

	// Likes
	if h := cfg.LikeHandler; h != nil {
		api.POST("/likes/toggle/v/:videoId", h.ToggleVideoLike)
		api.POST("/likes/toggle/c/:commentId", h.ToggleCommentLike)
		api.POST("/likes/toggle/p/:postId", h.TogglePostLike)
		api.GET("/likes/videos", h.ListLikedVideos)
	}

	// Subscriptions
	if h := cfg.SubscriptionHandler; h != nil {
		api.POST("/subscriptions/c/:channelId", h.ToggleSubscription)
		api.GET("/subscriptions/c/:channelId", h.ListSubscribers)
		api.GET("/subscriptions/u/:subscriberId", h.ListSubscribedChannels)
	}

	// Dashboard
	if h := cfg.DashboardHandler; h != nil {
		api.GET("/dashboard/stats", h.MyChannelStats)
		api.GET("/dashboard/channels/:channelId/stats", h.ChannelStats)
		api.GET("/dashboard/videos", h.ChannelVideos)
	}

	// Users
	if h := cfg.UserHandler; h != nil {
		api.GET("/users/me/history", h.WatchHistory)
		api.GET("/users/c/:channelId", h.GetChannel)
	}

	return r
}
