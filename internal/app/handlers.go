package app

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	httpx "github.com/yungbote/streamhub-backend/internal/http"
	httpH "github.com/yungbote/streamhub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/streamhub-backend/internal/http/middleware"
	"github.com/yungbote/streamhub-backend/internal/observability"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

func healthChecks(clients Clients) map[string]httpH.HealthCheck {
	checks := map[string]httpH.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := clients.DB.DB().DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if clients.Badger != nil {
		checks["edges"] = func(context.Context) error {
			if clients.Badger.IsClosed() {
				return errors.New("badger closed")
			}
			return nil
		}
	}
	if clients.Neo4j != nil {
		checks["graph"] = func(ctx context.Context) error { return clients.Neo4j.Driver.VerifyConnectivity(ctx) }
	}
	return checks
}

func wireRouter(log *logger.Logger, cfg Config, svc Services, clients Clients, metrics *observability.Metrics) httpx.RouterConfig {
	log.Info("Wiring handlers...")
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	return httpx.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		ServiceName:    cfg.Observability.ServiceName,
		TracingEnabled: cfg.Observability.OtelEnabled,
		CORSOrigins:    cfg.HTTP.CORSOrigins,

		AuthMiddleware: httpMW.NewAuthMiddleware(log, svc.Auth, svc.Users),

		HealthHandler:       httpH.NewHealthHandler(healthChecks(clients)),
		VideoHandler:        httpH.NewVideoHandler(log, svc.Videos, cfg.MaxUploadBytes()),
		CommentHandler:      httpH.NewCommentHandler(log, svc.Comments),
		PostHandler:         httpH.NewPostHandler(log, svc.Posts),
		LikeHandler:         httpH.NewLikeHandler(log, svc.Likes),
		SubscriptionHandler: httpH.NewSubscriptionHandler(log, svc.Subscriptions),
		DashboardHandler:    httpH.NewDashboardHandler(log, svc.Dashboard),
		UserHandler:         httpH.NewUserHandler(log, svc.Users),
	}
}
