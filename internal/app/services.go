package app

import (
	"github.com/yungbote/streamhub-backend/internal/data/graph"
	"github.com/yungbote/streamhub-backend/internal/data/store"
	"github.com/yungbote/streamhub-backend/internal/observability"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
	"github.com/yungbote/streamhub-backend/internal/services"
)

type Services struct {
	Auth          services.AuthService
	Users         services.UserService
	Planner       services.AggregationPlanner
	Toggles       services.ToggleEngine
	Feed          services.FeedComposer
	Media         services.MediaStore
	Guard         services.MutationGuard
	Videos        services.VideoService
	Comments      services.CommentService
	Posts         services.PostService
	Likes         services.LikeService
	Subscriptions services.SubscriptionService
	Dashboard     services.DashboardService
	Sweeper       services.OrphanSweeper
}

func wireServices(log *logger.Logger, cfg Config, h *store.Handle, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	var projector services.GraphProjector
	if clients.Neo4j != nil {
		projector = graph.NewSocialGraph(clients.Neo4j, log)
	}
	var events services.EventPublisher
	if clients.Bus != nil {
		events = clients.Bus
	}

	s := Services{}
	s.Auth = services.NewAuthService(log, cfg.Auth.JWTSecretKey, cfg.Auth.JWTIssuer)
	s.Planner = services.NewAggregationPlanner(h, log, metrics)
	s.Users = services.NewUserService(h, log, s.Planner)
	s.Toggles = services.NewToggleEngine(h.Edges, log, events, projector, metrics)
	s.Feed = services.NewFeedComposer(h.Videos, s.Planner, log, metrics, cfg.Feed.SearchCandidateLimit)
	s.Media = services.NewMediaStore(clients.Bucket, clients.Media, log)
	s.Guard = services.NewMutationGuard(h, s.Media, log, events, projector, metrics)
	s.Comments = services.NewCommentService(h, log, s.Guard, s.Planner)
	s.Videos = services.NewVideoService(h, log, s.Media, s.Guard, s.Feed, s.Planner, s.Comments, metrics)
	s.Posts = services.NewPostService(h, log, s.Guard, s.Planner)
	s.Likes = services.NewLikeService(h, log, s.Toggles, s.Planner)
	s.Subscriptions = services.NewSubscriptionService(h, log, s.Toggles, s.Planner)
	s.Dashboard = services.NewDashboardService(h, log, s.Feed)
	s.Sweeper = services.NewOrphanSweeper(h, log, metrics)
	return s
}
