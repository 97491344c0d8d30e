package services

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/streamhub-backend/internal/data/store"
	"github.com/yungbote/streamhub-backend/internal/domain/content"
	"github.com/yungbote/streamhub-backend/internal/domain/errs"
	"github.com/yungbote/streamhub-backend/internal/domain/social"
	"github.com/yungbote/streamhub-backend/internal/domain/views"
	"github.com/yungbote/streamhub-backend/internal/observability"
	"github.com/yungbote/streamhub-backend/internal/platform/ctxutil"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

type PublishVideoInput struct {
	Title       string
	Description string
	VideoFile   *MediaUpload
	Thumbnail   *MediaUpload
}

type UpdateVideoInput struct {
	Title       *string
	Description *string
	Thumbnail   *MediaUpload
}

type VideoDetail struct {
	Video    views.AggregateView             `json:"video"`
	Comments views.Page[views.AggregateView] `json:"comments"`
}

type VideoService interface {
	ListVideos(dbc dbctx.Context, req FeedRequest) (views.Page[views.AggregateView], error)
	PublishVideo(dbc dbctx.Context, in PublishVideoInput) (*content.Video, error)
	// GetVideo counts a view and appends to the viewer's watch history.
	GetVideo(dbc dbctx.Context, id uuid.UUID) (*VideoDetail, error)
	UpdateVideo(dbc dbctx.Context, id uuid.UUID, in UpdateVideoInput) (*content.Video, error)
	TogglePublish(dbc dbctx.Context, id uuid.UUID) (*content.Video, error)
	DeleteVideo(dbc dbctx.Context, id uuid.UUID) (*content.Video, error)
}

type videoService struct {
	h        *store.Handle
	log      *logger.Logger
	media    MediaStore
	guard    MutationGuard
	feed     FeedComposer
	planner  AggregationPlanner
	comments CommentService
	metrics  *observability.Metrics
}

func NewVideoService(
	h *store.Handle,
	log *logger.Logger,
	media MediaStore,
	guard MutationGuard,
	feed FeedComposer,
	planner AggregationPlanner,
	comments CommentService,
	metrics *observability.Metrics,
) VideoService {
	return &videoService{
		h:        h,
		log:      log.With("service", "VideoService"),
		media:    media,
		guard:    guard,
		feed:     feed,
		planner:  planner,
		comments: comments,
		metrics:  metrics,
	}
}

func (vs *videoService) ListVideos(dbc dbctx.Context, req FeedRequest) (views.Page[views.AggregateView], error) {
	req.Filter.PublishedOnly = true
	return vs.feed.ListFeedAggregated(dbc, ctxutil.PrincipalID(dbc.Context()), req)
}

func (vs *videoService) PublishVideo(dbc dbctx.Context, in PublishVideoInput) (*content.Video, error) {
	const op = "VideoService.PublishVideo"
	owner, err := requirePrincipal(dbc, op)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" {
		return nil, errs.New(errs.InvalidArgument, op, "All fields are required")
	}
	if in.VideoFile == nil || in.VideoFile.Body == nil || in.Thumbnail == nil || in.Thumbnail.Body == nil {
		return nil, errs.New(errs.InvalidArgument, op, "Video and thumbnail file is required")
	}
	in.VideoFile.Kind = MediaVideo
	in.Thumbnail.Kind = MediaThumbnail

	videoFile, err := vs.media.Put(dbc, *in.VideoFile)
	if err != nil {
		return nil, err
	}
	thumb, err := vs.media.Put(dbc, *in.Thumbnail)
	if err != nil {
		vs.compensate(dbc, videoFile)
		return nil, err
	}

	v := &content.Video{
		OwnerID:         owner,
		Title:           title,
		Description:     description,
		VideoFileURL:    videoFile.URL,
		VideoFileKey:    videoFile.Key,
		ThumbnailURL:    thumb.URL,
		ThumbnailKey:    thumb.Key,
		DurationSeconds: videoFile.DurationSeconds,
		IsPublished:     true,
	}
	if videoFile.Probe != nil {
		v.MediaMeta = datatypes.JSON(mustJSON(videoFile.Probe))
	}
	if err := vs.h.Videos.Create(dbc, v); err != nil {
		vs.compensate(dbc, videoFile, thumb)
		return nil, storeErr(op, "video", err)
	}
	vs.log.Info("video published", "video_id", v.ID, "principal_id", owner)
	return v, nil
}

// compensate removes blobs uploaded for an operation that did not commit.
func (vs *videoService) compensate(dbc dbctx.Context, uploaded ...*StoredMedia) {
	for _, m := range uploaded {
		if m == nil {
			continue
		}
		if err := vs.media.Delete(dbc, m.Kind, m.Key); err != nil {
			vs.metrics.IncBestEffortFailure("media_compensate")
			vs.log.Warn("compensating media delete failed", "kind", m.Kind, "key", m.Key, "error", err)
		}
	}
}

func (vs *videoService) GetVideo(dbc dbctx.Context, id uuid.UUID) (*VideoDetail, error) {
	const op = "VideoService.GetVideo"
	if err := requireID(op, "video", id); err != nil {
		return nil, err
	}
	viewer := ctxutil.PrincipalID(dbc.Context())
	v, err := vs.h.Videos.GetByID(dbc, id)
	if err != nil {
		return nil, storeErr(op, "video", err)
	}
	if !v.VisibleTo(viewer) {
		return nil, errs.New(errs.NotFound, op, "video not found")
	}

	err = vs.h.Tx.InTx(dbc.Context(), func(inner dbctx.Context) error {
		n, err := vs.h.Videos.IncrementViews(inner, id)
		if err != nil {
			return err
		}
		v.Views = n
		if viewer == uuid.Nil {
			return nil
		}
		_, err = vs.h.History.Append(inner, viewer, id)
		return err
	})
	if err != nil {
		return nil, storeErr(op, "video", err)
	}
	vs.metrics.IncViews()

	agg, err := vs.planner.Nodes(dbc, viewer, []content.Node{v})
	if err != nil {
		return nil, err
	}
	comments, err := vs.comments.ListComments(dbc, id, views.PageRequest{})
	if err != nil {
		return nil, err
	}
	return &VideoDetail{Video: agg[0], Comments: comments}, nil
}

func (vs *videoService) UpdateVideo(dbc dbctx.Context, id uuid.UUID, in UpdateVideoInput) (*content.Video, error) {
	const op = "VideoService.UpdateVideo"
	principal, err := requirePrincipal(dbc, op)
	if err != nil {
		return nil, err
	}
	if err := requireID(op, "video", id); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return nil, errs.New(errs.InvalidArgument, op, "title cannot be empty")
		}
		fields["title"] = t
	}
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if d == "" {
			return nil, errs.New(errs.InvalidArgument, op, "description cannot be empty")
		}
		fields["description"] = d
	}
	hasThumb := in.Thumbnail != nil && in.Thumbnail.Body != nil
	if len(fields) == 0 && !hasThumb {
		return nil, errs.New(errs.InvalidArgument, op, "At least one field is required")
	}

	current, err := vs.guard.AuthorizeVideo(dbc, id, principal)
	if err != nil {
		return nil, err
	}

	var thumb *StoredMedia
	if hasThumb {
		in.Thumbnail.Kind = MediaThumbnail
		if thumb, err = vs.media.Put(dbc, *in.Thumbnail); err != nil {
			return nil, err
		}
		fields["thumbnail_url"] = thumb.URL
		fields["thumbnail_key"] = thumb.Key
	}

	updated, err := vs.h.Videos.UpdateFields(dbc, current.ID, fields)
	if err != nil {
		vs.compensate(dbc, thumb)
		return nil, storeErr(op, "video", err)
	}
	if thumb != nil && current.ThumbnailKey != "" {
		vs.compensate(dbc, &StoredMedia{Kind: MediaThumbnail, Key: current.ThumbnailKey})
	}
	return updated, nil
}

func (vs *videoService) TogglePublish(dbc dbctx.Context, id uuid.UUID) (*content.Video, error) {
	const op = "VideoService.TogglePublish"
	principal, err := requirePrincipal(dbc, op)
	if err != nil {
		return nil, err
	}
	if err := requireID(op, "video", id); err != nil {
		return nil, err
	}
	current, err := vs.guard.AuthorizeVideo(dbc, id, principal)
	if err != nil {
		return nil, err
	}
	updated, err := vs.h.Videos.TogglePublished(dbc, current.ID)
	if err != nil {
		return nil, storeErr(op, "video", err)
	}
	return updated, nil
}

func (vs *videoService) DeleteVideo(dbc dbctx.Context, id uuid.UUID) (*content.Video, error) {
	const op = "VideoService.DeleteVideo"
	principal, err := requirePrincipal(dbc, op)
	if err != nil {
		return nil, err
	}
	if err := requireID(op, "video", id); err != nil {
		return nil, err
	}
	node, err := vs.guard.Delete(dbc, social.Ref(social.TargetVideo, id), principal)
	if err != nil {
		return nil, err
	}
	return node.(*content.Video), nil
}
