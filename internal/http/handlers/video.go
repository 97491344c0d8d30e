package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/streamhub-backend/internal/domain/errs"
	"github.com/yungbote/streamhub-backend/internal/http/response"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
	"github.com/yungbote/streamhub-backend/internal/services"
)

type VideoHandler struct {
	log            *logger.Logger
	videoService   services.VideoService
	maxUploadBytes int64
}

// NewVideoHandler caps multipart bodies at maxUploadBytes; zero disables the cap.
func NewVideoHandler(log *logger.Logger, videoService services.VideoService, maxUploadBytes int64) *VideoHandler {
	return &VideoHandler{
		log:            log.With("handler", "VideoHandler"),
		videoService:   videoService,
		maxUploadBytes: maxUploadBytes,
	}
}

// GET /videos
func (h *VideoHandler) ListVideos(c *gin.Context) {
	req, ok := bindFeed(c)
	if !ok {
		return
	}
	page, err := h.videoService.ListVideos(requestDBC(c), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, page, "All videos fetched")
}

// POST /videos (multipart: title, description, videoFile, thumbnail)
func (h *VideoHandler) PublishVideo(c *gin.Context) {
	if !h.limitBody(c) {
		return
	}
	videoFile, closeVideo, err := formUpload(c, "videoFile", services.MediaVideo)
	defer closeVideo()
	if err != nil {
		response.RespondError(c, err)
		return
	}
	thumbnail, closeThumb, err := formUpload(c, "thumbnail", services.MediaThumbnail)
	defer closeThumb()
	if err != nil {
		response.RespondError(c, err)
		return
	}
	video, err := h.videoService.PublishVideo(requestDBC(c), services.PublishVideoInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		VideoFile:   videoFile,
		Thumbnail:   thumbnail,
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, video, "Video uploaded successfully")
}

// GET /videos/:videoId
func (h *VideoHandler) GetVideo(c *gin.Context) {
	id, ok := uuidParam(c, "videoId")
	if !ok {
		return
	}
	detail, err := h.videoService.GetVideo(requestDBC(c), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, detail, "Video fetched successfully")
}

// PATCH /videos/:videoId (multipart: title?, description?, thumbnail?)
func (h *VideoHandler) UpdateVideo(c *gin.Context) {
	id, ok := uuidParam(c, "videoId")
	if !ok {
		return
	}
	if !h.limitBody(c) {
		return
	}
	thumbnail, closeThumb, err := formUpload(c, "thumbnail", services.MediaThumbnail)
	defer closeThumb()
	if err != nil {
		response.RespondError(c, err)
		return
	}
	video, err := h.videoService.UpdateVideo(requestDBC(c), id, services.UpdateVideoInput{
		Title:       optionalForm(c, "title"),
		Description: optionalForm(c, "description"),
		Thumbnail:   thumbnail,
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, video, "Video updated successfully")
}

// DELETE /videos/:videoId
func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	id, ok := uuidParam(c, "videoId")
	if !ok {
		return
	}
	video, err := h.videoService.DeleteVideo(requestDBC(c), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, video, "Video deleted successfully")
}

// PATCH /videos/:videoId/publish
func (h *VideoHandler) TogglePublish(c *gin.Context) {
	id, ok := uuidParam(c, "videoId")
	if !ok {
		return
	}
	video, err := h.videoService.TogglePublish(requestDBC(c), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"isPublished": video.IsPublished, "video": video}, "Publish status updated successfully")
}

func (h *VideoHandler) limitBody(c *gin.Context) bool {
	if h.maxUploadBytes <= 0 {
		return true
	}
	if c.Request.ContentLength > h.maxUploadBytes {
		response.RespondError(c, errs.New(errs.InvalidArgument, "VideoHandler.limitBody", "Upload is too large"))
		return false
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	return true
}
