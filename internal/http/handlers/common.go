package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yungbote/streamhub-backend/internal/domain/errs"
	"github.com/yungbote/streamhub-backend/internal/domain/views"
	"github.com/yungbote/streamhub-backend/internal/http/response"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/services"
)

type pageQuery struct {
	Page  *int `form:"page" binding:"omitempty,min=1"`
	Limit *int `form:"limit" binding:"omitempty,min=1"`
}

type feedQuery struct {
	pageQuery
	Query    string `form:"query" binding:"omitempty,max=200"`
	SortBy   string `form:"sortBy"`
	SortType string `form:"sortType"`
	UserID   string `form:"userId" binding:"omitempty,uuid"`
}

type contentBody struct {
	Content string `json:"content" binding:"required,max=5000"`
}

func requestDBC(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

// uuidParam writes a 400 and returns false when the path param is not a UUID.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, errs.Newf(errs.InvalidArgument, "handlers.uuidParam", "Invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

func (q pageQuery) request() views.PageRequest {
	var p views.PageRequest
	if q.Page != nil {
		p.Page = *q.Page
	}
	if q.Limit != nil {
		p.Limit = *q.Limit
	}
	return p.Normalize()
}

func bindPage(c *gin.Context) (views.PageRequest, bool) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.RespondError(c, bindError("handlers.bindPage", err))
		return views.PageRequest{}, false
	}
	return q.request(), true
}

func bindFeed(c *gin.Context) (services.FeedRequest, bool) {
	var q feedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.RespondError(c, bindError("handlers.bindFeed", err))
		return services.FeedRequest{}, false
	}
	req := services.FeedRequest{
		Filter:   services.FeedFilter{Text: strings.TrimSpace(q.Query)},
		SortBy:   q.SortBy,
		SortType: q.SortType,
		Page:     q.pageQuery.request(),
	}
	if q.UserID != "" {
		req.Filter.OwnerID = uuid.MustParse(q.UserID)
	}
	return req, true
}

// bindError turns binding and validation failures into InvalidArgument
// errors naming the first offending field.
func bindError(op string, err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		var msg string
		switch fe.Tag() {
		case "required":
			msg = fmt.Sprintf("%s is required", fe.Field())
		case "min":
			msg = fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
		case "max":
			msg = fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
		case "uuid":
			msg = fmt.Sprintf("%s must be a valid id", fe.Field())
		default:
			msg = fmt.Sprintf("%s is invalid", fe.Field())
		}
		return &errs.Error{Code: errs.InvalidArgument, Op: op, Message: msg, Cause: err}
	}
	return &errs.Error{Code: errs.InvalidArgument, Op: op, Message: "Invalid request", Cause: err}
}

// formUpload opens an optional multipart file. The returned closer is always
// safe to call.
func formUpload(c *gin.Context, field string, kind services.MediaKind) (*services.MediaUpload, func(), error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, &errs.Error{Code: errs.InvalidArgument, Op: "handlers.formUpload", Message: "Upload could not be read", Cause: err}
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, &errs.Error{Code: errs.InvalidArgument, Op: "handlers.formUpload", Message: "Could not read " + field, Cause: err}
	}
	return &services.MediaUpload{Kind: kind, Filename: fh.Filename, Body: f}, closeFile(f), nil
}

func closeFile(f multipart.File) func() {
	return func() { _ = f.Close() }
}

func optionalForm(c *gin.Context, field string) *string {
	v, ok := c.GetPostForm(field)
	if !ok {
		return nil
	}
	return &v
}
