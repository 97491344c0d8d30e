package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/streamhub-backend/internal/domain/errs"
	"github.com/yungbote/streamhub-backend/internal/platform/apierr"
)

// Envelope wraps every response body, success and failure alike.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
	Code       string `json:"code,omitempty"`
}

func Respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

func RespondOK(c *gin.Context, data any, message string) {
	Respond(c, http.StatusOK, data, message)
}

func RespondCreated(c *gin.Context, data any, message string) {
	Respond(c, http.StatusCreated, data, message)
}

// RespondError maps err through apierr and aborts the chain. Internal
// failures never leak their cause to the client.
func RespondError(c *gin.Context, err error) {
	ae := apierr.From(err)
	if ae == nil {
		ae = apierr.New(http.StatusInternalServerError, string(errs.Internal), nil)
	}
	msg := "Something went wrong"
	if ae.Status < http.StatusInternalServerError || ae.Status == http.StatusBadGateway {
		msg = errs.MessageOf(ae.Err)
		if msg == "" {
			msg = http.StatusText(ae.Status)
		}
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(ae.Status, Envelope{
		StatusCode: ae.Status,
		Data:       nil,
		Message:    msg,
		Success:    false,
		Code:       ae.Code,
	})
}
