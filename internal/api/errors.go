// ABOUTME: Maps service errors to HTTP status codes in one place
// ABOUTME: Handlers attach errors to the gin context and the middleware renders them
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harper/dongne/internal/chat"
	"github.com/harper/dongne/internal/core"
	"github.com/harper/dongne/internal/models"
	"github.com/harper/dongne/internal/session"
	"go.uber.org/zap"
)

// HTTPError is an error with an explicit status code
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

func badRequest(msg string) *HTTPError {
	return &HTTPError{StatusCode: http.StatusBadRequest, Message: msg}
}

// ErrorResponse is the body of every non-2xx reply. Session is set when the
// turn ran far enough to change the transcript.
type ErrorResponse struct {
	Error   string           `json:"error"`
	Session *SessionResponse `json:"session,omitempty"`
}

// StatusFor returns the HTTP status for an error returned by the chat service
func StatusFor(err error) int {
	var httpErr *HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.StatusCode
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInputNotAccepted), errors.Is(err, core.ErrConversationEnded):
		return http.StatusConflict
	case errors.Is(err, core.ErrInvalidSelection), errors.Is(err, core.ErrEmptyInput), errors.Is(err, chat.ErrEmptyUser):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrChoiceNotSaved):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

const sessionKey = "dongne.session"

// fail records err and the snapshot (if any) for ErrorMiddleware
func fail(c *gin.Context, err error, sess *models.Session) {
	if sess != nil {
		c.Set(sessionKey, sess)
	}
	_ = c.Error(err)
}

// ErrorMiddleware renders the last error attached by a handler
func ErrorMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status := StatusFor(err)

		resp := ErrorResponse{Error: err.Error()}
		if status == http.StatusInternalServerError {
			log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
			resp.Error = "internal server error"
		}
		if v, ok := c.Get(sessionKey); ok {
			if sess, ok := v.(*models.Session); ok {
				snap := newSessionResponse(sess)
				resp.Session = &snap
			}
		}
		c.JSON(status, resp)
	}
}
