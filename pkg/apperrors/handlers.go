package apperrors

import (
	"net/http"

	"edujobs_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

const debugKey = "apperrors.debug"

// ErrorResponse is the JSON envelope for every failed request.
type ErrorResponse struct {
	Status  string    `json:"status"`
	Error   *AppError `json:"error"`
	Message string    `json:"message"`
	Cause   string    `json:"cause,omitempty"`
	Stack   string    `json:"stack,omitempty"`
}

// GinErrorHandler renders errors. Debug exposes causes and stacks.
type GinErrorHandler struct {
	Debug bool
}

// Middleware stores the render mode for HandleError on each request.
func Middleware(debug bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(debugKey, debug)
		c.Next()
	}
}

// Recovery turns panics into a 500 rendered through HandleError.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		err, ok := recovered.(error)
		if !ok {
			err = &panicError{value: recovered}
		}
		HandleError(c, InternalError(err))
	})
}

type panicError struct{ value any }

func (p *panicError) Error() string {
	return "panic: " + stringify(p.value)
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if e, ok := v.(error); ok {
		return e.Error()
	}
	return "unknown panic value"
}

func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}

	log := logger.FromContext(c.Request.Context())
	status := "fail"
	if !appErr.IsOperational() {
		status = "error"
		log.Error("request failed",
			"code", appErr.Code,
			"error", appErr.Error(),
			"path", c.Request.URL.Path,
		)
	} else {
		log.Debug("request rejected", "code", appErr.Code, "message", appErr.Message)
	}

	httpCode := appErr.HTTPCode
	if httpCode == 0 {
		httpCode = http.StatusInternalServerError
	}

	resp := ErrorResponse{Status: status, Error: appErr, Message: appErr.Message}
	if h.Debug {
		if appErr.Err != nil {
			resp.Cause = appErr.Err.Error()
		}
		resp.Stack = appErr.Stack
	} else if !appErr.IsOperational() {
		resp.Error = New(CodeInternalError, "system", "Something went wrong", httpCode)
		resp.Message = "Something went wrong"
	}

	c.AbortWithStatusJSON(httpCode, resp)
}

// HandleError renders err using the mode installed by Middleware.
func HandleError(c *gin.Context, err error) {
	debug := c.GetBool(debugKey)
	handler := &GinErrorHandler{Debug: debug}
	handler.HandleGinError(c, err)
}
