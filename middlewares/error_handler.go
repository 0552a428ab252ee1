package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/drivethru-app/utils"
)

// ErrorHandler renders the last error attached with c.Error. Known
// AppErrors keep their message; anything else becomes an opaque 500 whose
// details are only logged.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		status, message, ok := utils.StatusFor(err)
		if ok {
			var appErr *utils.AppError
			if errors.As(err, &appErr) && appErr.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(appErr.RetryAfter))
			}
			utils.RespondJSON(c, status, message, nil)
			return
		}

		respondInternal(c, err, nil)
	}
}

// Recovery turns a panic into the same opaque 500 response.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				respondInternal(c, fmt.Errorf("panic: %v", r), debug.Stack())
				c.Abort()
			}
		}()
		c.Next()
	}
}

func respondInternal(c *gin.Context, err error, stack []byte) {
	errorID := utils.NewRequestID()
	fields := logrus.Fields{
		"error_id":   errorID,
		"request_id": c.GetString(RequestIDKey),
		"path":       c.Request.URL.Path,
	}
	if stack != nil {
		fields["stack"] = string(stack)
	}
	utils.ErrorLogger.WithFields(fields).Errorf("Unexpected error: %v", err)

	if c.Writer.Written() {
		return
	}
	utils.RespondJSON(c, http.StatusInternalServerError, "An unexpected error occurred. Error ID: "+errorID, nil)
}
