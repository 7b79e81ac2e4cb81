package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/youruser/memeapp/internal/notify"
	"github.com/youruser/memeapp/internal/session"
)

func statusFor(kind string) int {
	switch kind {
	case "validation":
		return http.StatusBadRequest
	case "not_found":
		return http.StatusNotFound
	case "superseded":
		return http.StatusConflict
	case "share_failed", "clipboard_failed":
		return http.StatusBadGateway
	case "cancelled":
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}

// fail aborts the request with the error kind and a user-facing notice.
func fail(c *gin.Context, err error) {
	kind := notify.Kind(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", c.FullPath(), "error", err)
	} else {
		slog.Debug("request rejected", "path", c.FullPath(), "kind", kind, "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": kind, "notice": notify.FromError(err)})
}

func malformed(field string, err error) error {
	return &session.ValidationError{Field: field, Reason: session.ReasonMalformed, Err: err}
}

func rateLimit(l *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":  "rate_limited",
				"notice": notify.Error("Whoa, slow down! Try again in a moment."),
			})
			return
		}
		c.Next()
	}
}
