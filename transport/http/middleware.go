package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/clockguard/core"
	"github.com/layer-3/clockguard/service"
	"github.com/sirupsen/logrus"
)

// ClearanceMiddleware admits requests carrying a valid clearance token
func ClearanceMiddleware(captchaService *service.CaptchaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(ClearanceHeader)
		if token == "" {
			if cookie, err := c.Cookie(ClearanceCookie); err == nil {
				token = cookie
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing clearance"})
			return
		}

		clearance, err := captchaService.ValidateClearance(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, core.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Clearance expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid clearance"})
			}
			return
		}

		c.Set(clearanceKey, clearance)

		c.Next()
	}
}

// RequestLogger logs one line per request
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request served")
	}
}
