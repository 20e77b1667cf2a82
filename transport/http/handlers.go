package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/clockguard/core"
	"github.com/layer-3/clockguard/service"
	"github.com/sirupsen/logrus"
)

const (
	// ClearanceHeader carries a clearance token on protected requests
	ClearanceHeader = "X-Captcha-Clearance"
	// ClearanceCookie is set after a successful verification
	ClearanceCookie = "captcha_clearance"

	clearanceKey = "clearance"
)

// CaptchaHandlers contains HTTP handlers for captcha endpoints
type CaptchaHandlers struct {
	captchaService *service.CaptchaService
	log            logrus.FieldLogger
}

// NewCaptchaHandlers creates new captcha handlers
func NewCaptchaHandlers(captchaService *service.CaptchaService, log logrus.FieldLogger) *CaptchaHandlers {
	return &CaptchaHandlers{
		captchaService: captchaService,
		log:            log,
	}
}

type challengeRequest struct {
	Difficulty string `json:"difficulty" form:"difficulty" binding:"omitempty,difficulty"`
}

type verifyRequest struct {
	SessionID string `json:"session_id" form:"session_id" binding:"required,max=64"`
	Hour      *int   `json:"answer_hour" form:"answer_hour" binding:"omitempty,min=0,max=23"`
	Minute    *int   `json:"answer_minute" form:"answer_minute" binding:"omitempty,min=0,max=59"`
}

// Challenge issues a challenge; the JSON body is optional
func (h *CaptchaHandlers) Challenge(c *gin.Context) {
	var req challengeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	h.issue(c, req)
}

// New issues a challenge with the difficulty taken from the query string
func (h *CaptchaHandlers) New(c *gin.Context) {
	var req challengeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	h.issue(c, req)
}

func (h *CaptchaHandlers) issue(c *gin.Context, req challengeRequest) {
	var difficulty core.Difficulty
	if req.Difficulty != "" {
		// already checked by the difficulty binding tag
		difficulty, _ = core.ParseDifficulty(req.Difficulty)
	}

	issued, err := h.captchaService.Issue(c.Request.Context(), difficulty)
	if err != nil {
		h.log.WithError(err).Error("Failed to issue challenge")
		if errors.Is(err, core.ErrGeneration) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to create challenge"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create challenge"})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{
		"session_id":         issued.SessionID,
		"difficulty":         issued.Difficulty.String(),
		"image_url":          "/captcha/image/" + issued.SessionID,
		"content_type":       issued.Image.ContentType,
		"image":              string(issued.Image.Data),
		"expires_in_seconds": int(issued.ExpiresIn / time.Second),
	})
}

// Image serves the rendered clock of a live session
func (h *CaptchaHandlers) Image(c *gin.Context) {
	img, err := h.captchaService.Image(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			c.JSON(http.StatusGone, gin.H{"error": "Challenge expired"})
			return
		}
		h.log.WithError(err).Error("Failed to render challenge")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render challenge"})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, img.ContentType, img.Data)
}

// Verify checks an answer; accepts JSON or form bodies
func (h *CaptchaHandlers) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	// hour and minute may legitimately be 0
	if req.Hour == nil || req.Minute == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	res, err := h.captchaService.Verify(c.Request.Context(), req.SessionID, *req.Hour, *req.Minute)
	if err != nil {
		if errors.Is(err, core.ErrInvalidTime) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid answer"})
			return
		}
		h.log.WithError(err).Error("Failed to verify answer")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify answer"})
		return
	}

	body := gin.H{
		"outcome":            string(res.Outcome),
		"attempts_remaining": res.AttemptsRemaining,
	}
	if res.ClearanceToken != "" {
		body["clearance_token"] = res.ClearanceToken
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     ClearanceCookie,
			Value:    res.ClearanceToken,
			Path:     "/",
			MaxAge:   int(h.captchaService.ClearanceTTL().Seconds()),
			HttpOnly: true,
			Secure:   c.Request.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
	}

	c.JSON(outcomeStatus(res.Outcome), body)
}

// Clearance reports the clearance attached by ClearanceMiddleware
func (h *CaptchaHandlers) Clearance(c *gin.Context) {
	value, exists := c.Get(clearanceKey)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Clearance not found in context"})
		return
	}
	clearance := value.(*core.Clearance)

	c.JSON(http.StatusOK, gin.H{
		"cleared":    true,
		"session_id": clearance.SessionID,
		"difficulty": clearance.Difficulty.String(),
		"expires_at": clearance.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func outcomeStatus(o core.Outcome) int {
	switch o {
	case core.OutcomeVerified:
		return http.StatusOK
	case core.OutcomeIncorrect:
		return http.StatusUnprocessableEntity
	case core.OutcomeFailed:
		return http.StatusForbidden
	default:
		return http.StatusGone
	}
}
