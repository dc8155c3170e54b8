package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harsh-BH/codepractice/internal/domain"
)

const (
	typeValidation = "VALIDATION_ERROR"
	typeSecurity   = "SECURITY_ERROR"
	typeRateLimit  = "RATE_LIMIT_ERROR"
	typeNotFound   = "NOT_FOUND"
	typeUpstream   = "UPSTREAM_ERROR"
	typeInternal   = "INTERNAL_ERROR"

	reasonUpstreamRateLimit = "UPSTREAM_RATE_LIMIT"
)

// respondError maps usecase errors onto status codes and response bodies.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, body := errorResponse(logger, c.FullPath(), err)
	if retry, ok := body["retryAfter"].(int); ok && retry > 0 {
		c.Header("Retry-After", strconv.Itoa(retry))
	}
	c.JSON(status, body)
}

// errorResponse maps err to a status and a client-safe body. Unclassified
// errors are logged and never echoed.
func errorResponse(logger *zap.Logger, path string, err error) (int, gin.H) {
	var quotaErr *domain.QuotaError
	if errors.As(err, &quotaErr) {
		d := quotaErr.Decision
		return http.StatusTooManyRequests, gin.H{
			"error":      quotaMessage(d.Reason),
			"type":       typeRateLimit,
			"reason":     d.Reason,
			"retryAfter": d.RetryAfterSeconds,
			"remaining":  d.Remaining,
		}
	}

	switch {
	case errors.Is(err, domain.ErrDangerousCode):
		return http.StatusBadRequest, gin.H{"error": err.Error(), "type": typeSecurity}
	case errors.Is(err, domain.ErrEmptySourceCode),
		errors.Is(err, domain.ErrPayloadTooLarge),
		errors.Is(err, domain.ErrInvalidLanguage),
		errors.Is(err, domain.ErrMissingToken),
		errors.Is(err, domain.ErrMissingProblem),
		errors.Is(err, domain.ErrNoTestCases):
		return http.StatusBadRequest, gin.H{"error": err.Error(), "type": typeValidation}
	case errors.Is(err, domain.ErrSubmissionNotFound), errors.Is(err, domain.ErrProblemNotFound):
		return http.StatusNotFound, gin.H{"error": err.Error(), "type": typeNotFound}
	case errors.Is(err, domain.ErrUpstreamRateLimit):
		return http.StatusTooManyRequests, gin.H{
			"error":  domain.ErrUpstreamRateLimit.Error(),
			"type":   typeRateLimit,
			"reason": reasonUpstreamRateLimit,
		}
	case errors.Is(err, domain.ErrExecutionTimeout):
		return http.StatusGatewayTimeout, gin.H{"error": domain.ErrExecutionTimeout.Error(), "type": typeUpstream}
	case errors.Is(err, domain.ErrMalformedUpstream), errors.Is(err, domain.ErrUpstreamUnavailable):
		logger.Warn("Remote judge failure", zap.Error(err), zap.String("path", path))
		return http.StatusBadGateway, gin.H{"error": "Remote execution service error", "type": typeUpstream}
	default:
		logger.Error("Request failed", zap.Error(err), zap.String("path", path))
		return http.StatusInternalServerError, gin.H{"error": "Internal server error", "type": typeInternal}
	}
}

func quotaMessage(reason domain.QuotaReason) string {
	if reason == domain.ReasonCooldownActive {
		return "Please wait before executing code again"
	}
	return "Daily execution limit reached"
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": "Invalid request body: " + err.Error(),
		"type":  typeValidation,
	})
}
