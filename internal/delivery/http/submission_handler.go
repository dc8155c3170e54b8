package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harsh-BH/codepractice/internal/delivery/http/middleware"
	"github.com/Harsh-BH/codepractice/internal/usecase"
)

// SubmissionHandler serves stored submissions and progress.
type SubmissionHandler struct {
	getSubmissionUC *usecase.GetSubmissionUsecase
	progressUC      *usecase.GetProgressUsecase
	logger          *zap.Logger
}

func NewSubmissionHandler(getSubmissionUC *usecase.GetSubmissionUsecase, progressUC *usecase.GetProgressUsecase, logger *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		getSubmissionUC: getSubmissionUC,
		progressUC:      progressUC,
		logger:          logger,
	}
}

// GetByID handles GET /submissions/:id
func (h *SubmissionHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID format", "type": typeValidation})
		return
	}

	sub, err := h.getSubmissionUC.Execute(c.Request.Context(), middleware.CallerFrom(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// Progress handles GET /progress
func (h *SubmissionHandler) Progress(c *gin.Context) {
	rec, err := h.progressUC.Execute(c.Request.Context(), middleware.CallerFrom(c).UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
